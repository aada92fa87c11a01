package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/drivewatch/internal/core/domain"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driving"
	"github.com/custodia-labs/drivewatch/internal/logger"
)

// TickRecord is the outcome of the latest scheduled renewal.
type TickRecord struct {
	// LastRun is when the last tick started.
	LastRun time.Time

	// LastSuccess is when a tick last completed without error.
	LastSuccess time.Time

	// LastError is the last error message, if any.
	LastError string

	// Expiration is the channel expiration after the last successful tick.
	Expiration time.Time
}

// Scheduler fires timer triggers at the renewal interval.
type Scheduler struct {
	interval   time.Duration
	watcher    driving.Watcher
	runOnStart bool

	mu      sync.Mutex
	running bool
	record  TickRecord
	now     func() time.Time
}

// NewScheduler creates a scheduler. With runOnStart the first tick fires
// immediately instead of after one interval.
func NewScheduler(interval time.Duration, watcher driving.Watcher, runOnStart bool) *Scheduler {
	if interval <= 0 {
		interval = domain.DefaultRenewalInterval
	}
	return &Scheduler{
		interval:   interval,
		watcher:    watcher,
		runOnStart: runOnStart,
		now:        time.Now,
	}
}

// Start begins the scheduler loop. It blocks until ctx is cancelled and
// returns ctx.Err(); an in-flight tick finishes first.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()
	return s.run(ctx)
}

// Record returns the outcome of the latest tick.
func (s *Scheduler) Record() TickRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	if s.runOnStart {
		s.Tick(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick dispatches one timer trigger. Errors are logged and recorded; the
// next tick is the retry.
func (s *Scheduler) Tick(ctx context.Context) {
	startedAt := s.now()
	result, err := s.watcher.Dispatch(ctx, domain.NewTimerTrigger(s.interval, startedAt))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.LastRun = startedAt
	if err != nil {
		s.record.LastError = err.Error()
		logger.Error("scheduled renewal failed: %v", err)
		return
	}
	s.record.LastError = ""
	s.record.LastSuccess = s.now()
	if result != nil {
		s.record.Expiration = result.Expiration
	}
}
