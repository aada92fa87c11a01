package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/drivewatch/internal/core/domain"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driven"
)

// Ensure EventLog implements the interface.
var _ driven.EventLog = (*EventLog)(nil)

// EventLog records emissions in memory, in emission order.
type EventLog struct {
	mu        sync.RWMutex
	emissions []domain.Emission
	err       error
}

// NewEventLog creates an empty event log.
func NewEventLog() *EventLog {
	return &EventLog{}
}

// FailWith makes subsequent Emit calls return err. Pass nil to recover.
func (l *EventLog) FailWith(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

// Emit records an emission.
func (l *EventLog) Emit(_ context.Context, event domain.ChangeEvent, meta domain.EventMeta) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.emissions = append(l.emissions, domain.Emission{Event: event, Meta: meta})
	return nil
}

// Recent returns up to limit emissions, most recent first.
func (l *EventLog) Recent(_ context.Context, limit int) ([]domain.Emission, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := len(l.emissions)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]domain.Emission, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, l.emissions[i])
	}
	return out, nil
}

// All returns every emission in emission order.
func (l *EventLog) All() []domain.Emission {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Emission, len(l.emissions))
	copy(out, l.emissions)
	return out
}
