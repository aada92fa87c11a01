package cli

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/drivewatch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/drivewatch/internal/adapters/driving/webhook"
	"github.com/custodia-labs/drivewatch/internal/core/domain"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driven"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driving"
)

type mockWatcher struct {
	mu          sync.Mutex
	status      driving.WatchStatus
	activateErr error
	dispatchErr error
	statusErr   error
	activations int
	deactivated bool
	triggers    []domain.Trigger
}

func (m *mockWatcher) Activate(_ context.Context) (*driving.WatchStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activateErr != nil {
		return nil, m.activateErr
	}
	m.activations++
	m.status.Active = true
	if m.status.ChannelID == "" {
		m.status.ChannelID = "chan-1"
	}
	s := m.status
	return &s, nil
}

func (m *mockWatcher) Deactivate(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deactivated = true
	m.status = driving.WatchStatus{}
	return nil
}

func (m *mockWatcher) Dispatch(_ context.Context, trigger domain.Trigger) (*driving.DispatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triggers = append(m.triggers, trigger)
	if m.dispatchErr != nil {
		return nil, m.dispatchErr
	}
	return &driving.DispatchResult{Kind: trigger.Kind, Expiration: m.status.Subscription.Expiration}, nil
}

func (m *mockWatcher) Status(_ context.Context) (*driving.WatchStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	s := m.status
	return &s, nil
}

func (m *mockWatcher) dispatched() []domain.Trigger {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Trigger(nil), m.triggers...)
}

// testEnv wires the package-level hooks to in-memory fakes.
type testEnv struct {
	watcher *mockWatcher
	events  *memory.EventLog
	config  *memory.ConfigStore
	closed  bool
}

func setupCLI(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		watcher: &mockWatcher{},
		events:  memory.NewEventLog(),
		config:  memory.NewConfigStore(nil),
	}

	prevLoader, prevBootstrap := configLoader, bootstrap
	SetConfigLoader(func(string) (driven.ConfigStore, error) { return env.config, nil })
	SetBootstrap(func(_ context.Context, _ driven.ConfigStore) (*App, error) {
		cfg := domain.DefaultWatchConfig()
		cfg.RenewalInterval = time.Hour
		var events driven.EventLog
		if env.events != nil {
			events = env.events
		}
		return &App{
			Config:  cfg,
			Watcher: env.watcher,
			Events:  events,
			Webhook: webhook.Options{Listen: "127.0.0.1:0"},
			Close: func() error {
				env.closed = true
				return nil
			},
		}, nil
	})

	t.Cleanup(func() {
		configLoader, bootstrap = prevLoader, prevBootstrap
		eventsLimit, eventsJSON = 20, false
		serveListen = ""
		authPort, authNoBrowser = 0, false
		rootCmd.SetArgs(nil)
	})
	return env
}

// setContext resets every command's context; cobra keeps the first one
// it sees on subcommands.
func setContext(cmd *cobra.Command, ctx context.Context) {
	cmd.SetContext(ctx)
	for _, c := range cmd.Commands() {
		setContext(c, ctx)
	}
}

func executeContext(ctx context.Context, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	setContext(rootCmd, ctx)
	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

func execute(args ...string) (string, error) {
	return executeContext(context.Background(), args...)
}

var errBoom = errors.New("boom")
