package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/drivewatch/internal/core/domain"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driven"
)

func TestActivateCmd(t *testing.T) {
	env := setupCLI(t)

	out, err := execute("activate")
	require.NoError(t, err)

	assert.Equal(t, 1, env.watcher.activations)
	assert.Contains(t, out, "Watch activated.")
	assert.Contains(t, out, "Channel:     chan-1")
	assert.True(t, env.closed)
}

func TestActivateCmd_Error(t *testing.T) {
	env := setupCLI(t)
	env.watcher.activateErr = errBoom

	_, err := execute("activate")
	require.ErrorIs(t, err, errBoom)
	assert.True(t, env.closed)
}

func TestDeactivateCmd(t *testing.T) {
	env := setupCLI(t)
	env.watcher.status.Active = true

	out, err := execute("deactivate")
	require.NoError(t, err)

	assert.True(t, env.watcher.deactivated)
	assert.Contains(t, out, "Watch deactivated.")
}

func TestStatusCmd_Inactive(t *testing.T) {
	setupCLI(t)

	out, err := execute("status")
	require.NoError(t, err)

	assert.Contains(t, out, "Scope:       myDrive")
	assert.Contains(t, out, "Active:      no")
}

func TestStatusCmd_Active(t *testing.T) {
	env := setupCLI(t)
	env.watcher.status.Active = true
	env.watcher.status.ChannelID = "chan-7"
	env.watcher.status.Cursor = "42"
	env.watcher.status.TrackedFiles = 3
	env.watcher.status.Subscription = domain.Subscription{
		ResourceID: "res-7",
		Expiration: time.Now().Add(time.Hour),
	}

	out, err := execute("status")
	require.NoError(t, err)

	assert.Contains(t, out, "Active:      yes")
	assert.Contains(t, out, "Channel:     chan-7")
	assert.Contains(t, out, "Resource:    res-7")
	assert.Contains(t, out, "Expires:")
	assert.Contains(t, out, "Cursor:      42")
	assert.Contains(t, out, "Files:       3 tracked")
	assert.NotContains(t, out, "Warning:")
	assert.NotContains(t, out, "Retrying:")
}

func TestStatusCmd_ExpiringAndPending(t *testing.T) {
	env := setupCLI(t)
	env.watcher.status.Active = true
	env.watcher.status.ChannelID = "chan-7"
	env.watcher.status.ExpiresSoon = true
	env.watcher.status.PendingFiles = 2
	env.watcher.status.Subscription = domain.Subscription{ResourceID: "res-7"}

	out, err := execute("status")
	require.NoError(t, err)

	assert.Contains(t, out, "Warning:     channel expires before the next renewal")
	assert.Contains(t, out, "Retrying:    2 files")
}

func TestStatusCmd_Error(t *testing.T) {
	env := setupCLI(t)
	env.watcher.statusErr = errBoom

	_, err := execute("status")
	assert.ErrorIs(t, err, errBoom)
}

func TestCommands_NotConfigured(t *testing.T) {
	setupCLI(t)
	SetBootstrap(nil)

	for _, name := range []string{"activate", "deactivate", "status", "events", "serve"} {
		_, err := execute(name)
		require.Error(t, err, name)
		assert.Contains(t, err.Error(), "not configured", name)
	}
}

func TestCommands_BootstrapError(t *testing.T) {
	setupCLI(t)
	SetBootstrap(func(context.Context, driven.ConfigStore) (*App, error) {
		return nil, domain.ErrInvalidConfig
	})

	_, err := execute("status")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestCommands_NilWatcherIsClosed(t *testing.T) {
	setupCLI(t)
	closed := false
	SetBootstrap(func(context.Context, driven.ConfigStore) (*App, error) {
		return &App{Close: func() error { closed = true; return nil }}, nil
	})

	_, err := execute("status")
	require.Error(t, err)
	assert.True(t, closed)
}

func TestRootCmd_VerboseFlag(t *testing.T) {
	setupCLI(t)

	_, err := execute("--verbose", "version")
	require.NoError(t, err)
	assert.True(t, verbose)

	verbose = false
}
