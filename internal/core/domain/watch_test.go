package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWatchConfig(t *testing.T) {
	cfg := DefaultWatchConfig()

	assert.True(t, cfg.Scope.IsDefault())
	assert.Equal(t, AllUpdateTypes, cfg.UpdateTypes)
	assert.False(t, cfg.WatchProperties)
	assert.False(t, cfg.IncludeDeleted)
	assert.Equal(t, DefaultRenewalInterval, cfg.RenewalInterval)
	require.NoError(t, cfg.Validate())

	// The defaults must not alias the package-level slice.
	cfg.UpdateTypes[0] = "mutated"
	assert.Equal(t, UpdateAdd, AllUpdateTypes[0])
}

func TestWatchConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*WatchConfig)
	}{
		{"no update types", func(c *WatchConfig) { c.UpdateTypes = nil }},
		{"unknown update type", func(c *WatchConfig) { c.UpdateTypes = []UpdateType{"exists"} }},
		{"zero interval", func(c *WatchConfig) { c.RenewalInterval = 0 }},
		{"interval beyond channel lifetime", func(c *WatchConfig) { c.RenewalInterval = 8 * 24 * time.Hour }},
		{"relative callback", func(c *WatchConfig) { c.CallbackURL = "/notifications" }},
		{"http callback", func(c *WatchConfig) { c.CallbackURL = "http://example.com/notifications" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultWatchConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestWatchConfig_ValidateCallback(t *testing.T) {
	cfg := DefaultWatchConfig()
	cfg.CallbackURL = "https://hooks.example.com/notifications"
	assert.NoError(t, cfg.Validate())
}

func TestWatchConfig_Allows(t *testing.T) {
	cfg := DefaultWatchConfig()
	cfg.UpdateTypes = []UpdateType{UpdateChange, UpdateUpdate}

	assert.True(t, cfg.Allows(UpdateChange))
	assert.True(t, cfg.Allows(UpdateUpdate))
	assert.False(t, cfg.Allows(UpdateSync))
	assert.False(t, cfg.Allows(UpdateTrash))
}
