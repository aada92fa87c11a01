package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_Seeded(t *testing.T) {
	store := NewConfigStore(map[string]any{
		"drive.scope":                    "0AbcSharedDrive",
		"drive.renewal_interval_seconds": int64(900),
		"drive.watch_properties":         true,
		"drive.update_types":             []any{"update", "add"},
	})

	assert.Equal(t, "0AbcSharedDrive", store.GetString("drive.scope"))
	assert.Equal(t, 900, store.GetInt("drive.renewal_interval_seconds"))
	assert.True(t, store.GetBool("drive.watch_properties"))
	assert.Equal(t, []string{"update", "add"}, store.GetStringSlice("drive.update_types"))
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Missing(t *testing.T) {
	store := NewConfigStore(nil)

	_, ok := store.Get("drive.scope")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("drive.scope"))
	assert.Zero(t, store.GetInt("drive.renewal_interval_seconds"))
	assert.False(t, store.GetBool("drive.watch_properties"))
	assert.Nil(t, store.GetStringSlice("drive.update_types"))
}

func TestConfigStore_Set(t *testing.T) {
	store := NewConfigStore(nil)
	require.NoError(t, store.Set("webhook.listen", ":9090"))
	assert.Equal(t, ":9090", store.GetString("webhook.listen"))
}

func TestConfigStore_SeedIsCopied(t *testing.T) {
	seed := map[string]any{"drive.scope": "myDrive"}
	store := NewConfigStore(seed)
	seed["drive.scope"] = "changed"
	assert.Equal(t, "myDrive", store.GetString("drive.scope"))
}
