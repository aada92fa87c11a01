package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/drivewatch/internal/adapters/driven/storage/memory"
)

func TestOptionsFromConfig_Defaults(t *testing.T) {
	opts := OptionsFromConfig(memory.NewConfigStore(nil))

	assert.Equal(t, DefaultListen, opts.Listen)
	assert.Equal(t, DefaultPath, opts.Path)
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(memory.NewConfigStore(map[string]any{
		KeyListen: "127.0.0.1:9000",
		KeyPath:   "hooks/drive",
	}))

	assert.Equal(t, "127.0.0.1:9000", opts.Listen)
	assert.Equal(t, "/hooks/drive", opts.Path)
}
