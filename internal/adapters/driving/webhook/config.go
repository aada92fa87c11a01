package webhook

import (
	"strings"

	"github.com/custodia-labs/drivewatch/internal/core/ports/driven"
)

// Configuration keys for the listener.
const (
	KeyListen = "webhook.listen"
	KeyPath   = "webhook.path"
)

// OptionsFromConfig reads listener options. Missing keys take the defaults.
func OptionsFromConfig(cfg driven.ConfigStore) Options {
	opts := Options{
		Listen: strings.TrimSpace(cfg.GetString(KeyListen)),
		Path:   strings.TrimSpace(cfg.GetString(KeyPath)),
	}
	if opts.Listen == "" {
		opts.Listen = DefaultListen
	}
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	if !strings.HasPrefix(opts.Path, "/") {
		opts.Path = "/" + opts.Path
	}
	return opts
}
