package emitter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/drivewatch/internal/core/ports/driven"
)

// KeyOutput selects where JSON lines are written: "-" for stdout or a file path.
const KeyOutput = "output.events"

// Stdout is the output target for standard output.
const Stdout = "-"

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// OpenOutput opens the configured event output for appending.
// An empty target means stdout. Stdout is never closed.
func OpenOutput(cfg driven.ConfigStore) (io.WriteCloser, error) {
	target := strings.TrimSpace(cfg.GetString(KeyOutput))
	if target == "" || target == Stdout {
		return nopCloser{os.Stdout}, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0700); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open event output: %w", err)
	}
	return f, nil
}
