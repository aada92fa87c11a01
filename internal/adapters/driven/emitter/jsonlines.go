package emitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/custodia-labs/drivewatch/internal/core/domain"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driven"
)

// Ensure JSONLines implements the interface.
var _ driven.EventEmitter = (*JSONLines)(nil)

// JSONLines writes each emission as a single JSON line.
type JSONLines struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONLines creates an emitter writing to w.
func NewJSONLines(w io.Writer) *JSONLines {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLines{enc: enc}
}

// Emit writes the event and its metadata.
func (j *JSONLines) Emit(ctx context.Context, event domain.ChangeEvent, meta domain.EventMeta) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.enc.Encode(domain.Emission{Event: event, Meta: meta}); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return nil
}
