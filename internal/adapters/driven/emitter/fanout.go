package emitter

import (
	"context"

	"github.com/custodia-labs/drivewatch/internal/core/domain"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driven"
)

// Ensure Fanout implements the interface.
var _ driven.EventEmitter = Fanout(nil)

// Fanout forwards every event to each emitter in order.
// The first failure stops delivery and is returned. An emitter reporting
// driven.ErrDuplicateEvent also stops delivery, so a deduplicating log
// placed first keeps replays away from the emitters after it.
type Fanout []driven.EventEmitter

// NewFanout creates a fanout, skipping nil emitters.
func NewFanout(emitters ...driven.EventEmitter) Fanout {
	f := make(Fanout, 0, len(emitters))
	for _, e := range emitters {
		if e != nil {
			f = append(f, e)
		}
	}
	return f
}

// Emit forwards the event.
func (f Fanout) Emit(ctx context.Context, event domain.ChangeEvent, meta domain.EventMeta) error {
	for _, e := range f {
		if err := e.Emit(ctx, event, meta); err != nil {
			return err
		}
	}
	return nil
}
