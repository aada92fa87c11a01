package driven

import (
	"context"
	"errors"

	"github.com/custodia-labs/drivewatch/internal/core/domain"
)

// EventEmitter receives one call per discovered comment change.
type EventEmitter interface {
	// Emit publishes an event. Downstream consumers dedupe on meta.ID.
	Emit(ctx context.Context, event domain.ChangeEvent, meta domain.EventMeta) error
}

// EventLog is an emitter that also keeps the emitted events for inspection.
type EventLog interface {
	EventEmitter

	// Recent returns up to limit emissions, most recent first.
	Recent(ctx context.Context, limit int) ([]domain.Emission, error)
}

// ErrDuplicateEvent is returned by an EventLog that already holds an
// emission with the same dedupe key. Nothing was recorded.
var ErrDuplicateEvent = errors.New("event already emitted")
