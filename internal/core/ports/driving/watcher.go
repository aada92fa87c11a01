package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/drivewatch/internal/core/domain"
)

// Watcher is the entry point of a Drive comment watch.
type Watcher interface {
	// Activate registers a notification channel and records a start cursor.
	Activate(ctx context.Context) (*WatchStatus, error)

	// Deactivate clears local state and stops the notification channel.
	Deactivate(ctx context.Context) error

	// Dispatch handles a single timer tick or webhook delivery.
	Dispatch(ctx context.Context, trigger domain.Trigger) (*DispatchResult, error)

	// Status returns the persisted watch state.
	Status(ctx context.Context) (*WatchStatus, error)
}

// WatchStatus is a snapshot of the persisted watch state.
type WatchStatus struct {
	// Active indicates a channel is recorded.
	Active bool

	// ChannelID is the current channel identifier.
	ChannelID string

	// Subscription holds the channel's resource ID and expiration.
	Subscription domain.Subscription

	// Cursor is the change-feed page token processing resumes from.
	Cursor string

	// ExpiresSoon is set when an active channel expires before the next
	// scheduled renewal, or its expiration is unknown.
	ExpiresSoon bool

	// TrackedFiles is the number of files with a comment watermark.
	TrackedFiles int

	// PendingFiles is the number of files queued for retry after a failure.
	PendingFiles int
}

// SkipReason explains why a delivery was dropped without processing.
type SkipReason string

// Reasons a webhook delivery is ignored.
const (
	SkipNone             SkipReason = ""
	SkipMissingHeaders   SkipReason = "missing headers"
	SkipInactive         SkipReason = "no active channel"
	SkipUnknownChannel   SkipReason = "unknown channel"
	SkipUnknownResource  SkipReason = "unknown resource"
	SkipBadToken         SkipReason = "channel token mismatch"
	SkipDuplicate        SkipReason = "already processed"
	SkipUpdateType       SkipReason = "update type not watched"
	SkipPropertiesOnly   SkipReason = "properties-only change"
	SkipNothingToProcess SkipReason = "no cursor"
)

// DispatchResult summarises what a Dispatch call did.
type DispatchResult struct {
	// Kind is the trigger that was handled.
	Kind domain.TriggerKind

	// Skipped is set when a webhook delivery was ignored.
	Skipped SkipReason

	// FilesChanged is the number of changed files returned by the poller.
	FilesChanged int

	// Emitted is the number of events emitted.
	Emitted int

	// Expiration is the channel expiration after a timer renewal.
	Expiration time.Time
}
