package domain

import "time"

// TriggerKind tags the inbound event reaching the watcher.
type TriggerKind int

const (
	// TriggerTimer is a scheduled renewal tick.
	TriggerTimer TriggerKind = iota + 1

	// TriggerWebhook is a push-notification delivery from Google.
	TriggerWebhook
)

// String returns the trigger kind name.
func (k TriggerKind) String() string {
	switch k {
	case TriggerTimer:
		return "timer"
	case TriggerWebhook:
		return "webhook"
	default:
		return "unknown"
	}
}

// Trigger is the single inbound event type of the watcher.
// Exactly one of Timer or Webhook is meaningful, selected by Kind.
type Trigger struct {
	Kind    TriggerKind
	Timer   TimerTick
	Webhook WebhookHeaders
}

// TimerTick describes a scheduled invocation.
type TimerTick struct {
	// Interval is the configured tick interval.
	Interval time.Duration

	// FiredAt is when the tick fired.
	FiredAt time.Time
}

// NewTimerTrigger creates a timer trigger.
func NewTimerTrigger(interval time.Duration, firedAt time.Time) Trigger {
	return Trigger{
		Kind:  TriggerTimer,
		Timer: TimerTick{Interval: interval, FiredAt: firedAt},
	}
}

// NewWebhookTrigger creates a webhook trigger from delivery headers.
func NewWebhookTrigger(headers WebhookHeaders) Trigger {
	return Trigger{
		Kind:    TriggerWebhook,
		Webhook: headers,
	}
}
