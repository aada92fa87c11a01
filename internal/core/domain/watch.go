package domain

import (
	"fmt"
	"net/url"
	"time"
)

// DefaultRenewalInterval is how often the notification channel is renewed.
const DefaultRenewalInterval = 30 * time.Minute

// MaxRenewalInterval bounds the renewal interval. Drive channels on the
// changes feed expire after at most one week.
const MaxRenewalInterval = 7 * 24 * time.Hour

// WatchConfig holds operator configuration for a watch.
type WatchConfig struct {
	// Scope selects the user's drive or a shared drive.
	Scope Scope

	// UpdateTypes is the allow-list of resource states that trigger processing.
	UpdateTypes []UpdateType

	// WatchProperties opts in to deliveries whose only change is "properties".
	WatchProperties bool

	// IncludeDeleted also emits comments that were deleted.
	IncludeDeleted bool

	// RenewalInterval is the timer interval for channel renewal.
	RenewalInterval time.Duration

	// CallbackURL is the public HTTPS address Google delivers to.
	CallbackURL string
}

// DefaultWatchConfig returns the default configuration: the user's drive,
// every update type, properties-only deliveries ignored.
func DefaultWatchConfig() WatchConfig {
	types := make([]UpdateType, len(AllUpdateTypes))
	copy(types, AllUpdateTypes)
	return WatchConfig{
		UpdateTypes:     types,
		RenewalInterval: DefaultRenewalInterval,
	}
}

// Validate checks the configuration. It returns an error wrapping
// ErrInvalidConfig describing the first problem found.
func (c WatchConfig) Validate() error {
	if len(c.UpdateTypes) == 0 {
		return fmt.Errorf("%w: at least one update type is required", ErrInvalidConfig)
	}
	for _, t := range c.UpdateTypes {
		if _, ok := ParseUpdateType(string(t)); !ok {
			return fmt.Errorf("%w: unknown update type %q", ErrInvalidConfig, t)
		}
	}
	if c.RenewalInterval <= 0 {
		return fmt.Errorf("%w: renewal interval must be positive", ErrInvalidConfig)
	}
	if c.RenewalInterval > MaxRenewalInterval {
		return fmt.Errorf("%w: renewal interval %s exceeds channel lifetime %s",
			ErrInvalidConfig, c.RenewalInterval, MaxRenewalInterval)
	}
	if c.CallbackURL != "" {
		u, err := url.Parse(c.CallbackURL)
		if err != nil || u.Host == "" {
			return fmt.Errorf("%w: callback URL %q is not absolute", ErrInvalidConfig, c.CallbackURL)
		}
		if u.Scheme != "https" {
			return fmt.Errorf("%w: callback URL must use https", ErrInvalidConfig)
		}
	}
	return nil
}

// Allows reports whether deliveries with the given state should be processed.
func (c WatchConfig) Allows(state UpdateType) bool {
	for _, t := range c.UpdateTypes {
		if t == state {
			return true
		}
	}
	return false
}
