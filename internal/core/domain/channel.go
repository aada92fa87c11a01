package domain

import (
	"crypto/subtle"
	"time"
)

// Channel is an active push-notification subscription against the
// change stream of a drive.
type Channel struct {
	// ID is the caller-chosen channel identifier.
	ID string

	// ResourceID is the opaque handle Google assigns to the watched resource.
	// Deliveries carry it in the X-Goog-Resource-ID header.
	ResourceID string

	// ResourceURI is the version-specific URI of the watched resource.
	ResourceURI string

	// Expiration is when Google stops delivering to this channel.
	Expiration time.Time

	// Token is the verification token deliveries must carry.
	Token string
}

// Subscription returns the persisted part of the channel.
func (c Channel) Subscription() Subscription {
	return Subscription{
		ResourceID: c.ResourceID,
		Expiration: c.Expiration,
		Token:      c.Token,
	}
}

// Subscription is the channel metadata kept between invocations,
// used to stop or renew the channel later.
type Subscription struct {
	ResourceID string    `json:"resourceId"`
	Expiration time.Time `json:"expiration"`
	Token      string    `json:"token,omitempty"`
}

// IsZero reports whether no subscription is recorded.
func (s Subscription) IsZero() bool {
	return s.ResourceID == "" && s.Expiration.IsZero()
}

// AcceptsToken reports whether a delivery's channel token matches.
// Subscriptions recorded without a token accept any delivery.
func (s Subscription) AcceptsToken(token string) bool {
	if s.Token == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(s.Token), []byte(token)) == 1
}

// ExpiresWithin reports whether the subscription expires before now+d.
func (s Subscription) ExpiresWithin(now time.Time, d time.Duration) bool {
	if s.Expiration.IsZero() {
		return true
	}
	return s.Expiration.Before(now.Add(d))
}

// Scope selects the change stream being watched.
type Scope struct {
	// DriveID is the shared drive to watch. Empty means the user's own drive.
	DriveID string
}

// MyDrive is the selector value for the user's own drive.
const MyDrive = "myDrive"

// ScopeFromSelector converts a configured drive selector into a Scope.
func ScopeFromSelector(selector string) Scope {
	if selector == "" || selector == MyDrive {
		return Scope{}
	}
	return Scope{DriveID: selector}
}

// IsDefault reports whether the scope is the user's own drive.
func (s Scope) IsDefault() bool {
	return s.DriveID == ""
}

// String returns the selector form of the scope.
func (s Scope) String() string {
	if s.IsDefault() {
		return MyDrive
	}
	return s.DriveID
}
