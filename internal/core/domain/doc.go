// Package domain defines the core entities of drivewatch.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Channel, Subscription: a Drive push-notification channel
//   - Trigger: the tagged inbound event (timer tick or webhook delivery)
//   - File, Comment, ChangeEvent: what gets emitted
//   - WatchConfig: operator configuration for a watch
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
