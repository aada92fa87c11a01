// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The watch pipeline is split into:
//
//   - ChannelManager: registers, renews and stops notification channels
//   - ChangePoller: drains the changes feed from a cursor
//   - CommentDiffer: finds new or modified comments against a watermark
//   - Controller: the Watcher entry point dispatching timer and webhook triggers
//   - Scheduler: fires timer triggers on the renewal interval
package services
