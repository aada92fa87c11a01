// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - StateStore: durable per-instance key-value state (SQLite, memory)
//   - EventEmitter: sink for emitted change events (JSON lines, SQLite log)
//   - DriveClient: the subset of the Google Drive API the watcher uses
//   - ConfigStore: application configuration (TOML file)
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
