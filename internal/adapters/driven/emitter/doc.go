// Package emitter provides EventEmitter implementations.
//
//   - JSONLines writes one JSON object per event to a writer
//   - Fanout forwards each event to several emitters in order
//
// OpenOutput resolves the output.events setting to a writer.
package emitter
