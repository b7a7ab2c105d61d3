// Package logging provides concrete implementations of the dwh.Logger interface.
//
// Available implementations:
//   - ZapLogger: Structured logging on go.uber.org/zap, console or JSON encoded to stderr
//   - NullLogger: Discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
