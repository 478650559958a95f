// Package telemetry provides structured, context-scoped logging for the
// runtime dispatcher and CLI. It wraps goa.design/clue/log the way the
// teacher runtime wraps it for its own workflows, but without the
// OpenTelemetry metrics/tracing surface, which is out of scope for the
// backplane core.
package telemetry

import (
	"context"

	"goa.design/clue/log"
)

// Logger is the structured logging surface consumed by the dispatcher and
// CLI. Implementations must be safe for concurrent use by multiple runs.
type Logger interface {
	// Debug emits a debug-level message with structured key/value pairs.
	Debug(ctx context.Context, msg string, keyvals ...any)
	// Info emits an info-level message with structured key/value pairs.
	Info(ctx context.Context, msg string, keyvals ...any)
	// Warn emits a warning-level message with structured key/value pairs.
	Warn(ctx context.Context, msg string, keyvals ...any)
	// Error emits an error-level message with structured key/value pairs.
	Error(ctx context.Context, msg string, keyvals ...any)
}

// ClueLogger delegates to goa.design/clue/log. The zero value is ready to
// use; clue reads formatting/debug settings from the context (set via
// log.Context and log.WithFormat/log.WithDebug upstream).
type ClueLogger struct{}

// NewClueLogger constructs a Logger backed by goa.design/clue/log.
func NewClueLogger() Logger { return ClueLogger{} }

// Debug implements Logger.
func (ClueLogger) Debug(ctx context.Context, msg string, keyvals ...any) {
	log.Debug(ctx, fielders(msg, keyvals)...)
}

// Info implements Logger.
func (ClueLogger) Info(ctx context.Context, msg string, keyvals ...any) {
	log.Info(ctx, fielders(msg, keyvals)...)
}

// Warn implements Logger.
func (ClueLogger) Warn(ctx context.Context, msg string, keyvals ...any) {
	log.Warn(ctx, fielders(msg, keyvals)...)
}

// Error implements Logger.
func (ClueLogger) Error(ctx context.Context, msg string, keyvals ...any) {
	log.Error(ctx, nil, fielders(msg, keyvals)...)
}

// fielders converts a message plus variadic key/value pairs (k1, v1, k2,
// v2, ...) into clue's log.Fielder slice. An odd trailing key is paired
// with a nil value.
func fielders(msg string, keyvals []any) []log.Fielder {
	out := make([]log.Fielder, 0, 1+len(keyvals)/2)
	out = append(out, log.KV{K: "msg", V: msg})
	for i := 0; i < len(keyvals); i += 2 {
		k, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		var v any
		if i+1 < len(keyvals) {
			v = keyvals[i+1]
		}
		out = append(out, log.KV{K: k, V: v})
	}
	return out
}

// Noop is a Logger that discards everything. Useful for tests and library
// callers that don't want clue's context-bound configuration.
type Noop struct{}

// Debug implements Logger.
func (Noop) Debug(context.Context, string, ...any) {}

// Info implements Logger.
func (Noop) Info(context.Context, string, ...any) {}

// Warn implements Logger.
func (Noop) Warn(context.Context, string, ...any) {}

// Error implements Logger.
func (Noop) Error(context.Context, string, ...any) {}
