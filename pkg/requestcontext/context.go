// Package requestcontext provides context accessors for values scoped to one
// unit of work: a scheduled job run, a message being processed, or an admin
// HTTP request.
//
// Usage in services and processors (read values):
//
//	now := requestcontext.Now(ctx)
//	today := requestcontext.Today(ctx)
//	runID := requestcontext.RunID(ctx)
//
// Usage in the scheduler and dispatcher (set values):
//
//	ctx = requestcontext.WithRunID(ctx, runID)
//	ctx = requestcontext.WithMessageID(ctx, msg.ID.String())
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

type (
	runIDKey       struct{}
	messageIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyRunID       = runIDKey{}
	ContextKeyMessageID   = messageIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// -----------------------------------------------------------------------------
// Correlation
// -----------------------------------------------------------------------------

// RunID retrieves the scheduled job run identifier from the context.
func RunID(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyRunID).(string); ok {
		return v
	}
	return ""
}

// WithRunID injects a job run identifier into the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// MessageID retrieves the identifier of the message being processed.
func MessageID(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyMessageID).(string); ok {
		return v
	}
	return ""
}

// WithMessageID injects the identifier of the message being processed.
func WithMessageID(ctx context.Context, messageID string) context.Context {
	return context.WithValue(ctx, ContextKeyMessageID, messageID)
}

// -----------------------------------------------------------------------------
// Time
// -----------------------------------------------------------------------------

// Now retrieves the scoped time from context.
// Falls back to time.Now() if not set.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// Today returns Now truncated to a UTC calendar date.
func Today(ctx context.Context) time.Time {
	n := Now(ctx).UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// WithTime injects a specific time into a context.
// Useful for:
//   - Service and processor unit tests
//   - Scheduled jobs that need consistent time within one run
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
