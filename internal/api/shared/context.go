package shared

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is the type of request context keys set by the API layer.
type ContextKey string

// Context keys for various values
const (
	// CallerContextKey holds the subject of the validated webhook token.
	CallerContextKey ContextKey = "caller"

	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"

	// TraceIDHeader carries the trace ID back to the client.
	TraceIDHeader = "X-Trace-ID"
)

// SetTraceID adds a new trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, newTraceID())
}

// GetTraceID retrieves the trace ID from the context, or "" when absent.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// SetCaller records the authenticated caller.
func SetCaller(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, CallerContextKey, subject)
}

// GetCaller returns the authenticated caller, if any.
func GetCaller(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(CallerContextKey).(string)
	return subject, ok && subject != ""
}

// newTraceID returns a 32-character hex id.
func newTraceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
