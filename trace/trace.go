// Package trace correlates outbound session requests with the caller's context.
// It carries a request ID in the context and writes it, together with the W3C
// trace context of the active span, onto outbound request headers.
package trace

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/propagation"
)

// contextKey is the type for context keys to avoid collisions
type contextKey string

const (
	// requestIDKey is the context key for request ID values
	requestIDKey contextKey = "request_id"
	// HeaderXRequestID is the default header name for request correlation
	HeaderXRequestID = "X-Request-ID"
	// HeaderTraceParent is the W3C trace context header name
	HeaderTraceParent = "traceparent"
)

var propagator = propagation.TraceContext{}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns a request ID from context if present
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		return id, true
	}
	return "", false
}

// EnsureRequestID returns an existing request ID from context or generates a new one
func EnsureRequestID(ctx context.Context) string {
	if id, ok := RequestIDFromContext(ctx); ok {
		return id
	}
	return uuid.New().String()
}

// Inject writes the request ID under idHeader unless the header is already set,
// then writes the traceparent of the span in ctx when there is one.
// An empty idHeader falls back to HeaderXRequestID.
func Inject(ctx context.Context, header http.Header, idHeader string) {
	if header == nil {
		return
	}
	if idHeader == "" {
		idHeader = HeaderXRequestID
	}
	if header.Get(idHeader) == "" {
		header.Set(idHeader, EnsureRequestID(ctx))
	}
	propagator.Inject(ctx, propagation.HeaderCarrier(header))
}
