package session

import (
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/gaborage/go-session/logger"
)

// Option configures a Session
type Option func(*Session)

// WithLogger sets the session logger (default: discard)
func WithLogger(log logger.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithTracerProvider sets the provider for session spans (default: the global provider)
func WithTracerProvider(tp oteltrace.TracerProvider) Option {
	return func(s *Session) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithIsolatedAnonymousRequests makes unauthenticated sends without an override use a
// one-off transport from the factory, closed after the call, instead of the session handle.
func WithIsolatedAnonymousRequests(enabled bool) Option {
	return func(s *Session) { s.isolateAnonymous = enabled }
}

// WithRequestIDHeader sets the header carrying the request ID (default: X-Request-ID)
func WithRequestIDHeader(header string) Option {
	return func(s *Session) {
		if header != "" {
			s.requestIDHeader = header
		}
	}
}

// SendOption configures a single Send call
type SendOption func(*sendOptions)

type sendOptions struct {
	transport Transport
}

// UsingTransport dispatches the call through t instead of the session's handle.
// The session handle is neither consulted nor touched, and t is not closed by the session.
func UsingTransport(t Transport) SendOption {
	return func(o *sendOptions) { o.transport = t }
}
