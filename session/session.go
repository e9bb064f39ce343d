package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/gaborage/go-session/auth"
	"github.com/gaborage/go-session/logger"
	"github.com/gaborage/go-session/retry"
	"github.com/gaborage/go-session/trace"
)

const (
	tracerName = "github.com/gaborage/go-session/session"

	spanLogin  = "session.login"
	spanLogout = "session.logout"
	spanSend   = "session.send"

	attrAuthenticated = "session.authenticated"
	attrMechanisms    = "auth.mechanisms"
	attrOverride      = "session.override_transport"
	attrIsolated      = "session.isolated_transport"

	headerAuthorization = "Authorization"
	ssoAuthPrefix       = "GoogleLogin auth="
	paramXT             = "xt"
	paramUser           = "u"
)

// Session tracks whether a client is logged in and owns the transport handle its
// authenticated calls go through. It is safe for concurrent use.
type Session struct {
	factory       TransportFactory
	authenticator Authenticator
	validate      *validator.Validate

	log              logger.Logger
	tracer           oteltrace.Tracer
	isolateAnonymous bool
	requestIDHeader  string

	mu            sync.Mutex
	authenticated bool
	transport     Transport
	creds         *Credentials
	closed        bool
}

// New creates an unauthenticated session holding a fresh handle from factory.
func New(factory TransportFactory, authenticator Authenticator, opts ...Option) (*Session, error) {
	if factory == nil {
		return nil, errors.New("session: transport factory is required")
	}
	if authenticator == nil {
		return nil, errors.New("session: authenticator is required")
	}

	s := &Session{
		factory:         factory,
		authenticator:   authenticator,
		validate:        defaultValidator,
		log:             logger.Nop(),
		tracer:          otel.GetTracerProvider().Tracer(tracerName),
		requestIDHeader: trace.HeaderXRequestID,
	}
	for _, opt := range opts {
		opt(s)
	}

	t, err := factory()
	if err != nil {
		return nil, fmt.Errorf("session: create transport: %w", err)
	}
	s.transport = t
	return s, nil
}

// NewAuthenticated assembles a session that is already logged in with creds, as if
// Login had succeeded. It exists for tests of code that depends on an authenticated session.
func NewAuthenticated(factory TransportFactory, authenticator Authenticator, creds *Credentials, opts ...Option) (*Session, error) {
	if creds.empty() {
		return nil, newError(OpLogin, ErrNoCredential, "no credential material")
	}
	s, err := New(factory, authenticator, opts...)
	if err != nil {
		return nil, err
	}
	s.authenticated = true
	s.creds = creds
	return s, nil
}

// IsAuthenticated reports whether the session holds credential material.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Transport returns the current handle. Its identity changes on every Logout.
func (s *Session) Transport() Transport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transport
}

// Login authenticates through the session's handle and moves the session to the
// authenticated state. It fails with ErrAlreadyLoggedIn when already logged in and with
// ErrInvalidIdentifierFormat for a malformed device ID; neither changes state, and no
// remote call is made. Authenticator errors are returned unchanged.
func (s *Session) Login(ctx context.Context, req LoginRequest) (err error) {
	ctx, span := s.tracer.Start(ctx, spanLogin)
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return newError(OpLogin, ErrClosed, "")
	}
	if s.authenticated {
		return newError(OpLogin, ErrAlreadyLoggedIn, "")
	}

	prepared, err := prepareLogin(s.validate, req)
	if err != nil {
		s.log.Warn().Err(err).Msg("Login rejected")
		return err
	}

	if s.transport == nil {
		t, err := s.factory()
		if err != nil {
			s.log.Warn().Err(err).Msg("Failed to create transport for login")
			return err
		}
		s.transport = t
	}

	creds, err := s.authenticator.Authenticate(ctx, s.transport, prepared)
	if err != nil {
		s.log.Warn().Err(err).Str("email", prepared.Email).Msg("Login failed")
		return err
	}
	if creds.empty() {
		err = newError(OpLogin, ErrNoCredential, "authenticator returned no credential material")
		s.log.Warn().Err(err).Str("email", prepared.Email).Msg("Login failed")
		return err
	}

	s.creds = creds
	s.authenticated = true
	span.SetAttributes(attribute.Bool(attrAuthenticated, true))
	s.log.Info().
		Str("email", prepared.Email).
		Str("device_id", prepared.DeviceID).
		Bool("oauth", creds.OAuth != nil).
		Bool("sso", creds.SSOToken != "").
		Bool("xt", creds.XTToken != "").
		Msg("Logged in")
	return nil
}

// Logout discards the credentials, closes the current handle and replaces it with a fresh
// one from the factory. It is allowed in either state. The session is unauthenticated
// afterwards even when closing the old handle or creating the new one fails; the returned
// error joins both failures. If the factory failed, the next Login or Send retries it.
func (s *Session) Logout(ctx context.Context) (err error) {
	_, span := s.tracer.Start(ctx, spanLogout)
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return newError(OpLogout, ErrClosed, "")
	}

	wasAuthenticated := s.authenticated
	old := s.transport
	s.transport = nil
	s.creds = nil
	s.authenticated = false

	var closeErr error
	defer func() {
		err = errors.Join(closeErr, err)
	}()
	defer func() {
		closeErr = s.closeHandle(old)
	}()

	next, err := s.factory()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to create transport after logout")
		return err
	}
	s.transport = next

	span.SetAttributes(attribute.Bool(attrAuthenticated, false))
	s.log.Info().Bool("was_authenticated", wasAuthenticated).Msg("Logged out")
	return nil
}

// Close releases the current handle. Every operation after Close fails with ErrClosed;
// further calls to Close return nil.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.authenticated = false
	s.creds = nil

	old := s.transport
	s.transport = nil
	return s.closeHandle(old)
}

func (s *Session) closeHandle(t Transport) error {
	if t == nil {
		return nil
	}
	if err := t.Close(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to close transport")
		return err
	}
	return nil
}

// Send dispatches req with the credentials need names.
//
// A requirement with any flag fails with ErrNotAuthenticated while the session is logged
// out, before any transport is consulted. Otherwise the call goes to the UsingTransport
// override when given, else to the session's own handle. The caller's req is not
// modified. Transport errors and responses are returned unchanged.
func (s *Session) Send(ctx context.Context, req *Request, need auth.Requirement, opts ...SendOption) (resp *Response, err error) {
	var o sendOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	ctx, span := s.tracer.Start(ctx, spanSend)
	defer func() { endSpan(span, err) }()
	span.SetAttributes(
		attribute.StringSlice(attrMechanisms, need.Mechanisms()),
		attribute.Bool(attrOverride, o.transport != nil),
	)

	target, creds, ephemeral, err := s.resolve(need, o.transport)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Bool(attrAuthenticated, creds != nil),
		attribute.Bool(attrIsolated, ephemeral),
	)
	if ephemeral {
		// closeHandle logs the failure; the call's own result is returned
		defer func() { _ = s.closeHandle(target) }()
	}

	out := req.Clone()
	trace.Inject(ctx, out.Header, s.requestIDHeader)
	if need.Any() {
		if err := attachCredentials(out, need, creds); err != nil {
			return nil, err
		}
	}

	s.log.Debug().
		Str("method", out.Method).
		Str("url", out.URL).
		Str("requirement", need.String()).
		Bool("override", o.transport != nil).
		Msg("Dispatching request")

	return target.Do(ctx, out)
}

// resolve picks the transport for one call and, for authenticated requirements, the
// credentials to attach. State and handle are captured together under the lock.
func (s *Session) resolve(need auth.Requirement, override Transport) (target Transport, creds *Credentials, ephemeral bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, nil, false, newError(OpSend, ErrClosed, "")
	}
	if need.Any() {
		if !s.authenticated {
			return nil, nil, false, newError(OpSend, ErrNotAuthenticated, "requires "+need.String())
		}
		creds = s.creds
	}

	switch {
	case override != nil:
		return override, creds, false, nil
	case s.isolateAnonymous && !need.Any():
		t, err := s.factory()
		if err != nil {
			return nil, nil, false, err
		}
		return t, nil, true, nil
	}

	if s.transport == nil {
		t, err := s.factory()
		if err != nil {
			return nil, nil, false, err
		}
		s.transport = t
	}
	return s.transport, creds, false, nil
}

// SendWithRetry runs Send under r, retrying transport failures. Session state and
// credential errors are returned after the first attempt since retrying cannot fix them.
// A nil r applies the default policy.
func (s *Session) SendWithRetry(ctx context.Context, r *retry.Retrier, req *Request, need auth.Requirement, opts ...SendOption) (*Response, error) {
	return retry.Do(ctx, r, func(ctx context.Context) (*Response, error) {
		resp, err := s.Send(ctx, req, need, opts...)
		var sessErr *Error
		if errors.As(err, &sessErr) {
			return nil, retry.Stop(err)
		}
		return resp, err
	})
}

// attachCredentials writes the material for each flag in need onto req.
// OAuth takes the Authorization header when OAuth and SSO are both required.
func attachCredentials(req *Request, need auth.Requirement, creds *Credentials) error {
	if creds == nil {
		return newError(OpSend, ErrNotAuthenticated, "requires "+need.String())
	}

	if need.OAuth() {
		if creds.OAuth == nil {
			return newError(OpSend, ErrNoCredential, auth.MechanismOAuth)
		}
		tok, err := creds.OAuth.Token()
		if err != nil {
			return err
		}
		if tok == nil || tok.AccessToken == "" {
			return newError(OpSend, ErrNoCredential, auth.MechanismOAuth)
		}
		req.Header.Set(headerAuthorization, tok.Type()+" "+tok.AccessToken)
	}

	if need.SSO() {
		if creds.SSOToken == "" {
			return newError(OpSend, ErrNoCredential, auth.MechanismSSO)
		}
		if !need.OAuth() {
			req.Header.Set(headerAuthorization, ssoAuthPrefix+creds.SSOToken)
		}
	}

	if need.XT() {
		if creds.XTToken == "" {
			return newError(OpSend, ErrNoCredential, auth.MechanismXT)
		}
		req.Query.Set(paramUser, "0")
		req.Query.Set(paramXT, creds.XTToken)
	}

	req.Cookies = append(req.Cookies, creds.Cookies...)
	return nil
}

func endSpan(span oteltrace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
