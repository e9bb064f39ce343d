package session_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/gaborage/go-session/auth"
	obtest "github.com/gaborage/go-session/observability/testing"
	"github.com/gaborage/go-session/retry"
	"github.com/gaborage/go-session/session"
	testconsts "github.com/gaborage/go-session/testing"
	"github.com/gaborage/go-session/testing/fixtures"
	"github.com/gaborage/go-session/testing/mocks"
	"github.com/gaborage/go-session/trace"
)

var allFlags = auth.New(auth.WithOAuth(), auth.WithSSO(), auth.WithXT())

func TestSendWithoutFlagsSucceedsInEitherState(t *testing.T) {
	pool := fixtures.NewTransportPool(nil)
	s, _ := newSession(t, pool)
	ctx := context.Background()

	resp, err := s.Send(ctx, newRequest(), auth.None)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Login(ctx, loginRequest()))
	_, err = s.Send(ctx, newRequest(), auth.None)
	require.NoError(t, err)

	reqs := pool.Created()[0].Requests()
	require.Len(t, reqs, 2)
	for _, req := range reqs {
		assert.Empty(t, req.Header.Get("Authorization"), "no-flag requests carry no credentials")
		assert.Empty(t, req.Cookies)
	}
}

func TestSendRequiringAuthFailsWhenUnauthenticated(t *testing.T) {
	requirements := []auth.Requirement{
		auth.New(auth.WithOAuth()),
		auth.New(auth.WithSSO()),
		auth.New(auth.WithXT()),
		allFlags,
	}

	for _, need := range requirements {
		t.Run(need.String(), func(t *testing.T) {
			pool := fixtures.NewTransportPool(nil)
			s, _ := newSession(t, pool)
			override := &mocks.MockTransport{}

			_, err := s.Send(context.Background(), newRequest(), need, session.UsingTransport(override))

			assert.ErrorIs(t, err, session.ErrNotAuthenticated)
			var sessErr *session.Error
			require.ErrorAs(t, err, &sessErr)
			assert.Equal(t, session.OpSend, sessErr.Op)
			assert.Empty(t, override.Calls, "override must not be touched")
			assert.Empty(t, pool.Created()[0].Calls)
		})
	}
}

func TestSendOverrideBypassesSessionHandle(t *testing.T) {
	pool := fixtures.NewTransportPool(nil)
	s := loggedIn(t, pool)
	ctx := context.Background()

	override := &mocks.MockTransport{}
	override.ExpectDo(&session.Response{StatusCode: http.StatusAccepted}, nil).Once()

	resp, err := s.Send(ctx, newRequest(), auth.New(auth.WithSSO()), session.UsingTransport(override))
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	override.AssertExpectations(t)
	pool.Created()[0].AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
	assert.Equal(t, "GoogleLogin auth="+testconsts.TestSSOToken, override.LastRequest().Header.Get("Authorization"))

	require.NoError(t, s.Logout(ctx))
	override.AssertNotCalled(t, "Close")
}

func TestSendAttachesCredentials(t *testing.T) {
	tests := []struct {
		name          string
		need          auth.Requirement
		authorization string
		xt            string
	}{
		{name: "oauth", need: auth.New(auth.WithOAuth()), authorization: "Bearer " + testconsts.TestOAuthToken},
		{name: "sso", need: auth.New(auth.WithSSO()), authorization: "GoogleLogin auth=" + testconsts.TestSSOToken},
		{name: "xt", need: auth.New(auth.WithXT()), xt: testconsts.TestXTToken},
		{name: "oauth_wins_over_sso", need: auth.New(auth.WithOAuth(), auth.WithSSO()), authorization: "Bearer " + testconsts.TestOAuthToken},
		{name: "sso_and_xt", need: auth.New(auth.WithSSO(), auth.WithXT()), authorization: "GoogleLogin auth=" + testconsts.TestSSOToken, xt: testconsts.TestXTToken},
		{name: "all", need: allFlags, authorization: "Bearer " + testconsts.TestOAuthToken, xt: testconsts.TestXTToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := fixtures.NewTransportPool(nil)
			s := loggedIn(t, pool)

			_, err := s.Send(context.Background(), newRequest(), tt.need)
			require.NoError(t, err)

			sent := pool.Created()[0].LastRequest()
			require.NotNil(t, sent)
			assert.Equal(t, tt.authorization, sent.Header.Get("Authorization"))
			assert.Equal(t, tt.xt, sent.Query.Get("xt"))
			if tt.xt != "" {
				assert.Equal(t, "0", sent.Query.Get("u"))
			} else {
				assert.False(t, sent.Query.Has("u"))
			}
		})
	}
}

func TestSendAttachesSessionCookies(t *testing.T) {
	pool := fixtures.NewTransportPool(nil)
	creds := &session.Credentials{
		SSOToken: testconsts.TestSSOToken,
		Cookies:  []*http.Cookie{{Name: "SID", Value: "cookie-value"}},
	}
	s, err := session.NewAuthenticated(pool.Factory(), &mocks.MockAuthenticator{}, creds)
	require.NoError(t, err)

	req := newRequest()
	req.Cookies = []*http.Cookie{{Name: "pref", Value: "1"}}
	_, err = s.Send(context.Background(), req, auth.New(auth.WithSSO()))
	require.NoError(t, err)

	sent := pool.Created()[0].LastRequest()
	require.Len(t, sent.Cookies, 2)
	assert.Equal(t, "pref", sent.Cookies[0].Name)
	assert.Equal(t, "SID", sent.Cookies[1].Name)
	assert.Len(t, req.Cookies, 1)
}

func TestSendDoesNotModifyCallerRequest(t *testing.T) {
	pool := fixtures.NewTransportPool(nil)
	s := loggedIn(t, pool)

	req := newRequest()
	req.Header = http.Header{"Accept": {"application/json"}}
	_, err := s.Send(context.Background(), req, allFlags)
	require.NoError(t, err)

	assert.Equal(t, http.Header{"Accept": {"application/json"}}, req.Header)
	assert.Nil(t, req.Query)

	sent := pool.Created()[0].LastRequest()
	assert.NotSame(t, req, sent)
	assert.Equal(t, "application/json", sent.Header.Get("Accept"))
}

func TestSendReportsMissingCredential(t *testing.T) {
	tests := []struct {
		name  string
		creds *session.Credentials
		need  auth.Requirement
	}{
		{name: "oauth", creds: &session.Credentials{SSOToken: testconsts.TestSSOToken}, need: auth.New(auth.WithOAuth())},
		{name: "sso", creds: &session.Credentials{XTToken: testconsts.TestXTToken}, need: auth.New(auth.WithSSO())},
		{name: "xt", creds: &session.Credentials{SSOToken: testconsts.TestSSOToken}, need: auth.New(auth.WithXT())},
		{
			name:  "empty_oauth_token",
			creds: &session.Credentials{OAuth: oauth2.StaticTokenSource(&oauth2.Token{})},
			need:  auth.New(auth.WithOAuth()),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := fixtures.NewTransportPool(nil)
			s, err := session.NewAuthenticated(pool.Factory(), &mocks.MockAuthenticator{}, tt.creds)
			require.NoError(t, err)

			_, err = s.Send(context.Background(), newRequest(), tt.need)

			assert.ErrorIs(t, err, session.ErrNoCredential)
			assert.Empty(t, pool.Created()[0].Requests())
		})
	}
}

func TestSendReturnsTransportResultUnchanged(t *testing.T) {
	errTransport := errors.New("connection reset")
	want := &session.Response{StatusCode: http.StatusTeapot}
	pool := fixtures.NewTransportPool(func(m *mocks.MockTransport) {
		m.ExpectDo(nil, errTransport).Once()
		m.ExpectDo(want, nil).Once()
	})
	s := loggedIn(t, pool)
	ctx := context.Background()

	_, err := s.Send(ctx, newRequest(), allFlags)
	assert.Same(t, errTransport, err)

	resp, err := s.Send(ctx, newRequest(), allFlags)
	require.NoError(t, err)
	assert.Same(t, want, resp)
}

func TestSendInjectsRequestID(t *testing.T) {
	pool := fixtures.NewTransportPool(nil)
	s, _ := newSession(t, pool)
	ctx := trace.WithRequestID(context.Background(), "req-123")

	_, err := s.Send(ctx, newRequest(), auth.None)
	require.NoError(t, err)
	assert.Equal(t, "req-123", pool.Created()[0].LastRequest().Header.Get(trace.HeaderXRequestID))

	custom, _ := newSession(t, fixtures.NewTransportPool(nil), session.WithRequestIDHeader("X-Correlation-ID"))
	override := &mocks.MockTransport{}
	override.ExpectDo(fixtures.OKResponse(), nil)
	_, err = custom.Send(ctx, newRequest(), auth.None, session.UsingTransport(override))
	require.NoError(t, err)
	assert.Equal(t, "req-123", override.LastRequest().Header.Get("X-Correlation-ID"))
}

func TestIsolatedAnonymousRequests(t *testing.T) {
	pool := fixtures.NewTransportPool(nil)
	s := loggedIn(t, pool, session.WithIsolatedAnonymousRequests(true))
	ctx := context.Background()
	own := pool.Created()[0]

	_, err := s.Send(ctx, newRequest(), auth.None)
	require.NoError(t, err)

	require.Equal(t, 2, pool.Len())
	oneOff := pool.Created()[1]
	oneOff.AssertNumberOfCalls(t, "Do", 1)
	oneOff.AssertNumberOfCalls(t, "Close", 1)
	assert.Empty(t, oneOff.LastRequest().Header.Get("Authorization"))
	own.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)

	_, err = s.Send(ctx, newRequest(), auth.New(auth.WithSSO()))
	require.NoError(t, err)
	own.AssertNumberOfCalls(t, "Do", 1)
	assert.Equal(t, 2, pool.Len())
	assert.Same(t, own, s.Transport())
}

func TestConcurrentSendAndLogout(t *testing.T) {
	pool := fixtures.NewTransportPool(nil)
	s := loggedIn(t, pool)

	var g errgroup.Group
	for range 20 {
		g.Go(func() error {
			_, err := s.Send(context.Background(), newRequest(), auth.None)
			return err
		})
	}
	g.Go(func() error { return s.Logout(context.Background()) })
	require.NoError(t, g.Wait())

	assert.False(t, s.IsAuthenticated())
	handles := pool.Created()
	require.Len(t, handles, 2)
	handles[0].AssertNumberOfCalls(t, "Close", 1)
	handles[1].AssertNotCalled(t, "Close")

	total := len(handles[0].Requests()) + len(handles[1].Requests())
	assert.Equal(t, 20, total)
}

func TestSendWithRetry(t *testing.T) {
	errTransient := errors.New("503 backend busy")
	pool := fixtures.NewTransportPool(func(m *mocks.MockTransport) {
		m.ExpectDo(nil, errTransient).Twice()
	})
	s := loggedIn(t, pool)

	var retries int
	r, err := retry.New(
		retry.Policy{MaxAttempts: 3, InitialDelay: time.Millisecond, Multiplier: 2},
		retry.WithOnRetry(func(int, error, time.Duration) { retries++ }),
	)
	require.NoError(t, err)

	resp, err := s.SendWithRetry(context.Background(), r, newRequest(), allFlags)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, retries)
	pool.Created()[0].AssertNumberOfCalls(t, "Do", 3)

	require.NoError(t, s.Logout(context.Background()))
	retries = 0
	_, err = s.SendWithRetry(context.Background(), r, newRequest(), allFlags)
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
	assert.Zero(t, retries, "state errors are not retried")
}

func TestSessionSpans(t *testing.T) {
	tp := obtest.NewTestTraceProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	pool := fixtures.NewTransportPool(nil)
	s, _ := newSession(t, pool, session.WithTracerProvider(tp))
	ctx := context.Background()

	_, err := s.Send(ctx, newRequest(), auth.New(auth.WithOAuth()))
	require.Error(t, err)
	require.NoError(t, s.Login(ctx, loginRequest()))
	_, err = s.Send(ctx, newRequest(), auth.New(auth.WithOAuth(), auth.WithXT()))
	require.NoError(t, err)
	require.NoError(t, s.Logout(ctx))

	collector := obtest.NewSpanCollector(t, tp.Exporter)
	sends := collector.WithName("session.send").AssertCount(2)

	rejected := sends.First()
	obtest.AssertSpanError(t, &rejected)
	obtest.AssertSpanAttribute(t, &rejected, "auth.mechanisms", []string{"oauth"})

	login := collector.WithName("session.login").AssertCount(1).First()
	obtest.AssertSpanOK(t, &login)
	obtest.AssertSpanAttribute(t, &login, "session.authenticated", true)

	logout := collector.WithName("session.logout").AssertCount(1).First()
	obtest.AssertSpanOK(t, &logout)
	obtest.AssertSpanAttribute(t, &logout, "session.authenticated", false)
}

func TestSendPropagatesTraceContext(t *testing.T) {
	tp := obtest.NewTestTraceProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	pool := fixtures.NewTransportPool(nil)
	s, _ := newSession(t, pool, session.WithTracerProvider(tp))

	_, err := s.Send(context.Background(), newRequest(), auth.None)
	require.NoError(t, err)

	assert.NotEmpty(t, pool.Created()[0].LastRequest().Header.Get(trace.HeaderTraceParent))
}
