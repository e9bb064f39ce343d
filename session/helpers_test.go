package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-session/session"
	testconsts "github.com/gaborage/go-session/testing"
	"github.com/gaborage/go-session/testing/fixtures"
	"github.com/gaborage/go-session/testing/mocks"
)

func newSession(t *testing.T, pool *fixtures.TransportPool, opts ...session.Option) (*session.Session, *mocks.MockAuthenticator) {
	t.Helper()
	authenticator := fixtures.NewAuthenticator(fixtures.FullCredentials())
	s, err := session.New(pool.Factory(), authenticator, opts...)
	require.NoError(t, err)
	return s, authenticator
}

func loggedIn(t *testing.T, pool *fixtures.TransportPool, opts ...session.Option) *session.Session {
	t.Helper()
	s, _ := newSession(t, pool, opts...)
	require.NoError(t, s.Login(context.Background(), loginRequest()))
	return s
}

func loginRequest() session.LoginRequest {
	return session.LoginRequest{
		Email:    testconsts.TestEmail,
		Password: testconsts.TestPassword,
		DeviceID: testconsts.TestDeviceID,
	}
}

func newRequest() *session.Request {
	return &session.Request{Method: testconsts.TestMethodPost, URL: testconsts.TestURL}
}
