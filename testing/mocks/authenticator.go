package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/gaborage/go-session/session"
)

// MockAuthenticator provides a testify-based mock implementation of session.Authenticator.
//
// Example usage:
//
//	mockAuth := &mocks.MockAuthenticator{}
//	mockAuth.ExpectAuthenticate(&session.Credentials{SSOToken: "sso"}, nil)
type MockAuthenticator struct {
	mock.Mock
}

// Authenticate implements session.Authenticator
func (m *MockAuthenticator) Authenticate(ctx context.Context, t session.Transport, req session.LoginRequest) (*session.Credentials, error) {
	arguments := m.Called(ctx, t, req)
	if arguments.Get(0) == nil {
		return nil, arguments.Error(1)
	}
	return arguments.Get(0).(*session.Credentials), arguments.Error(1)
}

// ExpectAuthenticate sets up an expectation for any login request
func (m *MockAuthenticator) ExpectAuthenticate(creds *session.Credentials, err error) *mock.Call {
	return m.On("Authenticate", mock.Anything, mock.Anything, mock.Anything).Return(creds, err)
}

// LastLoginRequest returns the most recent request passed to Authenticate
func (m *MockAuthenticator) LastLoginRequest() (session.LoginRequest, bool) {
	for i := len(m.Calls) - 1; i >= 0; i-- {
		if m.Calls[i].Method != "Authenticate" {
			continue
		}
		req, ok := m.Calls[i].Arguments.Get(2).(session.LoginRequest)
		return req, ok
	}
	return session.LoginRequest{}, false
}
