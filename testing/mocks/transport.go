package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/gaborage/go-session/session"
)

// MockTransport provides a testify-based mock implementation of session.Transport.
//
// Example usage:
//
//	mockTransport := &mocks.MockTransport{}
//	mockTransport.ExpectDo(&session.Response{StatusCode: 200}, nil)
//	mockTransport.ExpectClose(nil)
//
//	sess, _ := session.New(func() (session.Transport, error) { return mockTransport, nil }, authenticator)
type MockTransport struct {
	mock.Mock
}

// Do implements session.Transport
func (m *MockTransport) Do(ctx context.Context, req *session.Request) (*session.Response, error) {
	arguments := m.Called(ctx, req)
	if arguments.Get(0) == nil {
		return nil, arguments.Error(1)
	}
	return arguments.Get(0).(*session.Response), arguments.Error(1)
}

// Close implements session.Transport
func (m *MockTransport) Close() error {
	arguments := m.Called()
	return arguments.Error(0)
}

// Helper methods for common testing scenarios

// ExpectDo sets up a Do expectation for any request
func (m *MockTransport) ExpectDo(resp *session.Response, err error) *mock.Call {
	return m.On("Do", mock.Anything, mock.Anything).Return(resp, err)
}

// ExpectClose sets up a Close expectation
func (m *MockTransport) ExpectClose(err error) *mock.Call {
	return m.On("Close").Return(err)
}

// Requests returns the requests passed to Do, in call order
func (m *MockTransport) Requests() []*session.Request {
	var reqs []*session.Request
	for _, call := range m.Calls {
		if call.Method != "Do" {
			continue
		}
		if req, ok := call.Arguments.Get(1).(*session.Request); ok {
			reqs = append(reqs, req)
		}
	}
	return reqs
}

// LastRequest returns the most recent request passed to Do, or nil
func (m *MockTransport) LastRequest() *session.Request {
	reqs := m.Requests()
	if len(reqs) == 0 {
		return nil
	}
	return reqs[len(reqs)-1]
}
