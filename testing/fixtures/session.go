package fixtures

import (
	"sync"

	"golang.org/x/oauth2"

	"github.com/gaborage/go-session/session"
	testconsts "github.com/gaborage/go-session/testing"
	"github.com/gaborage/go-session/testing/mocks"
)

// TransportPool is a session.TransportFactory backed by mocks. Every handle it creates
// accepts any Do and Close call unless configured otherwise, and is kept for inspection.
type TransportPool struct {
	mu        sync.Mutex
	created   []*mocks.MockTransport
	failNext  error
	configure func(*mocks.MockTransport)
}

// NewTransportPool creates a pool. configure, when not nil, runs on each new mock
// before the default expectations are added.
func NewTransportPool(configure func(*mocks.MockTransport)) *TransportPool {
	return &TransportPool{configure: configure}
}

// Factory returns the factory to hand to session.New
func (p *TransportPool) Factory() session.TransportFactory {
	return func() (session.Transport, error) {
		p.mu.Lock()
		defer p.mu.Unlock()

		if err := p.failNext; err != nil {
			p.failNext = nil
			return nil, err
		}

		t := &mocks.MockTransport{}
		if p.configure != nil {
			p.configure(t)
		}
		t.ExpectDo(OKResponse(), nil).Maybe()
		t.ExpectClose(nil).Maybe()
		p.created = append(p.created, t)
		return t, nil
	}
}

// FailNext makes the next factory call return err
func (p *TransportPool) FailNext(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failNext = err
}

// Created returns every handle created so far, oldest first
func (p *TransportPool) Created() []*mocks.MockTransport {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*mocks.MockTransport(nil), p.created...)
}

// Len returns the number of handles created so far
func (p *TransportPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.created)
}

// OKResponse returns an empty 200 response
func OKResponse() *session.Response {
	return &session.Response{StatusCode: 200}
}

// FullCredentials returns credentials carrying material for every mechanism
func FullCredentials() *session.Credentials {
	return &session.Credentials{
		OAuth:    oauth2.StaticTokenSource(&oauth2.Token{AccessToken: testconsts.TestOAuthToken, TokenType: "Bearer"}),
		SSOToken: testconsts.TestSSOToken,
		XTToken:  testconsts.TestXTToken,
	}
}

// NewAuthenticator returns an authenticator that always yields creds
func NewAuthenticator(creds *session.Credentials) *mocks.MockAuthenticator {
	m := &mocks.MockAuthenticator{}
	m.ExpectAuthenticate(creds, nil)
	return m
}
