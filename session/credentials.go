package session

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// Credentials is the material an Authenticator obtained at login.
type Credentials struct {
	// OAuth yields bearer tokens for auth.WithOAuth requests.
	OAuth oauth2.TokenSource
	// SSOToken is sent as "GoogleLogin auth=<token>" for auth.WithSSO requests.
	SSOToken string
	// XTToken is sent as the xt query parameter for auth.WithXT requests.
	XTToken string
	// Cookies are attached to every authenticated request.
	Cookies []*http.Cookie
}

func (c *Credentials) empty() bool {
	return c == nil || (c.OAuth == nil && c.SSOToken == "" && c.XTToken == "" && len(c.Cookies) == 0)
}

// LoginRequest carries the login arguments handed to the Authenticator.
// Only DeviceID has a mandated format; every other field is passed through as is.
type LoginRequest struct {
	Email    string
	Password string
	// OAuth is a token source obtained out of band, for OAuth-only clients.
	OAuth oauth2.TokenSource
	// DeviceID identifies the uploading device as six colon-separated hex octets.
	// Accepted values are upper-cased before reaching the Authenticator.
	DeviceID   string `validate:"omitempty,deviceid"`
	DeviceName string
}

// Authenticator performs the remote login flow on the session's transport and returns
// the resulting credential material.
type Authenticator interface {
	Authenticate(ctx context.Context, t Transport, req LoginRequest) (*Credentials, error)
}

// AuthenticatorFunc adapts a function to the Authenticator interface
type AuthenticatorFunc func(ctx context.Context, t Transport, req LoginRequest) (*Credentials, error)

// Authenticate calls f
func (f AuthenticatorFunc) Authenticate(ctx context.Context, t Transport, req LoginRequest) (*Credentials, error) {
	return f(ctx, t, req)
}
