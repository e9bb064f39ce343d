package session

import (
	"errors"
	"fmt"
)

// Error kinds, matched with errors.Is
var (
	// ErrAlreadyLoggedIn is returned by Login on an authenticated session
	ErrAlreadyLoggedIn = errors.New("already logged in")
	// ErrNotAuthenticated is returned by Send when credentials are required but the session is not authenticated
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrInvalidIdentifierFormat is returned by Login for a malformed device identifier
	ErrInvalidIdentifierFormat = errors.New("invalid identifier format")
	// ErrNoCredential is returned when a required mechanism has no credential material
	ErrNoCredential = errors.New("credential not available")
	// ErrClosed is returned by every operation after Close
	ErrClosed = errors.New("session closed")
)

// Op names the session operation that failed
type Op string

const (
	OpLogin  Op = "login"
	OpLogout Op = "logout"
	OpSend   Op = "send"
	OpClose  Op = "close"
)

// Error is returned for session state and credential failures.
// Transport and authenticator errors are returned as they are, never as *Error.
type Error struct {
	Op     Op
	Kind   error
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("session %s: %v: %s", e.Op, e.Kind, e.Detail)
	}
	return fmt.Sprintf("session %s: %v", e.Op, e.Kind)
}

// Unwrap returns the error kind
func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(op Op, kind error, detail string) *Error {
	return &Error{Op: op, Kind: kind, Detail: detail}
}
