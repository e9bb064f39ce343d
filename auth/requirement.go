// Package auth describes which credential mechanisms an outbound call must carry.
//
// A Requirement is a small comparable value that is usually declared once next to an
// endpoint definition and passed to session.Session.Send for every call to that endpoint:
//
//	var streamURL = auth.New(auth.WithOAuth())
//	var listTracks = auth.New(auth.WithSSO(), auth.WithXT())
//
// The zero value (also available as None) denotes an unauthenticated call.
package auth

import "strings"

// Mechanism names used in String output and telemetry attributes
const (
	MechanismOAuth = "oauth"
	MechanismSSO   = "sso"
	MechanismXT    = "xt"
)

// Requirement lists the credential mechanisms a request needs.
// Fields are unexported so a declared requirement cannot be changed after construction;
// two requirements with the same flags compare equal with ==.
type Requirement struct {
	oauth bool
	sso   bool
	xt    bool
}

// None is the requirement of an unauthenticated call.
var None = Requirement{}

// Option sets a single mechanism flag on a Requirement under construction
type Option func(*Requirement)

// WithOAuth requires an OAuth bearer token
func WithOAuth() Option {
	return func(r *Requirement) { r.oauth = true }
}

// WithSSO requires the single sign-on token
func WithSSO() Option {
	return func(r *Requirement) { r.sso = true }
}

// WithXT requires the xt anti-forgery token
func WithXT() Option {
	return func(r *Requirement) { r.xt = true }
}

// New builds a Requirement. Flags not named by an option default to false,
// and every combination is valid.
func New(opts ...Option) Requirement {
	var r Requirement
	for _, opt := range opts {
		if opt != nil {
			opt(&r)
		}
	}
	return r
}

// OAuth reports whether an OAuth bearer token is required.
func (r Requirement) OAuth() bool { return r.oauth }

// SSO reports whether the single sign-on token is required.
func (r Requirement) SSO() bool { return r.sso }

// XT reports whether the xt token is required.
func (r Requirement) XT() bool { return r.xt }

// Any reports whether at least one mechanism is required.
func (r Requirement) Any() bool {
	return r.oauth || r.sso || r.xt
}

// Mechanisms returns the names of the required mechanisms in a stable order.
func (r Requirement) Mechanisms() []string {
	names := make([]string, 0, 3)
	if r.oauth {
		names = append(names, MechanismOAuth)
	}
	if r.sso {
		names = append(names, MechanismSSO)
	}
	if r.xt {
		names = append(names, MechanismXT)
	}
	return names
}

// String renders the requirement as "oauth+sso+xt" style text, or "none".
func (r Requirement) String() string {
	names := r.Mechanisms()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "+")
}
