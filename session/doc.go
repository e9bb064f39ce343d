// Package session tracks the authentication state of a client and decides how each
// outbound call is authenticated.
//
// A Session owns exactly one Transport handle at a time. Login acquires credential
// material through an Authenticator and moves the session to the authenticated state;
// Logout closes the current handle, replaces it with a fresh one from the
// TransportFactory and discards the credentials. Send consults an auth.Requirement per
// call and attaches the matching credentials before dispatching.
//
// # State machine
//
//	UNAUTHENTICATED --Login--> AUTHENTICATED
//	AUTHENTICATED   --Logout-> UNAUTHENTICATED (new handle)
//	UNAUTHENTICATED --Logout-> UNAUTHENTICATED (new handle)
//
// Login while authenticated fails with ErrAlreadyLoggedIn; Send with any requirement
// flag while unauthenticated fails with ErrNotAuthenticated. Neither changes state.
//
// # Concurrency
//
// Login, Logout and Close are serialized by the session, and a Send waits for a Login
// in progress before it reads its state. Send reads the state and the
// current handle under the same lock and dispatches outside it, so a Send that started
// before a concurrent Logout finishes on the handle it captured. That handle is closed by
// the Logout; what an in-flight request does with a closed handle is up to the Transport.
// Cancellation and timeouts of a single call are likewise left to the Transport.
package session
