// Package testing provides testing utilities for sessions and their collaborators.
//
// # Mocks
//
// The mocks subpackage provides testify-based mock implementations of
// session.Transport and session.Authenticator.
//
// # Fixtures
//
// The fixtures subpackage provides a mock-backed TransportPool that records every
// handle a session creates, plus canned credentials and responses:
//
//	pool := fixtures.NewTransportPool(nil)
//	sess, _ := session.New(pool.Factory(), fixtures.NewAuthenticator(fixtures.FullCredentials()))
//	_ = sess.Logout(ctx)
//	pool.Created()[0].AssertNumberOfCalls(t, "Close", 1)
//
// Shared constants (tokens, device identifiers, log levels) live in this package.
package testing
