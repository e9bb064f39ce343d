// Package retry adds bounded retries with exponential backoff to any fallible operation.
//
// An operation is retried on every error, whatever its kind, until it succeeds or the
// policy's attempt budget is spent. The error of the last attempt is returned unchanged.
//
// # Backoff
//
//   - The wait after attempt n (1-based) is InitialDelay * Multiplier^(n-1).
//   - No jitter is applied, so n failing attempts take the sum of n-1 delay terms.
//   - Waiting happens only between attempts, never after the last one.
//   - A cancelled context ends the wait early and its cause is returned.
//
// # Bare and parameterized forms
//
// Wrap applies the default policy and WrapWith applies an explicit Retrier. Both return an
// Operation with the same signature as the wrapped one, so call sites do not change when a
// policy is introduced:
//
//	fetch := retry.Wrap(loadTracks)
//
//	r, err := retry.New(retry.Policy{MaxAttempts: 3, InitialDelay: 50 * time.Millisecond, Multiplier: 2})
//	fetch = retry.WrapWith(r, loadTracks)
//
// An operation can end the loop early by returning retry.Stop(err).
//
// Only wrap idempotent calls; login and logout are never retried by the session package.
package retry
