package retry

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/metric"

	"github.com/gaborage/go-session/logger"
)

const defaultOperationName = "operation"

// Operation is a fallible call that can be retried
type Operation[T any] func(ctx context.Context) (T, error)

// NotifyFunc is called after failed attempt n, before waiting next
type NotifyFunc func(attempt int, err error, next time.Duration)

// Retrier executes operations under a Policy. A Retrier is safe for concurrent use;
// every call gets its own backoff state.
type Retrier struct {
	policy        Policy
	name          string
	log           logger.Logger
	onRetry       NotifyFunc
	meterProvider metric.MeterProvider
	metrics       *instruments
}

// Option configures a Retrier
type Option func(*Retrier)

// WithLogger sets the logger used for failed attempts and exhaustion
func WithLogger(log logger.Logger) Option {
	return func(r *Retrier) {
		if log != nil {
			r.log = log
		}
	}
}

// WithName labels log entries and metrics with an operation name
func WithName(name string) Option {
	return func(r *Retrier) {
		if name != "" {
			r.name = name
		}
	}
}

// WithOnRetry registers a callback invoked before every wait
func WithOnRetry(fn NotifyFunc) Option {
	return func(r *Retrier) { r.onRetry = fn }
}

// WithMeterProvider sets the meter provider for attempt metrics (default: the global provider)
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(r *Retrier) { r.meterProvider = mp }
}

// New creates a Retrier for policy. It fails with ErrInvalidPolicy when the policy is out of range.
func New(policy Policy, opts ...Option) (*Retrier, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return build(policy, opts...), nil
}

// Default creates a Retrier with DefaultPolicy.
func Default(opts ...Option) *Retrier {
	return build(DefaultPolicy(), opts...)
}

func build(policy Policy, opts ...Option) *Retrier {
	r := &Retrier{
		policy: policy,
		name:   defaultOperationName,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	metrics, err := newInstruments(r.meterProvider)
	if err != nil {
		r.log.Warn().Err(err).Msg("Failed to initialize retry metrics")
	}
	r.metrics = metrics
	return r
}

var (
	bareOnce    sync.Once
	bareRetrier *Retrier
)

func bare() *Retrier {
	bareOnce.Do(func() { bareRetrier = Default() })
	return bareRetrier
}

// Policy returns the policy of r
func (r *Retrier) Policy() Policy {
	return r.policy
}

// Run retries fn under r's policy.
func (r *Retrier) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := Do(ctx, r, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Wrap returns op retried under the default policy.
func Wrap[T any](op Operation[T]) Operation[T] {
	return WrapWith(nil, op)
}

// WrapWith returns op retried by r. A nil r applies the default policy.
func WrapWith[T any](r *Retrier, op Operation[T]) Operation[T] {
	return func(ctx context.Context) (T, error) {
		return Do(ctx, r, op)
	}
}

// Stop marks err as final: Do returns it at once without spending further attempts.
// Do unwraps the marker, so callers see err itself.
func Stop(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// Do executes op, retrying on any error until it succeeds or r's attempts are spent.
// The last attempt's error is returned unchanged. A nil or zero r applies the default policy.
func Do[T any](ctx context.Context, r *Retrier, op Operation[T]) (T, error) {
	// a zero Retrier has no policy or logger
	if r == nil || r.log == nil {
		r = bare()
	}

	attempt := 0
	result, err := backoff.Retry(ctx,
		func() (T, error) {
			attempt++
			value, opErr := op(ctx)
			r.metrics.recordAttempt(ctx, r.name, opErr)
			return value, opErr
		},
		backoff.WithBackOff(r.newBackOff()),
		backoff.WithMaxTries(uint(r.policy.MaxAttempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(opErr error, next time.Duration) {
			r.log.Warn().
				Str("operation", r.name).
				Int("attempt", attempt).
				Int("max_attempts", r.policy.MaxAttempts).
				Dur("next_delay", next).
				Err(opErr).
				Msg("Attempt failed, retrying")
			if r.onRetry != nil {
				r.onRetry(attempt, opErr, next)
			}
		}),
	)

	if perm, ok := err.(*backoff.PermanentError); ok {
		return result, perm.Unwrap()
	}
	if err != nil && attempt >= r.policy.MaxAttempts {
		r.metrics.recordExhausted(ctx, r.name)
		r.log.Error().
			Str("operation", r.name).
			Int("attempts", attempt).
			Err(err).
			Msg("All attempts failed")
	}
	return result, err
}

// newBackOff returns a jitter-free exponential schedule matching Policy.Delay
func (r *Retrier) newBackOff() backoff.BackOff {
	return &backoff.ExponentialBackOff{
		InitialInterval:     r.policy.InitialDelay,
		RandomizationFactor: 0,
		Multiplier:          r.policy.Multiplier,
		MaxInterval:         time.Duration(math.MaxInt64),
	}
}

// String describes the policy for diagnostics
func (r *Retrier) String() string {
	return fmt.Sprintf("retry(%s: attempts=%d delay=%s multiplier=%g)",
		r.name, r.policy.MaxAttempts, r.policy.InitialDelay, r.policy.Multiplier)
}
