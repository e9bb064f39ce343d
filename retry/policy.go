package retry

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// DefaultMaxAttempts is the number of attempts made by the default policy
	DefaultMaxAttempts = 5

	// DefaultInitialDelay is the wait after the first failed attempt
	DefaultInitialDelay = 2 * time.Second

	// DefaultMultiplier scales the wait after each further failed attempt
	DefaultMultiplier = 2.0
)

// ErrInvalidPolicy is returned for a Policy outside its valid ranges
var ErrInvalidPolicy = errors.New("invalid retry policy")

// Policy configures one wrapped call. It holds no state between calls.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first. 1 disables retries.
	MaxAttempts int
	// InitialDelay is the wait after the first failed attempt.
	InitialDelay time.Duration
	// Multiplier scales the wait after every further failed attempt.
	Multiplier float64
}

// DefaultPolicy returns the policy applied by the bare form.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  DefaultMaxAttempts,
		InitialDelay: DefaultInitialDelay,
		Multiplier:   DefaultMultiplier,
	}
}

// Validate checks MaxAttempts >= 1, InitialDelay >= 0 and Multiplier >= 1.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1, got %d", ErrInvalidPolicy, p.MaxAttempts)
	}
	if p.InitialDelay < 0 {
		return fmt.Errorf("%w: initial delay must not be negative, got %s", ErrInvalidPolicy, p.InitialDelay)
	}
	if math.IsNaN(p.Multiplier) || p.Multiplier < 1 {
		return fmt.Errorf("%w: multiplier must be at least 1, got %v", ErrInvalidPolicy, p.Multiplier)
	}
	return nil
}

// Delay returns the wait that follows failed attempt n (1-based).
// It returns zero for n < 1 or for n >= MaxAttempts, since no wait follows the last attempt.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 || attempt >= p.MaxAttempts {
		return 0
	}
	d := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if d >= float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// TotalDelay returns the time spent waiting when every attempt fails.
func (p Policy) TotalDelay() time.Duration {
	var total time.Duration
	for n := 1; n < p.MaxAttempts; n++ {
		d := p.Delay(n)
		if total > time.Duration(math.MaxInt64)-d {
			return time.Duration(math.MaxInt64)
		}
		total += d
	}
	return total
}
