// Package retry runs operations with exponential backoff and jitter.
// Used for connecting to PostgreSQL and Redis at startup.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// permanent stops a Policy even when Retry would accept the error.
type permanent struct{ err error }

func (p permanent) Error() string { return p.err.Error() }
func (p permanent) Unwrap() error { return p.err }

// Permanent marks err as not worth another attempt. Do returns the error
// without the mark.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanent{err}
}

// IsPermanent reports whether err carries the Permanent mark.
func IsPermanent(err error) bool {
	var p permanent
	return errors.As(err, &p)
}

// ══════════════════════════════════════════════════════════════════════════════
// POLICY
// ══════════════════════════════════════════════════════════════════════════════

// Policy describes when and how long to wait between attempts. The n-th
// wait is Base * Factor^(n-1), capped at Cap, then spread by +/- Jitter.
type Policy struct {
	Attempts int // including the first
	Base     time.Duration
	Cap      time.Duration
	Factor   float64
	Jitter   float64

	// Retry decides which errors are worth another attempt. Nil retries
	// everything except context errors.
	Retry func(error) bool

	// OnRetry runs before each wait.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Notify returns p with OnRetry set.
func (p Policy) Notify(fn func(attempt int, err error, delay time.Duration)) Policy {
	p.OnRetry = fn
	return p
}

// Do runs op until it succeeds, fails for good, runs out of attempts or ctx
// ends. The last error from op wins over a context error.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var last error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if last != nil {
				return last
			}
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		last = err
		if IsPermanent(err) {
			var pe permanent
			errors.As(err, &pe)
			return pe.err
		}
		if attempt >= p.Attempts || !p.retryable(err) {
			return err
		}

		wait := p.wait(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}
		select {
		case <-ctx.Done():
			return last
		case <-time.After(wait):
		}
	}
}

func (p Policy) retryable(err error) bool {
	if p.Retry != nil {
		return p.Retry(err)
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (p Policy) wait(attempt int) time.Duration {
	factor := p.Factor
	if factor < 1 {
		factor = 1
	}
	d := math.Min(float64(p.Base)*math.Pow(factor, float64(attempt-1)), float64(p.Cap))
	if p.Jitter > 0 {
		d *= 1 + p.Jitter*(2*rand.Float64()-1)
	}
	return time.Duration(math.Max(d, 0))
}

// Value is Do for operations that produce a result.
func Value[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err == nil {
			out = v
		}
		return err
	})
	return out, err
}

// ══════════════════════════════════════════════════════════════════════════════
// PRESETS
// ══════════════════════════════════════════════════════════════════════════════

// Database waits out a PostgreSQL server that may still be starting.
func Database() Policy {
	return Policy{Attempts: 5, Base: 200 * time.Millisecond, Cap: 3 * time.Second, Factor: 2, Jitter: 0.05}
}

// Cache gives Redis one more chance; a missing cache is not fatal.
func Cache() Policy {
	return Policy{Attempts: 2, Base: 100 * time.Millisecond, Cap: 500 * time.Millisecond, Factor: 2}
}
