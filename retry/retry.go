// Package retry wraps single upstream calls with bounded retry and a
// two-tier backoff. The upstream API does not reliably distinguish
// retryable from fatal errors (rate-limit responses arrive as generic
// HTTP errors), so every failure is treated as transient until the
// attempt limit is reached.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ErrExhausted is returned once the attempt limit is exceeded. It is fatal
// for the run; callers do not receive partial results.
var ErrExhausted = errors.New("retry attempts exhausted")

// Every longEvery-th attempt sleeps the long tier, intended to ride out
// rate-limit windows.
const longEvery = 5

// Policy configures the retry loop. The zero value is not useful; start
// from DefaultPolicy.
type Policy struct {
	// Limit is the maximum number of failed attempts before giving up.
	Limit int
	// Sleep is the pause after an ordinary failed attempt.
	Sleep time.Duration
	// LongSleep is the pause after every 5th failed attempt.
	LongSleep time.Duration

	log     zerolog.Logger
	sleepFn func(time.Duration)
}

// DefaultPolicy returns the standard policy: up to 20 attempts, 1 minute
// between ordinary attempts, 5 minutes on the long tier.
func DefaultPolicy() Policy {
	return Policy{
		Limit:     20,
		Sleep:     time.Minute,
		LongSleep: 5 * time.Minute,
		log:       zerolog.Nop(),
		sleepFn:   time.Sleep,
	}
}

// WithLogger returns a copy of the policy that logs backoff diagnostics.
func (p Policy) WithLogger(log zerolog.Logger) Policy {
	p.log = log
	return p
}

// WithSleepFunc returns a copy of the policy with the sleep function
// replaced. Used by tests to observe backoff without waiting.
func (p Policy) WithSleepFunc(fn func(time.Duration)) Policy {
	p.sleepFn = fn
	return p
}

// Do invokes op until it succeeds or the policy's attempt limit is
// exceeded. Sleeps are not cancellable once entered; ctx is checked
// cooperatively between attempts.
func Do[T any](ctx context.Context, p Policy, op func() (T, error)) (T, error) {
	var zero T
	sleep := p.sleepFn
	if sleep == nil {
		sleep = time.Sleep
	}

	attempt := 0
	for {
		result, err := op()
		if err == nil {
			return result, nil
		}

		attempt++
		if attempt > p.Limit {
			return zero, fmt.Errorf("giving up after %d failed attempts (last error: %v): %w", attempt, err, ErrExhausted)
		}

		d := p.Sleep
		if attempt%longEvery == 0 {
			d = p.LongSleep
			p.log.Warn().
				Int("attempt", attempt).
				Dur("sleep", d).
				Str("cause", err.Error()).
				Msg("query failed; extended backoff before retry")
		} else {
			p.log.Warn().
				Int("attempt", attempt).
				Dur("sleep", d).
				Str("cause", err.Error()).
				Msg("query failed; sleeping before retry")
		}
		sleep(d)

		if err := ctx.Err(); err != nil {
			return zero, err
		}
	}
}
