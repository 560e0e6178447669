package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy(sleeps *[]time.Duration) Policy {
	p := DefaultPolicy()
	return p.WithSleepFunc(func(d time.Duration) {
		*sleeps = append(*sleeps, d)
	})
}

func TestSucceedsFirstTry(t *testing.T) {
	var sleeps []time.Duration
	p := testPolicy(&sleeps)

	got, err := Do(context.Background(), p, func() (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Empty(t, sleeps)
}

func TestSleepsOncePerFailure(t *testing.T) {
	for _, failures := range []int{1, 3, 7, 12} {
		var sleeps []time.Duration
		p := testPolicy(&sleeps)

		calls := 0
		got, err := Do(context.Background(), p, func() (string, error) {
			calls++
			if calls <= failures {
				return "", errors.New("rate limit exceeded")
			}
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		require.Len(t, sleeps, failures)

		for i, d := range sleeps {
			attempt := i + 1
			if attempt%5 == 0 {
				assert.Equal(t, 5*time.Minute, d, "attempt %d should use the long tier", attempt)
			} else {
				assert.Equal(t, time.Minute, d, "attempt %d should use the short tier", attempt)
			}
		}
	}
}

func TestExhaustion(t *testing.T) {
	var sleeps []time.Duration
	p := testPolicy(&sleeps)
	p.Limit = 4

	calls := 0
	_, err := Do(context.Background(), p, func() (int, error) {
		calls++
		return 0, errors.New("connection reset")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
	// Limit failed attempts sleep and retry; the final one gives up without sleeping.
	assert.Equal(t, p.Limit+1, calls)
	assert.Len(t, sleeps, p.Limit)
}

func TestContextCheckedBetweenAttempts(t *testing.T) {
	var sleeps []time.Duration
	p := testPolicy(&sleeps)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Do(ctx, p, func() (int, error) {
		calls++
		cancel()
		return 0, errors.New("boom")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestCustomSleepDuration(t *testing.T) {
	var sleeps []time.Duration
	p := testPolicy(&sleeps)
	p.Sleep = 30 * time.Second

	calls := 0
	_, err := Do(context.Background(), p, func() (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("transient")
		}
		return 1, nil
	})
	require.NoError(t, err)
	require.Len(t, sleeps, 1)
	assert.Equal(t, 30*time.Second, sleeps[0])
}
