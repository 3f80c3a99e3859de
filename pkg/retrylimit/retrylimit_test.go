package retrylimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr int

func (e statusErr) Error() string { return "status" }

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	cfg.Status = func(err error) int {
		var s statusErr
		if errors.As(err, &s) {
			return int(s)
		}
		return 0
	}
	return cfg
}

func TestDoRetriesTransient(t *testing.T) {
	lim := NewAdaptiveLimiter(100, 1, 100, 1, 0.5)
	calls := 0
	var retries []int
	cfg := testConfig()
	cfg.OnRetry = func(attempt int, _ error, _ time.Duration) { retries = append(retries, attempt) }

	err := Do(context.Background(), lim, cfg, func() error {
		calls++
		if calls < 3 {
			return statusErr(503)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retries)
	assert.Equal(t, 25.0, lim.CurrentLimit(), "throttled twice")
}

func TestDoFailsFastOnClientErrors(t *testing.T) {
	calls := 0
	err := Do(context.Background(), nil, testConfig(), func() error {
		calls++
		return statusErr(403)
	})
	assert.Equal(t, statusErr(403), err)
	assert.Equal(t, 1, calls)
}

func TestDoGivesUp(t *testing.T) {
	calls := 0
	err := Do(context.Background(), nil, testConfig(), func() error {
		calls++
		return statusErr(429)
	})
	assert.ErrorContains(t, err, "gave up after 3 attempts")
	assert.ErrorIs(t, err, statusErr(429))
	assert.Equal(t, 3, calls)
}

func TestDoHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	lim := NewAdaptiveLimiter(1, 1, 1, 0, 0.5)
	require.NoError(t, lim.Wait(context.Background())) // drain the burst

	err := Do(ctx, lim, testConfig(), func() error { return nil })
	assert.Error(t, err)
}

func TestAdaptiveLimiterBounds(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 5, 10, 0.1)
	lim.Throttled()
	assert.Equal(t, 1.0, lim.CurrentLimit(), "clamped to min")

	lim = NewAdaptiveLimiter(4, 1, 5, 10, 0.5)
	lim.Success()
	assert.Equal(t, 5.0, lim.CurrentLimit(), "clamped to max")
}

func TestTransient(t *testing.T) {
	assert.True(t, Transient(429))
	assert.True(t, Transient(502))
	assert.False(t, Transient(404))
	assert.False(t, Transient(0))
}
