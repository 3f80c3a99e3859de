package mind

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestWindowLimiter(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewWindowLimiter(clock, 2, time.Hour)

	assert.Equal(t, 2, l.Remaining())
	assert.True(t, l.TryAcquire())
	assert.True(t, l.TryAcquire())
	assert.False(t, l.TryAcquire(), "quota exhausted")
	assert.Equal(t, 0, l.Remaining())

	clock.Advance(30 * time.Minute)
	assert.False(t, l.TryAcquire(), "same window")

	clock.Advance(31 * time.Minute)
	assert.Equal(t, 2, l.Remaining(), "window elapsed")
	assert.True(t, l.TryAcquire())
	assert.Equal(t, 1, l.Remaining())
}

func TestWindowLimiterRejectionDoesNotConsume(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewWindowLimiter(clock, 1, time.Minute)

	assert.True(t, l.TryAcquire())
	for i := 0; i < 5; i++ {
		assert.False(t, l.TryAcquire())
	}
	clock.Advance(2 * time.Minute)
	assert.True(t, l.TryAcquire())
}

func TestWindowLimiterZeroLimit(t *testing.T) {
	l := NewWindowLimiter(clockwork.NewFakeClock(), -3, time.Minute)
	assert.Equal(t, 0, l.Limit())
	assert.False(t, l.TryAcquire())
}
