package mind

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFatigueClamps(t *testing.T) {
	f := NewFatigue(DefaultFatigueConfig())
	assert.Equal(t, 100, f.Level())

	assert.Equal(t, 100, f.Recharge(15), "never above max")
	assert.Equal(t, 60, f.Spend(40))
	assert.Equal(t, 0, f.Spend(500), "never below min")
	assert.Equal(t, 0, f.Spend(-10), "negative cost ignored")
	assert.Equal(t, 0, f.Recharge(-10), "negative recharge ignored")
	assert.Equal(t, 15, f.Recharge(15))
}

func TestFatigueSpendFor(t *testing.T) {
	f := NewFatigue(DefaultFatigueConfig())
	assert.Equal(t, 90, f.SpendFor(TriggerDirect))
	assert.Equal(t, 85, f.SpendFor(TriggerReplyChain))
	assert.Equal(t, 80, f.SpendFor(TriggerKeyword))
}

func TestFatigueInitialClamped(t *testing.T) {
	cfg := DefaultFatigueConfig()
	cfg.Initial = 250
	assert.Equal(t, FatigueMax, NewFatigue(cfg).Level())
}

func TestContextWindowAndHint(t *testing.T) {
	cfg := DefaultFatigueConfig()
	tests := []struct {
		level  int
		window int
		hinted bool
	}{
		{100, 18, false},
		{50, 18, false},
		{49, 10, true},
		{20, 10, true},
		{19, 6, true},
		{0, 6, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.window, cfg.ContextWindow(tt.level), "level %d", tt.level)
		assert.Equal(t, tt.hinted, cfg.VerbosityHint(tt.level) != "", "level %d", tt.level)
	}
}
