package mind

import (
	"sync"
	"time"
)

// Fatigue bounds, the "social battery".
const (
	FatigueMin = 0
	FatigueMax = 100
)

// FatigueConfig holds costs, recharge cadence and the thresholds shared with the decision engine.
type FatigueConfig struct {
	Initial          int
	DirectCost       int // per response to a direct address
	AmbientCost      int // per reply-chain or keyword response
	RechargeAmount   int
	RechargeInterval time.Duration
	MidThreshold     int // below: halve ambient engagement, shorter context
	LowThreshold     int // below: ambient engagement x0.2, minimal context
	WindowHigh       int // context messages at or above MidThreshold
	WindowMid        int
	WindowLow        int
}

// DefaultFatigueConfig returns the defaults: full battery, +15 every 10 minutes.
func DefaultFatigueConfig() FatigueConfig {
	return FatigueConfig{
		Initial:          FatigueMax,
		DirectCost:       10,
		AmbientCost:      5,
		RechargeAmount:   15,
		RechargeInterval: 10 * time.Minute,
		MidThreshold:     50,
		LowThreshold:     20,
		WindowHigh:       18,
		WindowMid:        10,
		WindowLow:        6,
	}
}

// Fatigue is the process-wide energy level. Value is always within [FatigueMin, FatigueMax].
type Fatigue struct {
	mu    sync.Mutex
	level int
	cfg   FatigueConfig
}

// NewFatigue creates the manager at cfg.Initial (clamped).
func NewFatigue(cfg FatigueConfig) *Fatigue {
	return &Fatigue{level: clampLevel(cfg.Initial), cfg: cfg}
}

// Level returns the current energy.
func (f *Fatigue) Level() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.level
}

// Spend drains cost (negative costs are ignored) and returns the new level.
func (f *Fatigue) Spend(cost int) int {
	if cost < 0 {
		cost = 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.level = clampLevel(f.level - cost)
	return f.level
}

// Recharge adds amount (negative amounts are ignored) and returns the new level.
func (f *Fatigue) Recharge(amount int) int {
	if amount < 0 {
		amount = 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.level = clampLevel(f.level + amount)
	return f.level
}

// SpendFor drains the cost of one delivered response of the given trigger kind.
func (f *Fatigue) SpendFor(kind TriggerKind) int {
	if kind == TriggerDirect {
		return f.Spend(f.cfg.DirectCost)
	}
	return f.Spend(f.cfg.AmbientCost)
}

// Config returns the settings the manager was built with.
func (f *Fatigue) Config() FatigueConfig { return f.cfg }

// ContextWindow is how many history messages the context builder keeps at level.
func (c FatigueConfig) ContextWindow(level int) int {
	switch {
	case level >= c.MidThreshold:
		return c.WindowHigh
	case level >= c.LowThreshold:
		return c.WindowMid
	default:
		return c.WindowLow
	}
}

// VerbosityHint tells the generation backend how much effort to put in. Empty when rested.
func (c FatigueConfig) VerbosityHint(level int) string {
	switch {
	case level >= c.MidThreshold:
		return ""
	case level >= c.LowThreshold:
		return "You're getting tired of chatting. Keep it short, one sentence."
	default:
		return "Your social battery is almost dead. Reply in a few words max."
	}
}

func clampLevel(v int) int {
	if v < FatigueMin {
		return FatigueMin
	}
	if v > FatigueMax {
		return FatigueMax
	}
	return v
}
