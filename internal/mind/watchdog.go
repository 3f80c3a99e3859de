package mind

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// WatchdogState is the idle watchdog's state.
type WatchdogState int

const (
	WatchdogArmed  WatchdogState = iota // has not pinged this idle episode
	WatchdogPinged                      // already pinged, waiting for activity
)

func (s WatchdogState) String() string {
	if s == WatchdogPinged {
		return "pinged"
	}
	return "armed"
}

// WatchdogConfig configures the idle watchdog.
type WatchdogConfig struct {
	ChannelID     string // watched channel; empty disables the watchdog
	RoleName      string // role to mention on revival, if it resolves
	Threshold     time.Duration
	CheckInterval time.Duration
	FatigueFloor  int // at or below this level the agent does not revive chats
	Variants      []string
}

// DefaultRevivalVariants are the revival messages.
var DefaultRevivalVariants = []string{
	"chat is dead fr 💀",
	"yo where did everybody go 😭",
	"dead chat. someone say something 🗿",
	"hello?? anyone alive or did y'all touch grass",
	"it's giving ghost town ngl",
}

// DefaultWatchdogConfig returns the defaults (no channel watched).
func DefaultWatchdogConfig() WatchdogConfig {
	return WatchdogConfig{
		RoleName:      "chat revive",
		Threshold:     40 * time.Minute,
		CheckInterval: 5 * time.Minute,
		FatigueFloor:  15,
		Variants:      DefaultRevivalVariants,
	}
}

// Watchdog emits at most one revival per idle episode of the watched channel.
type Watchdog struct {
	mu           sync.Mutex
	cfg          WatchdogConfig
	clock        clockwork.Clock
	state        WatchdogState
	lastActivity time.Time
}

// NewWatchdog creates an ARMED watchdog; activity is counted from now.
func NewWatchdog(cfg WatchdogConfig, clock clockwork.Clock) *Watchdog {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if len(cfg.Variants) == 0 {
		cfg.Variants = DefaultRevivalVariants
	}
	return &Watchdog{cfg: cfg, clock: clock, state: WatchdogArmed, lastActivity: clock.Now()}
}

// Enabled reports whether a channel is watched.
func (w *Watchdog) Enabled() bool { return w.cfg.ChannelID != "" }

// Config returns the watchdog settings.
func (w *Watchdog) Config() WatchdogConfig { return w.cfg }

// Observe records activity in channelID at at. Any message in the watched channel re-arms.
func (w *Watchdog) Observe(channelID string, at time.Time) {
	if channelID == "" || channelID != w.cfg.ChannelID {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if at.IsZero() {
		at = w.clock.Now()
	}
	if at.After(w.lastActivity) {
		w.lastActivity = at
	}
	w.state = WatchdogArmed
}

// Check fires ARMED -> PINGED when the channel has been idle past the threshold and the
// agent has energy above the floor. The caller emits exactly one revival per true.
func (w *Watchdog) Check(fatigue int) bool {
	if !w.Enabled() {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != WatchdogArmed {
		return false
	}
	if w.clock.Now().Sub(w.lastActivity) <= w.cfg.Threshold {
		return false
	}
	if fatigue <= w.cfg.FatigueFloor {
		return false
	}
	w.state = WatchdogPinged
	return true
}

// State returns the current state.
func (w *Watchdog) State() WatchdogState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// LastActivity returns the latest observed activity time.
func (w *Watchdog) LastActivity() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastActivity
}

// RevivalText picks a variant and prefixes the role mention when roleID is known.
func (w *Watchdog) RevivalText(rng Rand, roleID string) string {
	text := w.cfg.Variants[rng.IntN(len(w.cfg.Variants))]
	if roleID != "" {
		return "<@&" + roleID + "> " + text
	}
	return text
}
