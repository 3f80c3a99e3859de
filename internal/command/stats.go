package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/keshon/zoomer-grok/pkg/cmd"
)

type StatsCommand struct{}

func (c *StatsCommand) Name() string        { return "stats" }
func (c *StatsCommand) Description() string { return "Show battery, media quota and activity" }
func (c *StatsCommand) Category() string    { return "🕯️ Information" }

func (c *StatsCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, err := messageContext(inv)
	if err != nil {
		return err
	}
	if mc.Runner == nil {
		return fmt.Errorf("stats: no runner")
	}
	s := mc.Runner.Stats()

	var b strings.Builder
	fmt.Fprintf(&b, "🔋 social battery: %d/100\n", s.Fatigue)
	if s.MediaLimit > 0 {
		fmt.Fprintf(&b, "🎞️ gifs left this hour: %d/%d\n", s.MediaRemaining, s.MediaLimit)
	}
	fmt.Fprintf(&b, "💭 thinking right now: %d\n", s.InFlight)
	fmt.Fprintf(&b, "👥 grinders tracked: %d", s.UsersTracked)
	if s.WatchdogOn {
		fmt.Fprintf(&b, "\n👀 dead chat watch: %s", s.Watchdog)
	}
	return mc.Reply(ctx, b.String())
}
