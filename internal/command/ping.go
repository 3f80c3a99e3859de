package command

import (
	"context"
	"fmt"

	"github.com/keshon/zoomer-grok/pkg/cmd"
)

type PingCommand struct{}

func (c *PingCommand) Name() string        { return "ping" }
func (c *PingCommand) Description() string { return "Check bot latency" }
func (c *PingCommand) Category() string    { return "🕯️ Information" }

func (c *PingCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, err := messageContext(inv)
	if err != nil {
		return err
	}
	text := "pong 🏓"
	if mc.Latency != nil {
		text = fmt.Sprintf("pong 🏓 %dms", mc.Latency().Milliseconds())
	}
	return mc.Reply(ctx, text)
}
