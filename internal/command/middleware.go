package command

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/keshon/zoomer-grok/pkg/cmd"
)

// WithCommandLogger wraps a command to log its execution.
func WithCommandLogger(log zerolog.Logger) cmd.Middleware {
	log = log.With().Str("component", "command").Logger()
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			err := c.Run(ctx, inv)
			e := log.Info()
			if err != nil {
				e = log.Warn().Err(err)
			}
			if mc, ok := inv.Data.(*MessageContext); ok {
				e = e.Str("user", mc.Message.AuthorID).Str("channel", mc.Message.ChannelID)
			}
			e.Str("action", "run").Str("command", c.Name()).Strs("args", inv.Args).Msg("command executed")
			return err
		})
	}
}

// RegisterDefaults registers the built-in commands on reg.
func RegisterDefaults(reg *cmd.Registry, mws ...cmd.Middleware) {
	reg.Register(&PingCommand{}, mws...)
	reg.Register(&HelpCommand{}, mws...)
	reg.Register(&StatsCommand{}, mws...)
	reg.Register(&RankCommand{}, mws...)
}
