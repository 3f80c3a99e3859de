package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/keshon/zoomer-grok/pkg/cmd"
)

type RankCommand struct{}

func (c *RankCommand) Name() string        { return "rank" }
func (c *RankCommand) Description() string { return "Show your XP and level (or @someone's)" }
func (c *RankCommand) Category() string    { return "📈 Progress" }

func (c *RankCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, err := messageContext(inv)
	if err != nil {
		return err
	}
	if mc.Runner == nil {
		return fmt.Errorf("rank: no runner")
	}

	userID := mc.Message.AuthorID
	if len(inv.Args) > 0 {
		if id := mentionID(inv.Args[0]); id != "" {
			userID = id
		}
	}

	ledger := mc.Runner.Ledger
	rec, ok := ledger.Get(userID)
	if !ok {
		return mc.Reply(ctx, fmt.Sprintf("<@%s> has zero xp. no grind detected 💀", userID))
	}
	next := ledger.Config().XPNeeded(rec.Level)
	return mc.Reply(ctx, fmt.Sprintf("<@%s> is level **%d** with %d xp (%d to next level)", userID, rec.Level, rec.XP, next-rec.XP))
}

// mentionID extracts the id from <@123> or <@!123>; plain ids pass through.
func mentionID(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "<@") && strings.HasSuffix(s, ">") {
		s = strings.TrimPrefix(strings.TrimSuffix(strings.TrimPrefix(s, "<@"), ">"), "!")
	}
	if s == "" {
		return ""
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return s
}
