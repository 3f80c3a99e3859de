package command

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/keshon/zoomer-grok/internal/config"
	"github.com/keshon/zoomer-grok/pkg/cmd"
)

type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "List available commands" }
func (c *HelpCommand) Category() string    { return "🕯️ Information" }

func (c *HelpCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, err := messageContext(inv)
	if err != nil {
		return err
	}
	return mc.Reply(ctx, buildHelp(mc.Registry, mc.Prefix))
}

// buildHelp groups commands by category, ordered by config.CategoryWeights.
func buildHelp(reg *cmd.Registry, prefix string) string {
	groups := map[string][]cmd.Command{}
	for _, c := range reg.GetAll() {
		cat := "Other"
		if cc, ok := cmd.Root(c).(Categorized); ok {
			cat = cc.Category()
		}
		groups[cat] = append(groups[cat], c)
	}

	cats := make([]string, 0, len(groups))
	for cat := range groups {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool {
		wi, oki := config.CategoryWeights[cats[i]]
		wj, okj := config.CategoryWeights[cats[j]]
		if oki != okj {
			return oki
		}
		if wi != wj {
			return wi < wj
		}
		return cats[i] < cats[j]
	})

	var b strings.Builder
	b.WriteString("**commands** (no cap)\n")
	for _, cat := range cats {
		fmt.Fprintf(&b, "\n**%s**\n", cat)
		for _, c := range groups[cat] {
			fmt.Fprintf(&b, "`%s%s` %s\n", prefix, c.Name(), c.Description())
		}
	}
	b.WriteString("\nor just @ me lol")
	return b.String()
}
