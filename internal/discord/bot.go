package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/keshon/zoomer-grok/internal/command"
	"github.com/keshon/zoomer-grok/internal/config"
	"github.com/keshon/zoomer-grok/internal/mind"
	"github.com/keshon/zoomer-grok/pkg/cmd"
)

// Bot connects the runner and the prefix commands to a Discord session.
type Bot struct {
	dg       *discordgo.Session
	platform *Platform
	cfg      *config.Config
	runner   *mind.Runner
	registry *cmd.Registry
	log      zerolog.Logger
}

// NewBot creates the session and its platform adapter without connecting.
func NewBot(cfg *config.Config, log zerolog.Logger) (*Bot, *Platform, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildMembers
	b := &Bot{dg: dg, cfg: cfg, platform: NewPlatform(dg, log), log: log.With().Str("component", "discord").Logger()}
	return b, b.platform, nil
}

// Attach sets the runner and the command registry. Call before Run.
func (b *Bot) Attach(runner *mind.Runner, registry *cmd.Registry) {
	b.runner = runner
	b.registry = registry
}

// Run opens the gateway connection and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	if b.runner == nil || b.registry == nil {
		return fmt.Errorf("bot: runner and registry must be attached")
	}
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onGuildCreate)
	b.dg.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		b.onMessageCreate(ctx, s, m)
	})

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	b.log.Info().Msg("❎ shutdown signal received, closing session")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.runner.SetAgent(mind.Agent{ID: r.User.ID, Name: r.User.Username})

	for _, g := range r.Guilds {
		b.leaveIfBlacklisted(s, g.ID)
	}
	if err := s.UpdateListeningStatus("yapping"); err != nil {
		b.log.Warn().Err(err).Msg("failed to set presence")
	}
	b.log.Info().Str("user", r.User.Username).Str("id", r.User.ID).Int("guilds", len(r.Guilds)).Msg("🔥 online")
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Guild == nil {
		return
	}
	if !b.leaveIfBlacklisted(s, g.Guild.ID) {
		b.log.Info().Str("guild", g.Guild.ID).Str("name", g.Guild.Name).Msg("guild available")
	}
}

func (b *Bot) leaveIfBlacklisted(s *discordgo.Session, guildID string) bool {
	if !b.cfg.Blacklisted(guildID) {
		return false
	}
	b.log.Info().Str("guild", guildID).Msg("leaving blacklisted guild")
	if err := s.GuildLeave(guildID); err != nil {
		b.log.Error().Str("guild", guildID).Err(err).Msg("failed to leave guild")
	}
	return true
}

// onMessageCreate routes prefix commands and feeds everything else to the runner.
func (b *Bot) onMessageCreate(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Message == nil || m.Author == nil {
		return
	}
	if m.GuildID == "" || b.cfg.Blacklisted(m.GuildID) {
		return
	}
	msg := toInbound(m.Message)

	if !msg.AuthorIsBot {
		mc := &command.MessageContext{
			Message:  msg,
			Runner:   b.runner,
			Registry: b.registry,
			Prefix:   b.cfg.CommandPrefix,
			Latency:  s.HeartbeatLatency,
			Reply: func(ctx context.Context, text string) error {
				return b.platform.Reply(ctx, msg, text)
			},
		}
		handled, err := command.Dispatch(ctx, mc)
		if err != nil {
			b.log.Error().Err(err).Str("channel", msg.ChannelID).Msg("command failed")
		}
		if handled {
			// Commands still count as channel activity.
			b.runner.Watchdog.Observe(msg.ChannelID, msg.Timestamp)
			return
		}
	}

	b.runner.HandleMessage(ctx, msg)
}
