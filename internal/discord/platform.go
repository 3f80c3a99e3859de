package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/keshon/zoomer-grok/internal/mind"
	"github.com/keshon/zoomer-grok/pkg/retrylimit"
)

// maxHistory is Discord's page size for channel history.
const maxHistory = 100

// Platform implements mind.Platform over a discordgo session. Writes share one
// adaptive token bucket so double-texting never trips Discord's per-route limiter.
type Platform struct {
	s       *discordgo.Session
	limiter *retrylimit.AdaptiveLimiter
	retry   retrylimit.Config
}

// NewPlatform wraps s. Writes start at one per second and slow down when Discord pushes back.
func NewPlatform(s *discordgo.Session, log zerolog.Logger) *Platform {
	log = log.With().Str("component", "discord").Logger()
	cfg := retrylimit.DefaultConfig()
	cfg.Status = restStatus
	cfg.OnRetry = func(attempt int, err error, wait time.Duration) {
		log.Warn().Str("action", "retry").Int("attempt", attempt).Dur("wait", wait).Err(err).Msg("discord write failed, retrying")
	}
	return &Platform{
		s:       s,
		limiter: retrylimit.NewAdaptiveLimiter(1, 0.2, 5, 0.1, 0.5),
		retry:   cfg,
	}
}

// restStatus extracts the HTTP status of a discordgo REST failure.
func restStatus(err error) int {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		return rest.Response.StatusCode
	}
	return 0
}

func (p *Platform) write(ctx context.Context, fn func() error) error {
	return retrylimit.Do(ctx, p.limiter, p.retry, fn)
}

func (p *Platform) Send(ctx context.Context, channelID, text string) error {
	err := p.write(ctx, func() error {
		_, err := p.s.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		return fmt.Errorf("send to %s: %w", channelID, err)
	}
	return nil
}

func (p *Platform) Reply(ctx context.Context, to mind.InboundMessage, text string) error {
	ref := &discordgo.MessageReference{MessageID: to.ID, ChannelID: to.ChannelID, GuildID: to.GuildID}
	err := p.write(ctx, func() error {
		_, err := p.s.ChannelMessageSendReply(to.ChannelID, text, ref, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		return fmt.Errorf("reply to %s: %w", to.ID, err)
	}
	return nil
}

func (p *Platform) React(ctx context.Context, to mind.InboundMessage, emoji string) error {
	err := p.write(ctx, func() error {
		return p.s.MessageReactionAdd(to.ChannelID, to.ID, emoji, discordgo.WithContext(ctx))
	})
	if err != nil {
		return fmt.Errorf("react to %s: %w", to.ID, err)
	}
	return nil
}

func (p *Platform) Typing(ctx context.Context, channelID string) error {
	return p.s.ChannelTyping(channelID, discordgo.WithContext(ctx))
}

// ResolveRole looks the role up in state first, then over REST. Names match case-insensitively.
func (p *Platform) ResolveRole(ctx context.Context, channelID, name string) (string, bool) {
	guildID := p.guildOf(ctx, channelID)
	if guildID == "" || name == "" {
		return "", false
	}
	var roles []*discordgo.Role
	if g, err := p.s.State.Guild(guildID); err == nil && len(g.Roles) > 0 {
		roles = g.Roles
	} else if fetched, err := p.s.GuildRoles(guildID, discordgo.WithContext(ctx)); err == nil {
		roles = fetched
	}
	for _, r := range roles {
		if r != nil && strings.EqualFold(r.Name, name) {
			return r.ID, true
		}
	}
	return "", false
}

func (p *Platform) guildOf(ctx context.Context, channelID string) string {
	if ch, err := p.s.State.Channel(channelID); err == nil && ch != nil {
		return ch.GuildID
	}
	if ch, err := p.s.Channel(channelID, discordgo.WithContext(ctx)); err == nil && ch != nil {
		return ch.GuildID
	}
	return ""
}

// History returns up to limit messages before beforeID, oldest first.
func (p *Platform) History(ctx context.Context, channelID, beforeID string, limit int) ([]mind.InboundMessage, error) {
	if limit <= 0 {
		return nil, nil
	}
	if limit > maxHistory {
		limit = maxHistory
	}
	msgs, err := p.s.ChannelMessages(channelID, limit, beforeID, "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("history of %s: %w", channelID, err)
	}
	out := make([]mind.InboundMessage, 0, len(msgs))
	for _, m := range msgs {
		if m != nil {
			out = append(out, toInbound(m))
		}
	}
	reverse(out)
	return out, nil
}
