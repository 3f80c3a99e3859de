package mind

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// TypingRefresh is how often the typing indicator is re-sent; Discord shows it for ~10s.
const TypingRefresh = 8 * time.Second

// PacingConfig bounds the human-like delays.
type PacingConfig struct {
	ThinkMin   time.Duration
	ThinkMax   time.Duration
	PerCharMin time.Duration
	PerCharMax time.Duration
	Ceiling    time.Duration // max delay of one segment
	MediaPause time.Duration // fixed pause before the media URL
}

// DefaultPacingConfig returns the defaults.
func DefaultPacingConfig() PacingConfig {
	return PacingConfig{
		ThinkMin:   600 * time.Millisecond,
		ThinkMax:   1800 * time.Millisecond,
		PerCharMin: 35 * time.Millisecond,
		PerCharMax: 70 * time.Millisecond,
		Ceiling:    8 * time.Second,
		MediaPause: time.Second,
	}
}

// Segment is one piece of visible text and the delay before it is sent.
type Segment struct {
	Text  string
	Delay time.Duration
}

// Plan is the ordered delivery of one response.
type Plan struct {
	Segments   []Segment
	MediaURL   string
	MediaDelay time.Duration
}

// TotalDelay is the sum of all waits in the plan.
func (p Plan) TotalDelay() time.Duration {
	var total time.Duration
	for _, s := range p.Segments {
		total += s.Delay
	}
	if p.MediaURL != "" {
		total += p.MediaDelay
	}
	return total
}

// Delay computes think + runes*perChar for text, clamped to the ceiling.
func (c PacingConfig) Delay(text string, rng Rand) time.Duration {
	think := between(rng, c.ThinkMin, c.ThinkMax)
	perChar := between(rng, c.PerCharMin, c.PerCharMax)
	d := think + time.Duration(utf8.RuneCountInString(text))*perChar
	if c.Ceiling > 0 && d > c.Ceiling {
		d = c.Ceiling
	}
	if d < 0 {
		d = 0
	}
	return d
}

// Plan computes the delays of every segment.
func (c PacingConfig) Plan(segments []string, mediaURL string, rng Rand) Plan {
	p := Plan{MediaURL: mediaURL}
	for _, s := range segments {
		p.Segments = append(p.Segments, Segment{Text: s, Delay: c.Delay(s, rng)})
	}
	if mediaURL != "" {
		p.MediaDelay = c.MediaPause
	}
	return p
}

// Deliverer sends a plan to the platform in order, with typing shown during each wait.
type Deliverer struct {
	platform Platform
	clock    clockwork.Clock
	log      zerolog.Logger
}

// NewDeliverer creates a deliverer. Waits use clock timers and honor ctx.
func NewDeliverer(platform Platform, clock clockwork.Clock, log zerolog.Logger) *Deliverer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Deliverer{platform: platform, clock: clock, log: log}
}

// Deliver emits every segment in order: the first as a reply to trigger, the rest as
// follow-ups in the same channel, then the media URL. With no segments the URL is the reply.
func (d *Deliverer) Deliver(ctx context.Context, trigger InboundMessage, plan Plan) error {
	replied := false
	send := func(text string) error {
		if !replied {
			replied = true
			return d.platform.Reply(ctx, trigger, text)
		}
		return d.platform.Send(ctx, trigger.ChannelID, text)
	}

	for i, seg := range plan.Segments {
		if err := d.typeFor(ctx, trigger.ChannelID, seg.Delay); err != nil {
			return err
		}
		if err := send(seg.Text); err != nil {
			return fmt.Errorf("send segment %d: %w", i, err)
		}
	}

	if plan.MediaURL == "" {
		return nil
	}
	if err := d.wait(ctx, plan.MediaDelay); err != nil {
		return err
	}
	if err := send(plan.MediaURL); err != nil {
		return fmt.Errorf("send media: %w", err)
	}
	return nil
}

// typeFor keeps the typing indicator on while waiting delay.
func (d *Deliverer) typeFor(ctx context.Context, channelID string, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		KeepTyping(ctx, d.platform, d.clock, d.log, channelID, done)
	}()
	err := d.wait(ctx, delay)
	close(done)
	wg.Wait()
	return err
}

func (d *Deliverer) wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	t := d.clock.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.Chan():
		return nil
	}
}

// KeepTyping sends the typing indicator now and every TypingRefresh until done or ctx ends.
// Failures are logged and otherwise ignored.
func KeepTyping(ctx context.Context, p Platform, clock clockwork.Clock, log zerolog.Logger, channelID string, done <-chan struct{}) {
	typing := func() {
		if err := p.Typing(ctx, channelID); err != nil && ctx.Err() == nil {
			log.Debug().Str("action", "typing").Str("channel", channelID).Err(err).Msg("typing indicator failed")
		}
	}
	typing()
	ticker := clock.NewTicker(TypingRefresh)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			typing()
		}
	}
}
