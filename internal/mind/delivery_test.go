package mind

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestPacingDelay(t *testing.T) {
	c := DefaultPacingConfig()

	assert.Equal(t, 600*time.Millisecond+3*35*time.Millisecond, c.Delay("sup", fixedRand{f: 0}))
	assert.Equal(t, 1800*time.Millisecond+3*70*time.Millisecond, c.Delay("sup", fixedRand{f: 1}))
	assert.Equal(t, 8*time.Second, c.Delay(strings.Repeat("x", 300), fixedRand{f: 1}), "ceiling")
	assert.Equal(t, 600*time.Millisecond+2*35*time.Millisecond, c.Delay("жж", fixedRand{f: 0}), "counts runes")
}

func TestPacingPlan(t *testing.T) {
	c := DefaultPacingConfig()
	p := c.Plan([]string{"sup"}, "https://media/dog.gif", fixedRand{f: 1})

	require.Len(t, p.Segments, 1)
	assert.Equal(t, "sup", p.Segments[0].Text)
	assert.Equal(t, time.Second, p.MediaDelay)
	assert.Equal(t, 2010*time.Millisecond+time.Second, p.TotalDelay())
	assert.Less(t, p.TotalDelay(), 8*time.Second)

	noMedia := c.Plan([]string{"a", "b"}, "", fixedRand{f: 0})
	assert.Zero(t, noMedia.MediaDelay)
	assert.Equal(t, 2*(635*time.Millisecond), noMedia.TotalDelay())
}

func TestDeliverOrderAndTiming(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := clockwork.NewFakeClock()
	platform := newFakePlatform()
	d := NewDeliverer(platform, clock, zerolog.Nop())
	trigger := InboundMessage{ID: "m1", ChannelID: "c1"}
	plan := Plan{
		Segments:   []Segment{{Text: "one", Delay: 2 * time.Second}, {Text: "two"}},
		MediaURL:   "https://media/x.gif",
		MediaDelay: time.Second,
	}

	done := make(chan error, 1)
	go func() { done <- d.Deliver(ctx, trigger, plan) }()

	// typing ticker + segment timer
	require.NoError(t, clock.BlockUntilContext(ctx, 2))
	assert.Empty(t, platform.visible(), "nothing is sent before the delay")
	assert.GreaterOrEqual(t, platform.count("typing"), 1, "typing shown while waiting")

	clock.Advance(2 * time.Second)
	require.Eventually(t, func() bool { return len(platform.visible()) == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Second)
	require.NoError(t, <-done)

	assert.Equal(t, []call{
		{Kind: "reply", ChannelID: "c1", ReplyTo: "m1", Text: "one"},
		{Kind: "send", ChannelID: "c1", Text: "two"},
		{Kind: "send", ChannelID: "c1", Text: "https://media/x.gif"},
	}, platform.visible())
}

func TestDeliverMediaOnlyIsTheReply(t *testing.T) {
	platform := newFakePlatform()
	d := NewDeliverer(platform, clockwork.NewFakeClock(), zerolog.Nop())

	err := d.Deliver(context.Background(), InboundMessage{ID: "m1", ChannelID: "c1"}, Plan{MediaURL: "https://media/x.gif"})
	require.NoError(t, err)
	assert.Equal(t, []call{{Kind: "reply", ChannelID: "c1", ReplyTo: "m1", Text: "https://media/x.gif"}}, platform.visible())
}

func TestDeliverCancelled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	clock := clockwork.NewFakeClock()
	platform := newFakePlatform()
	d := NewDeliverer(platform, clock, zerolog.Nop())

	done := make(chan error, 1)
	go func() {
		done <- d.Deliver(ctx, InboundMessage{ChannelID: "c1"}, Plan{Segments: []Segment{{Text: "late", Delay: 5 * time.Second}}})
	}()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 2))
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Empty(t, platform.visible())
}

func TestKeepTypingRefreshes(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := clockwork.NewFakeClock()
	platform := newFakePlatform()
	stop := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		KeepTyping(ctx, platform, clock, zerolog.Nop(), "c1", stop)
		close(finished)
	}()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(TypingRefresh)
	require.Eventually(t, func() bool { return platform.count("typing") == 2 }, time.Second, 5*time.Millisecond)

	close(stop)
	<-finished
}

func TestKeepTypingLogsFailures(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var buf syncBuffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	clock := clockwork.NewFakeClock()
	platform := newFakePlatform()
	platform.typingErr = errors.New("forbidden")
	stop := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		KeepTyping(ctx, platform, clock, log, "c1", stop)
		close(finished)
	}()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	close(stop)
	<-finished

	out := buf.String()
	assert.Contains(t, out, `"action":"typing"`)
	assert.Contains(t, out, `"channel":"c1"`)
	assert.Contains(t, out, "forbidden")
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
