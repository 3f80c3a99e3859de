package mind

import (
	"context"
	"sync"

	"github.com/keshon/zoomer-grok/internal/ai"
)

type call struct {
	Kind      string // send, reply, react, typing
	ChannelID string
	ReplyTo   string
	Text      string
}

type fakePlatform struct {
	mu      sync.Mutex
	calls   []call
	history []InboundMessage
	roles   map[string]string
	sendErr   error
	typingErr error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{roles: map[string]string{}}
}

func (p *fakePlatform) record(c call) {
	p.mu.Lock()
	p.calls = append(p.calls, c)
	p.mu.Unlock()
}

func (p *fakePlatform) Send(_ context.Context, channelID, text string) error {
	p.record(call{Kind: "send", ChannelID: channelID, Text: text})
	return p.sendErr
}

func (p *fakePlatform) Reply(_ context.Context, to InboundMessage, text string) error {
	p.record(call{Kind: "reply", ChannelID: to.ChannelID, ReplyTo: to.ID, Text: text})
	return p.sendErr
}

func (p *fakePlatform) React(_ context.Context, to InboundMessage, emoji string) error {
	p.record(call{Kind: "react", ChannelID: to.ChannelID, ReplyTo: to.ID, Text: emoji})
	return nil
}

func (p *fakePlatform) Typing(_ context.Context, channelID string) error {
	p.record(call{Kind: "typing", ChannelID: channelID})
	return p.typingErr
}

func (p *fakePlatform) ResolveRole(_ context.Context, _, name string) (string, bool) {
	id, ok := p.roles[name]
	return id, ok
}

func (p *fakePlatform) History(_ context.Context, _, _ string, limit int) ([]InboundMessage, error) {
	h := p.history
	if len(h) > limit {
		h = h[len(h)-limit:]
	}
	return h, nil
}

// visible returns every call except typing indicators.
func (p *fakePlatform) visible() []call {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []call
	for _, c := range p.calls {
		if c.Kind != "typing" {
			out = append(out, c)
		}
	}
	return out
}

func (p *fakePlatform) count(kind string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

type generatorFunc func(ctx context.Context, req ai.Request) (string, error)

func (f generatorFunc) Generate(ctx context.Context, req ai.Request) (string, error) {
	return f(ctx, req)
}

type mediaFunc func(ctx context.Context, term string) (string, bool)

func (f mediaFunc) Lookup(ctx context.Context, term string) (string, bool) { return f(ctx, term) }

// fixedRand always returns the same values.
type fixedRand struct {
	f float64
	n int
}

func (r fixedRand) Float64() float64 { return r.f }

func (r fixedRand) IntN(n int) int {
	if r.n >= n {
		return n - 1
	}
	return r.n
}

// panicRand fails the test if anything draws from it.
type panicRand struct{}

func (panicRand) Float64() float64 { panic("unexpected random draw") }
func (panicRand) IntN(int) int     { panic("unexpected random draw") }

type memLedgerStore struct {
	mu      sync.Mutex
	records map[string]ProgressRecord
	saves   int
	saveErr error
	loadErr error
}

func (s *memLedgerStore) LoadLedger() (map[string]ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	cp := make(map[string]ProgressRecord, len(s.records))
	for k, v := range s.records {
		cp[k] = v
	}
	return cp, nil
}

func (s *memLedgerStore) SaveLedger(records map[string]ProgressRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records = records
	return nil
}
