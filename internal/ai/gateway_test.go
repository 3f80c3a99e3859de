package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	reply string
	err   error
	got   Request
	dl    time.Time
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Generate(ctx context.Context, req Request) (string, error) {
	s.got = req
	s.dl, _ = ctx.Deadline()
	return s.reply, s.err
}

func TestGatewayDisabled(t *testing.T) {
	g := NewGateway(nil, 0)
	assert.False(t, g.Enabled())
	assert.Equal(t, "disabled", g.Name())

	_, err := g.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestGatewayCleansReply(t *testing.T) {
	p := &stubProvider{reply: "  <think>hmm let me think</think> \"no cap fr\"  "}
	g := NewGateway(p, time.Second)

	start := time.Now()
	out, err := g.Generate(context.Background(), Request{Current: "x"})
	require.NoError(t, err)
	assert.Equal(t, "no cap fr", out)
	assert.Equal(t, "x", p.got.Current)
	assert.WithinDuration(t, start.Add(time.Second), p.dl, 500*time.Millisecond, "timeout applied")
}

func TestGatewayEmptyReply(t *testing.T) {
	g := NewGateway(&stubProvider{reply: "<think>...</think>   "}, 0)
	_, err := g.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestGatewayWrapsErrors(t *testing.T) {
	cause := errors.New("quota exceeded")
	g := NewGateway(&stubProvider{err: cause}, 0)

	_, err := g.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "stub generate")
}

func TestCleanReply(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`"quoted"`, "quoted"},
		{"“curly”", "curly"},
		{`'single'`, "single"},
		{`"`, `"`},
		{`"half`, `"half`},
		{"a\nb", "a\nb"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanReply(tt.in), tt.in)
	}

	long := make([]rune, maxReplyRunes+50)
	for i := range long {
		long[i] = 'я'
	}
	assert.Len(t, []rune(cleanReply(string(long))), maxReplyRunes)
}

func TestRenderPrompt(t *testing.T) {
	out := RenderPrompt(Request{
		History: []string{"alice (id:1): hi"},
		Current: "bob (id:2): yo",
		Hints:   []string{"be brief", " "},
	})
	assert.Contains(t, out, "HISTORY (the chat so far):\nalice (id:1): hi\n")
	assert.Contains(t, out, "CURRENT MESSAGE:\nbob (id:2): yo\n")
	assert.Contains(t, out, "NOTES:\n- be brief\n\nTASK:")

	empty := RenderPrompt(Request{Current: "x"})
	assert.Contains(t, empty, "(nothing yet)")
	assert.NotContains(t, empty, "NOTES:")
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	p, err := NewProvider(ctx, Options{Provider: "gemini"})
	require.NoError(t, err)
	assert.Nil(t, p, "no key disables generation")

	p, err = NewProvider(ctx, Options{Provider: "pollinations"})
	require.NoError(t, err)
	assert.Equal(t, "pollinations", p.Name())

	_, err = NewProvider(ctx, Options{Provider: "g4f"})
	assert.Error(t, err)
}
