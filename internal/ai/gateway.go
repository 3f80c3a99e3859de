package ai

import (
	"context"
	"fmt"
	"time"
)

// DefaultTimeout bounds one generation call.
const DefaultTimeout = 25 * time.Second

// Gateway is the single entry point to generation: it bounds each call with a
// timeout and cleans the reply. A nil provider makes every call ErrDisabled.
type Gateway struct {
	provider Provider
	timeout  time.Duration
}

// NewGateway wraps provider. timeout <= 0 uses DefaultTimeout.
func NewGateway(provider Provider, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{provider: provider, timeout: timeout}
}

// Enabled reports whether a provider is configured.
func (g *Gateway) Enabled() bool { return g != nil && g.provider != nil }

// Name returns the provider name, or "disabled".
func (g *Gateway) Name() string {
	if !g.Enabled() {
		return "disabled"
	}
	return g.provider.Name()
}

// Generate calls the provider. Failures are returned once; there is no retry.
func (g *Gateway) Generate(ctx context.Context, req Request) (string, error) {
	if !g.Enabled() {
		return "", ErrDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.provider.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s generate: %w", g.provider.Name(), err)
	}
	reply := cleanReply(raw)
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}
