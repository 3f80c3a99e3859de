package media

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Searcher resolves a term to a media URL.
type Searcher interface {
	Search(ctx context.Context, term string) (string, error)
}

// Limiter grants or refuses one call without blocking.
type Limiter interface {
	TryAcquire() bool
}

// Gateway guards a Searcher with a Limiter. Every failure reads as "no URL".
type Gateway struct {
	searcher Searcher
	limiter  Limiter
	log      zerolog.Logger
}

// NewGateway creates a gateway. A nil searcher disables lookups.
func NewGateway(searcher Searcher, limiter Limiter, log zerolog.Logger) *Gateway {
	return &Gateway{searcher: searcher, limiter: limiter, log: log.With().Str("component", "media").Logger()}
}

// Lookup spends one quota slot and searches term.
func (g *Gateway) Lookup(ctx context.Context, term string) (string, bool) {
	term = strings.TrimSpace(term)
	if g == nil || g.searcher == nil || term == "" {
		return "", false
	}
	if e, ok := g.searcher.(interface{ Enabled() bool }); ok && !e.Enabled() {
		return "", false
	}
	if g.limiter != nil && !g.limiter.TryAcquire() {
		g.log.Info().Str("action", "lookup_skipped").Str("term", term).Msg("media quota exhausted")
		return "", false
	}
	url, err := g.searcher.Search(ctx, term)
	if err != nil {
		g.log.Warn().Str("action", "lookup_failed").Str("term", term).Err(err).Msg("media search failed")
		return "", false
	}
	if url == "" {
		return "", false
	}
	g.log.Debug().Str("action", "lookup").Str("term", term).Msg("media resolved")
	return url, true
}
