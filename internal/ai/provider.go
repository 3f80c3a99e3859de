package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrDisabled means no generation backend is configured.
	ErrDisabled = errors.New("ai: generation disabled")
	// ErrEmptyReply means the backend answered with nothing usable.
	ErrEmptyReply = errors.New("ai: empty reply")
)

// Request is everything one generation needs.
type Request struct {
	Persona  string   // system instruction, opaque to the caller
	History  []string // labelled transcript lines, oldest first
	Current  string   // labelled current message
	ImageURL string   // optional image attached to the current message
	Hints    []string // short steering notes (trigger, fatigue, user level)
}

// Provider is a text/vision generation backend.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Options selects and configures a provider.
type Options struct {
	Provider        string // "gemini" or "pollinations"
	GeminiAPIKey    string
	GeminiModel     string
	Temperature     float32
	MaxOutputTokens int32
	PollinationsURL string
	HTTPClient      *http.Client
}

// NewProvider builds the configured provider. A gemini provider without a key
// returns (nil, nil): generation is disabled, not broken.
func NewProvider(ctx context.Context, opts Options) (Provider, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 25 * time.Second}
	}
	switch opts.Provider {
	case "gemini", "":
		if opts.GeminiAPIKey == "" {
			return nil, nil
		}
		p, err := NewGeminiProvider(ctx, GeminiOptions{
			APIKey:          opts.GeminiAPIKey,
			Model:           opts.GeminiModel,
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxOutputTokens,
			HTTPClient:      client,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	case "pollinations":
		return NewPollinationsProvider(opts.PollinationsURL, client), nil
	default:
		return nil, fmt.Errorf("unsupported AI_PROVIDER: %s", opts.Provider)
	}
}
