package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// maxImageBytes caps an inline image attachment.
const maxImageBytes = 8 << 20

// GeminiOptions configures the Gemini provider.
type GeminiOptions struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
	HTTPClient      *http.Client // used to fetch attached images
}

// GeminiProvider generates replies through the Gemini API.
type GeminiProvider struct {
	client     *genai.Client
	model      string
	baseConfig *genai.GenerateContentConfig
	http       *http.Client
}

// NewGeminiProvider creates the client. The API key is required.
func NewGeminiProvider(ctx context.Context, opts GeminiOptions) (*GeminiProvider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	temperature := opts.Temperature
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: opts.MaxOutputTokens,
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockLowAndAbove},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
		},
	}

	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	log.Info().Str("component", "ai").Str("provider", "gemini").Str("model", model).Msg("gemini client initialized")
	return &GeminiProvider{client: gi, model: model, baseConfig: cfg, http: client}, nil
}

// Name implements Provider.
func (p *GeminiProvider) Name() string { return "gemini" }

// Generate implements Provider.
func (p *GeminiProvider) Generate(ctx context.Context, req Request) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(RenderPrompt(req))}
	if req.ImageURL != "" {
		data, mime, err := fetchImage(ctx, p.http, req.ImageURL)
		if err != nil {
			log.Warn().Str("component", "ai").Err(err).Msg("image fetch failed, continuing with text only")
		} else {
			parts = append(parts, genai.NewPartFromBytes(data, mime))
		}
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	cfg := *p.baseConfig
	if req.Persona != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.Persona}}}
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, &cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("gemini API error (code %d): %w", apiErr.Code, err)
		}
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reason := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reason = resp.PromptFeedback.BlockReasonMessage
		}
		return "", fmt.Errorf("blocked by safety filter: %s", reason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyReply
	}
	return resp.Text(), nil
}

// fetchImage downloads an attachment for inline upload.
func fetchImage(ctx context.Context, client *http.Client, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("image http %d", resp.StatusCode)
	}
	mime := resp.Header.Get("Content-Type")
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	if !strings.HasPrefix(mime, "image/") {
		return nil, "", fmt.Errorf("not an image: %q", mime)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}
	return data, mime, nil
}
