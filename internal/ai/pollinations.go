package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultPollinationsURL is the keyless OpenAI-compatible endpoint.
const DefaultPollinationsURL = "https://text.pollinations.ai/openai"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// PollinationsProvider talks to the keyless Pollinations endpoint. Images are described by URL only.
type PollinationsProvider struct {
	url    string
	client *http.Client
}

func NewPollinationsProvider(url string, client *http.Client) *PollinationsProvider {
	if url == "" {
		url = DefaultPollinationsURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &PollinationsProvider{url: url, client: client}
}

func (p *PollinationsProvider) Name() string { return "pollinations" }

func (p *PollinationsProvider) Generate(ctx context.Context, req Request) (string, error) {
	user := RenderPrompt(req)
	if req.ImageURL != "" {
		user += "\n(The current message has an image attached: " + req.ImageURL + ")"
	}
	messages := []chatMessage{{Role: "user", Content: user}}
	if req.Persona != "" {
		messages = append([]chatMessage{{Role: "system", Content: req.Persona}}, messages...)
	}
	payload := map[string]interface{}{
		"model":       "openai",
		"messages":    messages,
		"temperature": 1,
		"private":     true,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("pollinations http %d: %s", resp.StatusCode, truncate(body))
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return "", fmt.Errorf("pollinations returned html")
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal: %w body=%s", err, truncate(body))
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("pollinations empty choices")
	}

	reply := parsed.Choices[0].Message.Content
	if isGarbageResponse(reply) {
		return "", fmt.Errorf("pollinations returned garbage")
	}

	return reply, nil
}
