package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultGiphyEndpoint is the random-GIF API.
const DefaultGiphyEndpoint = "https://api.giphy.com/v1/gifs/random"

// GiphyOptions configures the Giphy searcher.
type GiphyOptions struct {
	APIKey   string
	Rating   string // e.g. pg-13
	Endpoint string
	Timeout  time.Duration
}

// Giphy resolves a search term to a random matching GIF.
type Giphy struct {
	opts   GiphyOptions
	client *http.Client
}

// NewGiphy creates a searcher. An empty API key makes every search return no URL.
func NewGiphy(opts GiphyOptions, client *http.Client) *Giphy {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultGiphyEndpoint
	}
	if opts.Rating == "" {
		opts.Rating = "pg-13"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}
	if client == nil {
		client = &http.Client{}
	}
	return &Giphy{opts: opts, client: client}
}

// Enabled reports whether a key is configured.
func (g *Giphy) Enabled() bool { return g.opts.APIKey != "" }

// Search implements Searcher. An empty URL with a nil error means nothing matched.
func (g *Giphy) Search(ctx context.Context, term string) (string, error) {
	if !g.Enabled() {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	q := url.Values{}
	q.Set("api_key", g.opts.APIKey)
	q.Set("tag", term)
	q.Set("rating", g.opts.Rating)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.opts.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("giphy http %d", resp.StatusCode)
	}

	// data is an empty array, not an object, when nothing matches.
	var parsed struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal: %w", err)
	}
	var gif struct {
		Images struct {
			Original struct {
				URL string `json:"url"`
			} `json:"original"`
		} `json:"images"`
	}
	if len(parsed.Data) == 0 || parsed.Data[0] != '{' {
		return "", nil
	}
	if err := json.Unmarshal(parsed.Data, &gif); err != nil {
		return "", fmt.Errorf("unmarshal data: %w", err)
	}
	return gif.Images.Original.URL, nil
}
