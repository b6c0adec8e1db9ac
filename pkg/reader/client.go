// Package reader provides a client for a page-content retrieval service
// that renders any URL as markdown and reports the token units consumed.
package reader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://r.jina.ai"

// Client defines the content-retrieval operations.
type Client interface {
	// Read fetches a URL and returns its markdown content.
	Read(ctx context.Context, targetURL string) (*ReadResponse, error)
}

// ReadResponse is the parsed retrieval response.
type ReadResponse struct {
	Code int      `json:"code"`
	Data ReadData `json:"data"`
}

// ReadData holds the retrieved content.
type ReadData struct {
	Title   string    `json:"title"`
	URL     string    `json:"url"`
	Content string    `json:"content"`
	Usage   ReadUsage `json:"usage"`
}

// ReadUsage tracks token units consumed by the retrieval.
type ReadUsage struct {
	Tokens int `json:"tokens"`
}

// Option configures the reader client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps retrievals per second to respect the service's limits.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a new content-retrieval client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Read(ctx context.Context, targetURL string) (*ReadResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "reader: rate limit")
		}
	}

	reqURL := fmt.Sprintf("%s/%s", c.baseURL, targetURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "reader: create request")
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Return-Format", "markdown")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "reader: request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "reader: read response body")
	}

	// The service reports unreadable pages as 422; surface that as an
	// empty response rather than an error so callers can skip the page.
	if resp.StatusCode == http.StatusUnprocessableEntity {
		return &ReadResponse{Code: resp.StatusCode}, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("reader: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result ReadResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "reader: unmarshal response")
	}

	return &result, nil
}
