package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/careroute/concierge/pkg/api"
	"github.com/careroute/concierge/pkg/debug"
	"github.com/careroute/concierge/pkg/provider"
)

// Config holds the Chat Completions backend settings.
type Config struct {
	// BaseURL is the backend root without the /v1 suffix
	// (e.g., "https://api.openai.com").
	BaseURL string

	// APIKey is sent as a bearer token when non-empty.
	APIKey string

	// Timeout bounds the whole HTTP exchange (default 60s).
	Timeout time.Duration
}

// Client performs HTTP requests against an OpenAI-compatible Chat
// Completions backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Ensure Client implements provider.Gateway at compile time.
var _ provider.Gateway = (*Client)(nil)

// New creates a Client. BaseURL is required.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("openaicompat: BaseURL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
	}, nil
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return "openai"
}

// Converse performs one non-streaming Chat Completions call.
func (c *Client) Converse(ctx context.Context, conv *provider.Conversation) (*provider.Reply, error) {
	body, err := json.Marshal(TranslateRequest(conv))
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	debug.Trace("provider", "engine request", "provider", c.Name(), "body", debug.Truncate(string(body), 8192))

	url := c.baseURL + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, provider.TransportError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, provider.ResponseError(httpResp)
	}

	var chatResp ChatCompletionResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&chatResp); err != nil {
		return nil, api.NewEngineError(fmt.Sprintf("failed to parse engine response: %s", err.Error()))
	}

	reply, err := TranslateResponse(&chatResp)
	if err != nil {
		return nil, api.NewEngineError(fmt.Sprintf("malformed engine response: %s", err.Error()))
	}
	return reply, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
