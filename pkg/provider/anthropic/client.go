package anthropic

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

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultVersion   = "2023-06-01"
	defaultMaxTokens = 1024
)

// Config holds the Messages API settings.
type Config struct {
	// BaseURL defaults to https://api.anthropic.com.
	BaseURL string

	APIKey string

	// Version is sent as the anthropic-version header.
	Version string

	// MaxTokens is used when the conversation sets none (default 1024).
	MaxTokens int

	// Timeout bounds the whole HTTP exchange (default 60s).
	Timeout time.Duration
}

// Client talks to the Anthropic Messages API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	version    string
	maxTokens  int
}

var _ provider.Gateway = (*Client)(nil)

// New creates a Client. APIKey is required.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: APIKey is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Version == "" {
		cfg.Version = defaultVersion
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		version:    cfg.Version,
		maxTokens:  cfg.MaxTokens,
	}, nil
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return "anthropic"
}

// Converse performs one non-streaming Messages call.
func (c *Client) Converse(ctx context.Context, conv *provider.Conversation) (*provider.Reply, error) {
	body, err := json.Marshal(translateRequest(conv, c.maxTokens))
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	debug.Trace("provider", "engine request", "provider", c.Name(), "body", debug.Truncate(string(body), 8192))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", c.version)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, provider.TransportError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, provider.ResponseError(httpResp)
	}

	var resp messagesResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, api.NewEngineError(fmt.Sprintf("failed to parse engine response: %s", err.Error()))
	}

	reply, err := translateResponse(&resp)
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
