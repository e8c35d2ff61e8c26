// Package foliochat provides a Go client for the foliochat HTTP API.
package foliochat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Answer is a chat API response: the generated text plus the corpus document
// ids it was grounded on, in relevance order.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("foliochat: %s (status %d): %s", e.Message, e.Status, e.Details)
	}
	return fmt.Sprintf("foliochat: %s (status %d)", e.Message, e.Status)
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	httpClient *http.Client
}

// WithHTTPClient overrides the HTTP client, for custom transports or
// timeouts.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = hc }
}

// Client is the foliochat API client entry point.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("foliochat: base URL required")
	}

	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: cfg.httpClient,
	}, nil
}

// Ask sends a question to the chat endpoint and returns the grounded answer.
func (c *Client) Ask(ctx context.Context, question string) (Answer, error) {
	payload, err := json.Marshal(map[string]string{"q": question})
	if err != nil {
		return Answer{}, fmt.Errorf("foliochat: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload),
	)
	if err != nil {
		return Answer{}, fmt.Errorf("foliochat: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Answer{}, fmt.Errorf("foliochat: send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Answer{}, fmt.Errorf("foliochat: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Answer{}, apiError(resp.StatusCode, body)
	}

	var answer Answer
	if err := json.Unmarshal(body, &answer); err != nil {
		return Answer{}, fmt.Errorf("foliochat: decode response: %w", err)
	}
	return answer, nil
}

// Health reports the server health status string ("ok" or "degraded").
func (c *Client) Health(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return "", fmt.Errorf("foliochat: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("foliochat: send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var report struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return "", fmt.Errorf("foliochat: decode response: %w", err)
	}
	return report.Status, nil
}

func apiError(status int, body []byte) error {
	var payload struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error == "" {
		payload.Error = strings.TrimSpace(string(body))
	}
	return &APIError{
		Status:  status,
		Message: payload.Error,
		Details: payload.Details,
	}
}
