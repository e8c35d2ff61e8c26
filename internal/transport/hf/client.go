// Package hf implements embedding and text generation clients for the
// Hugging Face Inference API.
package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const providerName = "huggingface"

// waitHeader asks the service to hold the request while a cold model warms up
// instead of answering 503 immediately.
const waitHeader = "X-Wait-For-Model"

// client is the shared HTTP plumbing for both inference endpoints.
// No local timeout is set: warm-up latency of the remote models governs the
// worst case, and request contexts still cancel in-flight calls.
type client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func newClient(baseURL, token string) client {
	return client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

// postJSON sends payload to url and returns the response body and status.
// Transport-level failures (DNS, connection reset) surface as errors; any
// HTTP status is returned to the caller for service-specific handling.
func (c client) postJSON(ctx context.Context, url string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set(waitHeader, "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("inference request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

func success(status int) bool {
	return status >= 200 && status < 300
}
