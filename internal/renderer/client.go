package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrNotConfigured indicates the renderer base URL is missing.
var ErrNotConfigured = errors.New("renderer: base URL not configured")

// Payload is the document the renderer turns into a PDF. It carries only
// already-computed numbers; the renderer never prices anything.
type Payload struct {
	QuoteID          string          `json:"quoteId"`
	Reference        string          `json:"reference"`
	RateTableVersion int64           `json:"rateTableVersion"`
	Columns          json.RawMessage `json:"columns"`
	GeneratedAt      time.Time       `json:"generatedAt"`
}

// Result identifies the rendered document.
type Result struct {
	DocumentURL string `json:"documentUrl"`
}

// Client delivers render requests to the external PDF service.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// NewHTTPClient returns an HTTP client configured for renderer delivery.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// Render submits the payload and returns the rendered document location.
func (c *Client) Render(ctx context.Context, payload Payload) (Result, error) {
	if c == nil || strings.TrimSpace(c.BaseURL) == "" {
		return Result{}, ErrNotConfigured
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("renderer: encode payload: %w", err)
	}
	url := strings.TrimRight(c.BaseURL, "/") + "/render"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	client := c.HTTP
	if client == nil {
		client = NewHTTPClient(0)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("renderer: deliver: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("renderer: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("renderer: decode response: %w", err)
	}
	return result, nil
}
