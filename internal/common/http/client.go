// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "news-intel/internal/common/errors"
)

// maxErrorBody bounds how much of a failed response is echoed into errors.
const maxErrorBody = 512

type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// PostJSON sends body as JSON and decodes a 2xx response into out.
func (c *Client) PostJSON(ctx context.Context, operation, url string, headers map[string]string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return apperrors.NewParseError(operation, fmt.Errorf("encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return apperrors.NewTransportError(operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doJSON(req, operation, headers, out)
}

// GetJSON issues a GET and decodes a 2xx response into out.
func (c *Client) GetJSON(ctx context.Context, operation, url string, headers map[string]string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return apperrors.NewTransportError(operation, err)
	}
	return c.doJSON(req, operation, headers, out)
}

func (c *Client) doJSON(req *http.Request, operation string, headers map[string]string, out interface{}) error {
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewTransportError(operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		stdErr := apperrors.NewTransportError(operation, fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet)))
		return stdErr.WithMetadata("status", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewParseError(operation, err)
	}
	return nil
}
