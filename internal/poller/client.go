package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client checks order status against the checkout API.
type Client struct {
	httpClient *http.Client
	apiBaseURL string
}

func NewClient(apiBaseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiBaseURL: apiBaseURL,
	}
}

func (c *Client) Check(ctx context.Context, orderID string) (*CheckStatus, error) {
	u := fmt.Sprintf("%s/api/orders/%s", c.apiBaseURL, url.PathEscape(orderID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("status check request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := "status check failed"
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &errBody) == nil && errBody.Error != "" {
			msg = errBody.Error
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: msg}
	}

	var payload struct {
		Status    string `json:"status"`
		Completed bool   `json:"completed"`
		Captured  bool   `json:"captured"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}

	return &CheckStatus{
		Status:   payload.Status,
		Captured: payload.Captured || payload.Completed,
	}, nil
}
