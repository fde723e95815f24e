// Package client talks to an ordermatters server: HTTP for statistics and
// reference results, a websocket for live sessions.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/raphaelgruber/ordermatters/internal/dataset"
	"github.com/raphaelgruber/ordermatters/internal/metrics"
)

// Client is an HTTP client for the ordermatters server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client. If baseURL is empty, localhost:8484 is used.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8484"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) getJSON(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server error: %s - %s", resp.Status, strings.TrimSpace(string(body)))
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: %s", resp.Status)
	}
	return nil
}

// Stats fetches the server's runtime statistics.
func (c *Client) Stats(ctx context.Context) (*metrics.Snapshot, error) {
	var snap metrics.Snapshot
	if err := c.getJSON(ctx, "/stats", &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Results fetches the server's reference dataset.
func (c *Client) Results(ctx context.Context) (*dataset.Dataset, error) {
	var ds dataset.Dataset
	if err := c.getJSON(ctx, "/results", &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

func (c *Client) wsURL(path string) (string, error) {
	endpoint := c.baseURL
	endpoint = strings.Replace(endpoint, "http://", "ws://", 1)
	endpoint = strings.Replace(endpoint, "https://", "wss://", 1)

	u, err := url.Parse(endpoint + path)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	return u.String(), nil
}
