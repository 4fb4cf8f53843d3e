// Package client provides a typed HTTP client for an infection-server
// instance, plus a fluent builder for authoring scenarios in Go instead
// of YAML.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"gopkg.in/yaml.v3"

	"github.com/JoshuaRadin37/Infection/internal/epidemic"
	"github.com/JoshuaRadin37/Infection/pkg/scenario"
)

// Client talks to an infection-server over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL
// (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// NewWithHTTPClient creates a client with a caller-supplied http.Client,
// useful for custom timeouts or transports.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// RunInfo describes a run created on the server.
type RunInfo struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Stats epidemic.Stats `json:"stats"`
}

// CreateRun posts a scenario to the server and returns the new run.
func (c *Client) CreateRun(ctx context.Context, cfg scenario.Config) (RunInfo, error) {
	body, err := yaml.Marshal(cfg)
	if err != nil {
		return RunInfo{}, fmt.Errorf("failed to marshal scenario: %w", err)
	}

	u, err := url.JoinPath(c.baseURL, "runs")
	if err != nil {
		return RunInfo{}, fmt.Errorf("failed to build URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return RunInfo{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/yaml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return RunInfo{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return RunInfo{}, responseError(resp)
	}

	var info RunInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return RunInfo{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return info, nil
}

// ListRuns returns the IDs of all active runs on the server.
func (c *Client) ListRuns(ctx context.Context) ([]string, error) {
	u, err := url.JoinPath(c.baseURL, "runs")
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	var payload map[string][]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return payload["runs"], nil
}

// Step advances the run by the given number of steps and returns the
// resulting statistics.
func (c *Client) Step(ctx context.Context, runID string, steps int) (epidemic.Stats, error) {
	u, err := url.JoinPath(c.baseURL, "runs", runID, "step")
	if err != nil {
		return epidemic.Stats{}, fmt.Errorf("failed to build URL: %w", err)
	}
	if steps > 0 {
		u += fmt.Sprintf("?steps=%d", steps)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return epidemic.Stats{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return epidemic.Stats{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return epidemic.Stats{}, responseError(resp)
	}

	var stats epidemic.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return epidemic.Stats{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return stats, nil
}

// Stats fetches the run's current statistics without advancing it.
func (c *Client) Stats(ctx context.Context, runID string) (epidemic.Stats, error) {
	u, err := url.JoinPath(c.baseURL, "runs", runID, "stats")
	if err != nil {
		return epidemic.Stats{}, fmt.Errorf("failed to build URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return epidemic.Stats{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return epidemic.Stats{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return epidemic.Stats{}, responseError(resp)
	}

	var stats epidemic.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return epidemic.Stats{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return stats, nil
}

// DeleteRun removes a run from the server.
func (c *Client) DeleteRun(ctx context.Context, runID string) error {
	u, err := url.JoinPath(c.baseURL, "runs", runID)
	if err != nil {
		return fmt.Errorf("failed to build URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}
	return nil
}

func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
}
