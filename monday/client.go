// Package monday talks to the monday.com v2 GraphQL API: a thin HTTP client
// with retry, cursor pagination over board items, and conversion of column
// values into SQL-compatible Go values.
package monday

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultEndpoint is the public GraphQL endpoint.
const DefaultEndpoint = "https://api.monday.com/v2"

// apiVersion is pinned so schema rollouts upstream don't change responses
// under us.
const apiVersion = "2024-10"

// Client is a minimal GraphQL client for the monday.com API. Rate-limited
// (429) and 5xx responses are retried with capped exponential backoff;
// other non-200 responses and GraphQL errors fail immediately.
type Client struct {
	Endpoint     string
	HTTPClient   *http.Client
	MaxRetryTime time.Duration

	apiKey string
}

// NewClient returns a client authenticating with apiKey.
func NewClient(apiKey string) *Client {
	return &Client{
		Endpoint:     DefaultEndpoint,
		HTTPClient:   &http.Client{Timeout: 60 * time.Second},
		MaxRetryTime: 2 * time.Minute,
		apiKey:       apiKey,
	}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// Do executes one GraphQL request and unmarshals the response's data object
// into out.
func (c *Client) Do(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	var data json.RawMessage
	op := func() error {
		data, err = c.post(ctx, body)
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = c.MaxRetryTime
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

func (c *Client) post(ctx context.Context, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("API-Version", apiVersion)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, fmt.Errorf("monday API returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, backoff.Permanent(fmt.Errorf("monday API returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(raw))))
	}

	var gr gqlResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}
	if len(gr.Errors) > 0 {
		msgs := make([]string, len(gr.Errors))
		for i, e := range gr.Errors {
			msgs[i] = e.Message
		}
		return nil, backoff.Permanent(fmt.Errorf("graphql error: %s", strings.Join(msgs, "; ")))
	}
	return gr.Data, nil
}
