// Package judge talks to the external code-execution service. The service
// is an opaque collaborator: it takes code and a language, runs it
// somewhere else, and hands back stdout and error text. Nothing here
// interprets the result.
package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Request is the execution contract's input.
type Request struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// Response is the execution contract's output. Both fields may be present;
// either may be empty.
type Response struct {
	Output string `json:"output"`
	Error  string `json:"error"`
}

// Client calls the execution service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the service at baseURL. The default
// timeout bounds a single execution round trip; there is no cancellation
// beyond it.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithHTTP injects a custom HTTP client, for tests and callers
// with their own transport policy.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: baseURL, http: httpClient}
}

// Run submits the code for execution and returns stdout and error text.
func (c *Client) Run(ctx context.Context, code, language string) (output, errText string, err error) {
	body, err := json.Marshal(Request{Code: code, Language: language})
	if err != nil {
		return "", "", fmt.Errorf("judge: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("judge: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("judge: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", fmt.Errorf("judge: unexpected status %s", resp.Status)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", fmt.Errorf("judge: decode response: %w", err)
	}
	return out.Output, out.Error, nil
}
