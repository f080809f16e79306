package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/deckduel/internal/api/apierr"
)

// Client is an HTTP client for the API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ErrorResponse wraps an API error
type ErrorResponse = apierr.ErrorResponse

// ServerError is an error body returned by the server
type ServerError struct {
	Status int
	apierr.APIError
}

// deckRejections are the codes the deck validator answers with
var deckRejections = map[string]bool{
	apierr.CodeValidation:        true,
	apierr.CodeUnknownCards:      true,
	apierr.CodeUnknownLeader:     true,
	apierr.CodeMixedFactions:     true,
	apierr.CodeLeaderMismatch:    true,
	apierr.CodeDuplicateDeckName: true,
}

// Error renders deck rejections with one violation per line so a long card
// list stays readable; everything else fits on one line
func (e *ServerError) Error() string {
	if deckRejections[e.Code] && len(e.Details) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "deck rejected: %s (%s)", e.Message, e.Code)
		for _, d := range e.Details {
			b.WriteString("\n  - ")
			b.WriteString(d)
		}
		return b.String()
	}

	msg := fmt.Sprintf("%s (%s)", e.Message, e.Code)
	if len(e.Details) > 0 {
		msg += ": " + strings.Join(e.Details, "; ")
	}
	return msg
}

// Retryable reports whether the server asked the client to try again
func (e *ServerError) Retryable() bool {
	return e.Status == http.StatusServiceUnavailable
}

// Do performs an HTTP request. Reads that hit a retryable 503 are tried
// once more after the server's Retry-After; writes are never repeated since a
// top-up or purchase is not idempotent.
func (c *Client) Do(method, path string, body, result any) error {
	wait, err := c.do(method, path, body, result)
	if method != http.MethodGet || wait < 0 {
		return err
	}
	time.Sleep(wait)
	_, err = c.do(method, path, body, result)
	return err
}

// do makes one attempt. The returned wait is non-negative only when the
// server answered with a retryable error.
func (c *Client) do(method, path string, body, result any) (time.Duration, error) {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return -1, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return -1, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return -1, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return -1, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err != nil || errResp.Error.Code == "" {
			return -1, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		serverErr := &ServerError{Status: resp.StatusCode, APIError: errResp.Error}
		if !serverErr.Retryable() {
			return -1, serverErr
		}
		return retryAfter(resp.Header.Get("Retry-After")), serverErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return -1, fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return -1, nil
}

// retryAfter reads a delay in seconds, capped so the CLI never hangs
func retryAfter(header string) time.Duration {
	const maxWait = 5 * time.Second

	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs < 0 {
		return time.Second
	}
	return min(time.Duration(secs)*time.Second, maxWait)
}

// Get performs a GET request
func (c *Client) Get(path string, result any) error {
	return c.Do(http.MethodGet, path, nil, result)
}

// Post performs a POST request
func (c *Client) Post(path string, body, result any) error {
	return c.Do(http.MethodPost, path, body, result)
}

// Put performs a PUT request
func (c *Client) Put(path string, body, result any) error {
	return c.Do(http.MethodPut, path, body, result)
}

// Delete performs a DELETE request
func (c *Client) Delete(path string) error {
	return c.Do(http.MethodDelete, path, nil, nil)
}
