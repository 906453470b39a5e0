// Package transport provides a default HTTP-backed implementation of the
// capsa core's external collaborators: [BlobStore] and [PartyKeySource].
// The cryptographic core never imports this package; callers wire it in
// explicitly when they want a ready-made network client instead of
// supplying their own.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultTimeout = 30 * time.Second
)

// Client handles HTTP communication with a capsa blob-store/party-key
// backend. It provides automatic retry logic with exponential backoff for
// transient failures and logs retries and failed requests through an
// [AuditLogger].
type Client struct {
	// httpClient is the underlying HTTP client used for requests.
	httpClient *http.Client
	// baseURL is the backend's base URL (e.g., "https://capsa.example.com").
	baseURL string
	// apiKey is the API key used for authentication via the X-API-Key header.
	apiKey string
	// retry controls attempt count, backoff, and which statuses are retryable.
	retry *RetryConfig
	// logger audits requests and retries. Never logs key material.
	logger AuditLogger
}

// New creates a new transport client using the functional options pattern.
// The apiKey is required for authentication. Use [Option] functions like
// [WithBaseURL], [WithTimeout], and [WithRetries] to customize behavior.
//
// Returns an error if apiKey is empty or if baseURL is not set via [WithBaseURL].
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	c := &Client{
		baseURL: "",
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		retry:  DefaultRetryConfig(),
		logger: NewZerologAuditLogger(zerolog.Nop()),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	return c, nil
}

// Option configures the transport client.
type Option func(*Client)

// WithBaseURL sets the base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithRetries sets the number of retries.
func WithRetries(retries int) Option {
	return func(c *Client) {
		c.retry.MaxRetries = retries
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithRetryOn sets the HTTP status codes that trigger a retry.
func WithRetryOn(statusCodes []int) Option {
	return func(c *Client) {
		set := make(map[int]struct{}, len(statusCodes))
		for _, code := range statusCodes {
			set[code] = struct{}{}
		}
		c.retry.RetryableOn = func(statusCode int) bool {
			_, ok := set[statusCode]
			return ok
		}
	}
}

// WithAuditLogger sets the audit logger used for request/retry events.
func WithAuditLogger(logger AuditLogger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// BaseURL returns the base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes an HTTP request with automatic retry logic.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control.
//   - method: HTTP method (GET, POST, DELETE, etc.).
//   - path: backend path to append to the base URL.
//   - body: Request body to JSON-encode, or nil for no body.
//   - result: Pointer to unmarshal the JSON response into, or nil to discard.
//
// The request includes X-API-Key, Content-Type, and Accept headers automatically.
// Retries are attempted with exponential backoff for status codes for which
// the retry config's RetryableOn reports true.
func (c *Client) Do(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	return c.doWithRetry(ctx, method, path, bodyReader, result)
}

// doWithRetry implements the retry logic with exponential backoff.
// It handles network errors, retryable status codes, error response parsing,
// and successful response decoding. The body must be an io.Seeker if retries
// are needed, as it will be reset between attempts.
func (c *Client) doWithRetry(ctx context.Context, method, path string, body io.Reader, result any) error {
	var lastErr error

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retry.Delay(attempt - 1)
			c.logger.Retry(ctx, method, path, attempt, delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}

			// Reset body reader if needed
			if seeker, ok := body.(io.Seeker); ok {
				if _, err := seeker.Seek(0, io.SeekStart); err != nil {
					return fmt.Errorf("reset request body: %w", err)
				}
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("X-API-Key", c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = &NetworkError{Err: err}
			continue
		}

		// Check for retryable status codes
		if c.retry.ShouldRetry(attempt, resp.StatusCode) {
			lastErr = &APIError{StatusCode: resp.StatusCode}
			resp.Body.Close()
			continue
		}

		// Handle error responses
		if resp.StatusCode >= 400 {
			err := parseErrorResponse(resp)
			resp.Body.Close()
			c.logger.RequestFailed(ctx, method, path, err)
			return err
		}

		// Handle 204 No Content
		if resp.StatusCode == http.StatusNoContent {
			resp.Body.Close()
			return nil
		}

		// Parse response
		if result != nil {
			if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
				resp.Body.Close()
				return fmt.Errorf("decode response: %w", err)
			}
		}
		resp.Body.Close()

		return nil
	}

	if lastErr != nil {
		c.logger.RequestFailed(ctx, method, path, lastErr)
	}
	return lastErr
}

// parseErrorResponse extracts error information from an HTTP error response.
// It attempts to parse a JSON error body with "error", "message", and "request_id"
// fields. If parsing fails, the raw body is used as the error message.
func parseErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error     string `json:"error"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	}

	if err := json.Unmarshal(body, &errResp); err == nil {
		msg := errResp.Error
		if msg == "" {
			msg = errResp.Message
		}
		if msg == "" {
			msg = string(body)
		}
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    msg,
			RequestID:  errResp.RequestID,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    string(body),
	}
}
