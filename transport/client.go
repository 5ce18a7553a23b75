// Package transport is the HTTP client of the knowledge base REST API.
//
// Every call returns either the decoded payload or a *goerrors.Error built by
// package failure: non-2xx responses carry the status code and the decoded
// error body, network errors carry code 0. Paged list endpoints are decoded
// into Page values using the X-Total-Count and Link response headers.
//
// Client instances are safe for concurrent use by multiple goroutines.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-lide-client/failure"
)

// DefaultTimeout bounds every request when no http.Client is supplied.
const DefaultTimeout = 30 * time.Second

// Client talks to the REST API rooted at baseURL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the request timeout. A client passed through
// WithHTTPClient is copied, never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client. baseURL includes scheme and host, without the /api
// prefix or a trailing slash.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// response is a fully read HTTP response.
type response struct {
	status int
	header http.Header
	body   []byte
}

// doRequest sends a request and reads the whole response. Non-2xx statuses are
// turned into transport failures.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any) (*response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("url", target).Msg("request failed")
		return nil, failure.Network(method, target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failure.Network(method, target, err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		decoded, message := decodeErrorBody(data)
		return nil, failure.Transport(method, target, resp.StatusCode, message, decoded)
	}

	return &response{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

// decodeResponse decodes the JSON body into target. Empty bodies leave
// target untouched.
func decodeResponse(resp *response, target any) error {
	if target == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeErrorBody returns the best-effort decoded body and the server message
// found in its message, error or detail field.
func decodeErrorBody(data []byte) (any, string) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ""
	}

	var decoded any
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return string(trimmed), ""
	}

	if fields, ok := decoded.(map[string]any); ok {
		for _, name := range []string{"message", "error", "detail"} {
			if s, ok := fields[name].(string); ok && strings.TrimSpace(s) != "" {
				return decoded, s
			}
		}
	}
	return decoded, ""
}

func (c *Client) get(ctx context.Context, path string, query url.Values, target any) (*response, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return resp, decodeResponse(resp, target)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, target any) error {
	resp, err := c.doRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	return decodeResponse(resp, target)
}
