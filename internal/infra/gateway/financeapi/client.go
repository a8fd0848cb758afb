package financeapi

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

	"github.com/kislikjeka/finpanel/pkg/logger"
)

const (
	// APIPrefix is the path every backend route is registered under
	APIPrefix = "/api"
	// DefaultTimeout bounds every request made by the client
	DefaultTimeout = 10 * time.Second
	// maxErrorBody caps how much of a failed response is kept on HTTPError
	maxErrorBody = 4 << 10
)

// Config configures a Client
type Config struct {
	// RootURL is the API root, e.g. https://api.example.com/
	RootURL string
	// Timeout defaults to DefaultTimeout
	Timeout time.Duration
	// Transport overrides the HTTP transport (tests)
	Transport http.RoundTripper
}

// Client is the HTTP client for the finance API. It is bound to a fixed base
// URL and runs its request hooks before every call. Cookies go through the
// jar carried by the request context, so each browser session keeps its own.
type Client struct {
	baseURL    string
	httpClient *http.Client
	hooks      []RequestHook
	logger     *logger.Logger
}

// BaseURL derives the API base from a root URL: one trailing slash is
// trimmed and APIPrefix appended.
func BaseURL(root string) string {
	return strings.TrimSuffix(root, "/") + APIPrefix
}

// NewClient creates a new finance API client
func NewClient(cfg Config, log *logger.Logger, hooks ...RequestHook) (*Client, error) {
	if cfg.RootURL == "" {
		return nil, fmt.Errorf("finance API root URL is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: BaseURL(cfg.RootURL),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: cfg.Transport,
		},
		hooks:  append([]RequestHook(nil), hooks...),
		logger: log.WithField("component", "financeapi"),
	}, nil
}

// BaseURL returns the base URL requests are resolved against
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the fixed per-request timeout
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// Use appends hooks to the pre-request pipeline. Not safe to call
// concurrently with requests; register hooks during wiring.
func (c *Client) Use(hooks ...RequestHook) {
	c.hooks = append(c.hooks, hooks...)
}

// clientFor returns the shared client, or a copy bound to the cookie jar in ctx
func (c *Client) clientFor(ctx context.Context) *http.Client {
	jar, ok := CookieJarFromContext(ctx)
	if !ok {
		return c.httpClient
	}
	hc := *c.httpClient
	hc.Jar = jar
	return &hc
}

// Get performs a GET and decodes the JSON response into out (if non-nil)
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Delete performs a DELETE; the response body is ignored
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Do performs a request against the base URL. Any 2xx status is success;
// other statuses return *HTTPError and transport failures are wrapped.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	reqURL := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.runHooks(req)

	log := c.logger.WithContext(ctx)
	start := time.Now()
	log.Debug("API request", "method", method, "url", reqURL)

	resp, err := c.clientFor(ctx).Do(req)
	if err != nil {
		log.Error("API request failed", "method", method, "url", reqURL, "error", err)
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	log.Debug("API response",
		"method", method,
		"url", reqURL,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Warn("API error", "method", method, "url", reqURL, "status_code", resp.StatusCode)
		return &HTTPError{
			Method:     method,
			URL:        reqURL,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
