// Package api is a typed client for the PLMS HTTP API.
//
// Every call is JSON over HTTP against a configurable base URL and carries a
// bearer token when one is available. Any non-2xx response is returned as an
// *Error holding the server's response body verbatim; the client performs no
// retries and keeps no cache.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RequestIDHeader carries a per-request UUIDv7 for log correlation.
const RequestIDHeader = "X-Request-ID"

// DefaultUserAgent is sent unless WithUserAgent overrides it.
const DefaultUserAgent = "plms-cli"

// TokenSource yields the current bearer credential. An empty string means
// the request is sent unauthenticated.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Client talks to one PLMS API instance. It is safe for concurrent use.
type Client struct {
	base      *url.URL
	http      *http.Client
	tokens    TokenSource
	logger    *slog.Logger
	userAgent string
	requestID func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource sets where the bearer token comes from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRequestIDs replaces the UUIDv7 request id generator.
func WithRequestIDs(next func() string) Option {
	return func(c *Client) { c.requestID = next }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		base:      u,
		http:      &http.Client{Timeout: 30 * time.Second},
		tokens:    StaticToken(""),
		logger:    slog.New(slog.DiscardHandler),
		userAgent: DefaultUserAgent,
		requestID: newRequestID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// endpoint resolves path (and optional query) against the base URL.
func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, c.requestID())
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// send executes req and turns any non-2xx response into an *Error. On
// success the caller owns the response body.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"request_id", req.Header.Get(RequestIDHeader),
			"error", err)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	c.logger.Debug("api request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", req.Header.Get(RequestIDHeader))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		return nil, &Error{Status: resp.StatusCode, Body: string(raw)}
	}
	return resp, nil
}

// do sends a JSON request and decodes a JSON response into out. A nil in
// sends no body; a nil out discards the response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeBody(resp, out)
}

func decodeBody(resp *http.Response, out any) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, in, out)
}

func idPath(format string, ids ...int64) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return fmt.Sprintf(format, args...)
}
