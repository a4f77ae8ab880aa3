// Package apiclient wraps a resty client bound to one Story Spoiler
// deployment. After Authenticate succeeds every request carries the bearer
// token.
package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const authenticationPath = "/api/User/Authentication"

// RawResponse is the status code and undecoded body of one call.
type RawResponse struct {
	StatusCode int
	Body       []byte
}

// String returns the body as text, for assertion messages.
func (r *RawResponse) String() string {
	return string(r.Body)
}

// Client is a wrapper around the resty.Client.
type Client struct {
	rest   *resty.Client
	logger zerolog.Logger
	token  string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets a per-request timeout. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.rest.SetTimeout(d)
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying *http.Client, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.rest = resty.NewWithClient(hc).
			SetBaseURL(c.rest.BaseURL).
			SetHeader("Content-Type", "application/json").
			SetRetryCount(0)
	}
}

// New creates a client for baseURL. Retries are disabled: every call is
// exactly one round trip.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		rest: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetRetryCount(0),
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the deployment root the client talks to.
func (c *Client) BaseURL() string {
	return c.rest.BaseURL
}

// Token returns the bearer token set by Authenticate, or "".
func (c *Client) Token() string {
	return c.token
}

// SetToken attaches token to all subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
	c.rest.SetAuthToken(token)
}

// Send issues one request. A non-nil body is encoded as JSON. Any HTTP status
// is returned as a RawResponse; only transport failures produce an error.
func (c *Client) Send(ctx context.Context, method, path string, body any) (*RawResponse, error) {
	req := c.rest.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	c.logger.Debug().Str("method", method).Str("path", path).Msg("sending request")

	res, err := req.Execute(method, path)
	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", res.StatusCode()).
		Dur("elapsed", res.Time()).
		Msg("received response")

	return &RawResponse{StatusCode: res.StatusCode(), Body: res.Body()}, nil
}

// Close releases idle connections held by the transport.
func (c *Client) Close() {
	c.rest.GetClient().CloseIdleConnections()
}
