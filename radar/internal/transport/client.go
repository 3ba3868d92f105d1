// Package transport sends request envelopes to the provider over HTTP.
// It never retries and never inspects gRPC trailers.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/proxy"
	"golang.org/x/time/rate"
)

const (
	defaultDialTimeout = 10 * time.Second
	// maxResponseSize bounds unary response bodies.
	maxResponseSize = 64 << 20
)

// Envelope is one request, ready to send.
type Envelope struct {
	// Method names the call in logs and metrics.
	Method string
	// Path is joined to the client's base URL.
	Path   string
	Header http.Header
	Body   []byte
}

// Response is a fully read unary response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// HTTPConfig configures NewHTTPClient.
type HTTPConfig struct {
	// Timeout bounds unary requests. Streams should use a client without one,
	// since the provider can go a minute between keep-alives.
	Timeout time.Duration
	// Proxy is an optional proxy URL, e.g. socks5://127.0.0.1:1080.
	Proxy string
}

// NewHTTPClient returns an HTTP client that negotiates HTTP/2 over TLS and
// falls back to HTTP/1.1.
func NewHTTPClient(cfg HTTPConfig) (*http.Client, error) {
	dialer := &net.Dialer{Timeout: defaultDialTimeout, KeepAlive: 30 * time.Second}
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	if cfg.Proxy != "" {
		u, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("transport: invalid proxy %q: %w", cfg.Proxy, err)
		}
		if strings.HasPrefix(u.Scheme, "socks") {
			d, err := proxy.FromURL(u, dialer)
			if err != nil {
				return nil, fmt.Errorf("transport: proxy %q: %w", cfg.Proxy, err)
			}
			cd, ok := d.(proxy.ContextDialer)
			if !ok {
				return nil, fmt.Errorf("transport: proxy %q does not support contexts", cfg.Proxy)
			}
			tr.Proxy = nil
			tr.DialContext = cd.DialContext
		} else {
			tr.Proxy = http.ProxyURL(u)
		}
	}
	if err := http2.ConfigureTransport(tr); err != nil {
		return nil, fmt.Errorf("transport: configure http2: %w", err)
	}
	return &http.Client{Transport: tr, Timeout: cfg.Timeout}, nil
}

// Client sends envelopes to one base URL. It is safe for concurrent use;
// the underlying connection pool is shared by every call.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	limiter *rate.Limiter
	log     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) { client.http = c }
}

// WithRateLimit paces requests to rps per second with the given burst.
// A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(client *Client) {
		if rps <= 0 {
			client.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		client.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(client *Client) { client.log = log }
}

// New returns a client for baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("transport: invalid base url %q", baseURL)
	}
	c := &Client{
		http:    http.DefaultClient,
		baseURL: u,
		log:     slog.Default(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// HTTPClient returns the shared HTTP client.
func (c *Client) HTTPClient() *http.Client { return c.http }

func (c *Client) endpoint(path string) string {
	return c.baseURL.JoinPath(path).String()
}

// Do sends env and reads the whole response. Non-2xx responses are returned
// as *StatusError.
func (c *Client) Do(ctx context.Context, env Envelope) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(env.Path), bytes.NewReader(env.Body))
	if err != nil {
		return nil, fmt.Errorf("transport: build %s request: %w", env.Method, err)
	}
	copyHeader(req.Header, env.Header)
	return c.do(req, env.Method)
}

// Get fetches rawURL, which is not resolved against the base URL.
func (c *Client) Get(ctx context.Context, method, rawURL string, header http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: build %s request: %w", method, err)
	}
	copyHeader(req.Header, header)
	return c.do(req, method)
}

func (c *Client) do(req *http.Request, method string) (*Response, error) {
	start := time.Now()
	resp, err := c.send(req, method)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	metricLatency.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metricErrors.WithLabelValues(method, "read").Inc()
		return nil, fmt.Errorf("transport: read %s response: %w", method, err)
	}
	if len(body) > maxResponseSize {
		metricErrors.WithLabelValues(method, "read").Inc()
		return nil, fmt.Errorf("%w: %s", ErrResponseTooLarge, method)
	}

	c.log.DebugContext(req.Context(), "transport: response",
		"method", method,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start),
	)
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// Stream sends env and returns the open response body. Closing it, or
// cancelling ctx, ends the stream.
func (c *Client) Stream(ctx context.Context, env Envelope) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(env.Path), bytes.NewReader(env.Body))
	if err != nil {
		return nil, fmt.Errorf("transport: build %s request: %w", env.Method, err)
	}
	copyHeader(req.Header, env.Header)

	start := time.Now()
	resp, err := c.send(req, env.Method)
	if err != nil {
		return nil, err
	}
	metricLatency.WithLabelValues(env.Method).Observe(time.Since(start).Seconds())
	c.log.DebugContext(ctx, "transport: stream opened", "method", env.Method, "status", resp.StatusCode)
	return resp.Body, nil
}

// send waits for the rate limiter, performs req and turns non-2xx statuses
// into *StatusError. On success the caller owns resp.Body.
func (c *Client) send(req *http.Request, method string) (*http.Response, error) {
	metricRequests.WithLabelValues(method).Inc()

	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			metricErrors.WithLabelValues(method, "rate_limit").Inc()
			return nil, fmt.Errorf("transport: %s: %w", method, err)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metricErrors.WithLabelValues(method, "network").Inc()
		return nil, fmt.Errorf("transport: %s: %w", method, err)
	}
	if resp.StatusCode/100 == 2 {
		return resp, nil
	}
	defer resp.Body.Close()

	prefix, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	statusErr := &StatusError{
		Method:     method,
		StatusCode: resp.StatusCode,
		Code:       CodeForHTTPStatus(resp.StatusCode),
		Body:       bytes.TrimSpace(prefix),
	}
	metricErrors.WithLabelValues(method, statusErr.Code.String()).Inc()
	c.log.WarnContext(req.Context(), "transport: request failed",
		"method", method,
		"status", resp.StatusCode,
		"code", statusErr.Code.String(),
	)
	return nil, statusErr
}

func copyHeader(dst, src http.Header) {
	for k, vs := range src {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}
