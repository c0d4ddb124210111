// Package httpx is the outbound HTTP transport shared by vendor fetchers.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"datafeed/internal/logging"
)

// Limiter gates outbound requests; see package ratelimit.
type Limiter interface {
	Wait(ctx context.Context) error
}

type Config struct {
	Timeout      time.Duration
	RetryCount   int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
	UserAgent    string
	Headers      map[string]string
	Debug        bool
}

// Client performs GET requests against vendor APIs and decodes JSON bodies.
// It is safe for concurrent use.
type Client struct {
	r       *resty.Client
	hc      *http.Client
	limiter Limiter
}

type Option func(*Client)

// WithLimiter gates every request, including retries, on l.
func WithLimiter(l Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

func New(cfg Config, opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	if c.hc == nil {
		c.hc = &http.Client{Transport: newTransport()}
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "datafeed/1.0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	c.r = resty.NewWithClient(c.hc).
		SetDebug(cfg.Debug).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json").
		SetHeaders(cfg.Headers).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryMaxWait).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= http.StatusInternalServerError
		})
	if c.limiter != nil {
		c.r.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return c.limiter.Wait(req.Context())
		})
	}
	return c
}

func newTransport() *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          200,
		MaxIdleConnsPerHost:   100,
		MaxConnsPerHost:       100,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   3 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
	}
}

// GetJSON issues a GET and decodes the body with numbers kept as json.Number.
// Non-2xx statuses, network failures and undecodable bodies are returned as
// *TransportError.
func (c *Client) GetJSON(ctx context.Context, rawURL string, header http.Header) (any, error) {
	rqID := logging.RequestID(ctx)
	safeURL := Redact(rawURL)

	req := c.r.R().SetContext(ctx)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	slog.Debug("vendor request", slog.String("rqID", rqID), slog.String("url", safeURL))
	resp, err := req.Get(rawURL)
	if err != nil {
		return nil, &TransportError{Method: http.MethodGet, URL: safeURL, Err: err}
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, &TransportError{
			Method: http.MethodGet,
			URL:    safeURL,
			Status: resp.StatusCode(),
			Body:   snippet(resp.Body()),
		}
	}

	dec := json.NewDecoder(bytes.NewReader(resp.Body()))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &TransportError{
			Method: http.MethodGet,
			URL:    safeURL,
			Status: resp.StatusCode(),
			Body:   snippet(resp.Body()),
			Err:    fmt.Errorf("decode response: %w", err),
		}
	}
	return v, nil
}

// TransportError describes a failed vendor request.
type TransportError struct {
	Method string
	URL    string
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Method, e.URL)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Body != "" {
		fmt.Fprintf(&b, ": %s", e.Body)
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }

const maxSnippet = 512

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxSnippet {
		s = s[:maxSnippet] + "..."
	}
	return s
}

var secretParams = []string{"apikey", "api_key", "token"}

// Redact masks credential query parameters so URLs can be logged.
func Redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	changed := false
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")
			changed = true
		}
	}
	if !changed {
		return rawURL
	}
	u.RawQuery = q.Encode()
	return u.String()
}
