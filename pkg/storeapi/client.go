// Package storeapi is the HTTP client for the commerce REST backend that owns
// catalog, authenticated carts, wishlists, orders and reviews.
package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/metrics"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/tracing"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "zyqora-storefront/1.0"

	headerIdempotencyKey = "Idempotency-Key"
)

// Options configures the backend client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Transport http.RoundTripper
	Metrics   *metrics.Storefront
}

// Client calls the commerce backend. It never retries; each call is attempted once.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	metrics   *metrics.Storefront
}

func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, errors.New("storeapi: base url is required")
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("storeapi: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("storeapi: base url must be http(s), got %q", raw)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout, Transport: tracing.Transport(opts.Transport)},
		userAgent: userAgent,
		metrics:   opts.Metrics,
	}, nil
}

// call describes one backend request. route is the templated path used for metrics and errors.
type call struct {
	method  string
	path    string
	route   string
	token   string
	query   url.Values
	body    any
	headers map[string]string
}

type rawResponse struct {
	status      int
	contentType string
	body        []byte
}

func (c *Client) newRequest(ctx context.Context, in call) (*http.Request, error) {
	var bodyReader io.Reader
	if in.body != nil {
		payload, err := json.Marshal(in.body)
		if err != nil {
			return nil, fmt.Errorf("marshaling %s request: %w", in.route, err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	target := *c.baseURL
	target.RawPath = c.baseURL.EscapedPath() + in.path
	unescaped, err := url.PathUnescape(target.RawPath)
	if err != nil {
		return nil, fmt.Errorf("building %s path: %w", in.route, err)
	}
	target.Path = unescaped
	if len(in.query) > 0 {
		target.RawQuery = in.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, in.method, target.String(), bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if in.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if in.token != "" {
		req.Header.Set("Authorization", "Bearer "+in.token)
	}
	for k, v := range in.headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

func (c *Client) send(ctx context.Context, in call) (*rawResponse, error) {
	if in.route == "" {
		in.route = in.path
	}
	req, err := c.newRequest(ctx, in)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building backend request")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(in.route, in.method, 0, time.Since(start))
		return nil, transportError(in.route, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.metrics.ObserveUpstream(in.route, in.method, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, transportError(in.route, fmt.Errorf("reading response: %w", err))
	}

	// Redirects are followed by the transport; any other non-2xx is a failure.
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, statusError(in.route, resp.StatusCode, body)
	}
	return &rawResponse{status: resp.StatusCode, contentType: resp.Header.Get("Content-Type"), body: body}, nil
}

// do sends in and decodes a JSON body into out when out is non-nil.
func (c *Client) do(ctx context.Context, in call, out any) error {
	resp, err := c.send(ctx, in)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, &Error{Status: resp.status, Route: in.route, cause: err}, "unexpected response from commerce backend")
	}
	return nil
}
