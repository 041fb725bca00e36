// Package network builds the HTTP client used to fetch pages, enforcing a
// byte cap on response bodies so adversarial or huge pages cannot exhaust
// memory or bandwidth.
package network

import (
	"context"
	"fmt"
	"io"

	fhttp "github.com/bogdanfinn/fhttp"
	fhttpcookiejar "github.com/bogdanfinn/fhttp/cookiejar"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/rs/zerolog"

	"github.com/rnystrom/openGraphScraper/options"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// doer is the slice of tls_client.HttpClient the client depends on.
type doer interface {
	Do(req *fhttp.Request) (*fhttp.Response, error)
}

// Client issues requests with a browser TLS fingerprint and aborts any
// response body that grows past the configured download limit. A Client is
// immutable after construction and safe for concurrent use.
type Client struct {
	http          doer
	headers       map[string]string
	decompress    bool
	downloadLimit int64
	logger        zerolog.Logger
}

// Option customizes a Client beyond its transport options.
type Option func(*Client)

// WithLogger attaches a logger for debug-level request events.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient builds a client from transport options and a download limit in
// bytes. A limit of zero or below disables body monitoring entirely.
func NewClient(reqOpts options.RequestOptions, downloadLimit int64, opts ...Option) (*Client, error) {
	jar, _ := fhttpcookiejar.New(nil)

	tlsOpts := []tls_client.HttpClientOption{
		tls_client.WithClientProfile(profiles.Chrome_120),
		tls_client.WithTimeoutSeconds(30),
		tls_client.WithCookieJar(jar),
	}
	if !reqOpts.FollowRedirect {
		tlsOpts = append(tlsOpts, tls_client.WithNotFollowRedirects())
	}

	httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), tlsOpts...)
	if err != nil {
		return nil, err
	}

	client := &Client{
		http:          httpClient,
		headers:       reqOpts.Headers,
		decompress:    reqOpts.Decompress,
		downloadLimit: downloadLimit,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Do sends req and, when a download limit is configured, replaces the
// response body with a monitored reader that aborts the transfer the moment
// the limit is exceeded mid-download.
func (c *Client) Do(req *fhttp.Request) (*fhttp.Response, error) {
	c.applyHeaders(req)
	c.logger.Debug().Str("url", req.URL.String()).Int64("limit", c.downloadLimit).Msg("request")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	if c.downloadLimit > 0 {
		resp.Body = newLimitedBody(resp.Body, c.downloadLimit, resp.ContentLength)
	}
	return resp, nil
}

// Get issues a GET request and returns the streaming response. The caller
// owns resp.Body; exceeding the download limit surfaces as a read error and
// destroys the underlying stream.
func (c *Client) Get(ctx context.Context, target string) (*fhttp.Response, error) {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Fetch issues a GET request and buffers the whole body. Exceeding the
// download limit surfaces as the returned error.
func (c *Client) Fetch(ctx context.Context, target string) ([]byte, error) {
	resp, err := c.Get(ctx, target)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) applyHeaders(req *fhttp.Request) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", defaultUserAgent)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	}
	if req.Header.Get("Accept-Language") == "" {
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	}
	if !c.decompress {
		req.Header.Set("Accept-Encoding", "identity")
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
}
