package network

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/rs/zerolog"

	"github.com/rnystrom/openGraphScraper/options"
)

type captureDoer struct {
	req  *fhttp.Request
	resp *fhttp.Response
}

func (d *captureDoer) Do(req *fhttp.Request) (*fhttp.Response, error) {
	d.req = req
	return d.resp, nil
}

func newTestClient(resp *fhttp.Response, downloadLimit int64) (*Client, *captureDoer) {
	doer := &captureDoer{resp: resp}
	client := &Client{
		http:          doer,
		decompress:    true,
		downloadLimit: downloadLimit,
		logger:        zerolog.Nop(),
	}
	return client, doer
}

func newTestResponse(body string, contentLength int64, status int) *fhttp.Response {
	return &fhttp.Response{
		StatusCode:    status,
		ContentLength: contentLength,
		Header:        fhttp.Header{},
		Body:          io.NopCloser(strings.NewReader(body)),
	}
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(options.DefaultRequestOptions(), 1024)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.downloadLimit != 1024 {
		t.Fatalf("expected download limit 1024, got %d", client.downloadLimit)
	}

	noRedirects := options.DefaultRequestOptions()
	noRedirects.FollowRedirect = false
	if _, err := NewClient(noRedirects, 0, WithLogger(zerolog.Nop())); err != nil {
		t.Fatalf("NewClient without redirects failed: %v", err)
	}
}

func TestFetchAbortsPastLimit(t *testing.T) {
	client, _ := newTestClient(newTestResponse(strings.Repeat("a", 2048), -1, 200), 10)

	_, err := client.Fetch(context.Background(), "http://example.com/huge")
	var limitErr *DownloadLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected DownloadLimitError, got %v", err)
	}
	if !strings.Contains(err.Error(), "10 bytes") {
		t.Fatalf("expected message to mention the limit, got %q", err.Error())
	}
}

func TestFetchWithinLimit(t *testing.T) {
	client, _ := newTestClient(newTestResponse("small body", 10, 200), 1024)

	body, err := client.Fetch(context.Background(), "http://example.com/page")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(body) != "small body" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestFetchUnlimitedWhenDisabled(t *testing.T) {
	client, _ := newTestClient(newTestResponse(strings.Repeat("a", 4096), -1, 200), 0)

	body, err := client.Fetch(context.Background(), "http://example.com/huge")
	if err != nil {
		t.Fatalf("Fetch failed with disabled limit: %v", err)
	}
	if len(body) != 4096 {
		t.Fatalf("expected full body, got %d bytes", len(body))
	}
}

func TestFetchStatusError(t *testing.T) {
	client, _ := newTestClient(newTestResponse("gone", -1, 404), 1024)

	_, err := client.Fetch(context.Background(), "http://example.com/missing")
	if err == nil || !strings.Contains(err.Error(), "http 404") {
		t.Fatalf("expected http 404 error, got %v", err)
	}
}

func TestGetStreamsMonitoredBody(t *testing.T) {
	client, _ := newTestClient(newTestResponse(strings.Repeat("a", 2048), -1, 200), 10)

	resp, err := client.Get(context.Background(), "http://example.com/stream")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer resp.Body.Close()

	_, err = io.ReadAll(resp.Body)
	var limitErr *DownloadLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected stream to be destroyed past the limit, got %v", err)
	}
}

func TestApplyHeaders(t *testing.T) {
	client, doer := newTestClient(newTestResponse("ok", 2, 200), 0)
	client.headers = map[string]string{"X-Scraper": "og"}

	if _, err := client.Fetch(context.Background(), "http://example.com/"); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if doer.req.Header.Get("User-Agent") == "" {
		t.Fatalf("expected default User-Agent to be applied")
	}
	if doer.req.Header.Get("X-Scraper") != "og" {
		t.Fatalf("expected configured header to be applied")
	}
	if doer.req.Header.Get("Accept-Encoding") != "" {
		t.Fatalf("decompress should leave Accept-Encoding alone")
	}
}

func TestApplyHeadersNoDecompress(t *testing.T) {
	client, doer := newTestClient(newTestResponse("ok", 2, 200), 0)
	client.decompress = false

	if _, err := client.Fetch(context.Background(), "http://example.com/"); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if doer.req.Header.Get("Accept-Encoding") != "identity" {
		t.Fatalf("expected identity Accept-Encoding when decompression is off")
	}
}

func TestHeadersOverrideDefaults(t *testing.T) {
	client, doer := newTestClient(newTestResponse("ok", 2, 200), 0)
	client.headers = map[string]string{"User-Agent": "custom-agent"}

	if _, err := client.Fetch(context.Background(), "http://example.com/"); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got := doer.req.Header.Get("User-Agent"); got != "custom-agent" {
		t.Fatalf("expected configured User-Agent to win, got %q", got)
	}
}
