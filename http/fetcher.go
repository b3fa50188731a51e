// Package http implements docsynth services over plain HTTP: a fetcher for
// static sites, sitemap discovery and manifest probing.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/docsynth"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
// Kept consistent with rod.DefaultFetchTimeout (10s).
const DefaultFetchTimeout = 10 * time.Second

// UserAgent is sent with every request.
const UserAgent = "docsynth/1.0 (+https://github.com/fwojciec/docsynth)"

// Ensure Fetcher implements docsynth.Fetcher at compile time.
var _ docsynth.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using HTTP requests.
// Unlike rod.Fetcher, this does not execute JavaScript and is suitable
// for static sites only.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the HTML content from the given URL. Missing pages (404
// and 410) are reported as ENOTFOUND, any other non-2xx status as EFETCH.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	body, err := get(ctx, f.client, url)
	if err != nil {
		return "", err
	}
	defer body.Close()

	b, err := io.ReadAll(body)
	if err != nil {
		return "", docsynth.Errorf(docsynth.EFETCH, "read %s: %v", url, err)
	}

	return string(b), nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}

// get issues a GET request and returns the body of a 2xx response.
// Context errors are returned unwrapped.
func get(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, docsynth.Errorf(docsynth.EINVALID, "invalid request for %s: %v", url, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, docsynth.Errorf(docsynth.EFETCH, "fetch %s: %v", url, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		resp.Body.Close()
		return nil, docsynth.Errorf(docsynth.ENOTFOUND, "HTTP %d for %s", resp.StatusCode, url)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		resp.Body.Close()
		return nil, docsynth.Errorf(docsynth.EFETCH, "HTTP %d for %s", resp.StatusCode, url)
	}
	return resp.Body, nil
}
