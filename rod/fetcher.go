// Package rod implements docsynth.Fetcher with headless Chrome, for sites
// that render their documentation with JavaScript.
package rod

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/fwojciec/docsynth"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds a single page load.
const DefaultFetchTimeout = 10 * time.Second

// serializeJS returns the rendered document including open shadow roots,
// which outerHTML leaves out.
const serializeJS = `() => {
	const roots = [];
	const walk = (node) => {
		node.querySelectorAll('*').forEach((el) => {
			if (el.shadowRoot) {
				roots.push(el.shadowRoot);
				walk(el.shadowRoot);
			}
		});
	};
	walk(document);
	const root = document.documentElement;
	if (typeof root.getHTML !== 'function') {
		return root.outerHTML;
	}
	return '<!DOCTYPE html><html>' + root.getHTML({shadowRoots: roots}) + '</html>';
}`

// Ensure Fetcher implements docsynth.Fetcher at compile time.
var _ docsynth.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager *BrowserManager
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*fetcherConfig)

type fetcherConfig struct {
	timeout  time.Duration
	recycleAfter int64
}

// WithFetchTimeout sets the timeout for a single page load.
// Defaults to DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *fetcherConfig) {
		c.timeout = d
	}
}

// WithRecycleAfter sets how many pages are loaded before the browser is
// replaced. Defaults to DefaultRecycleAfter.
func WithRecycleAfter(n int64) Option {
	return func(c *fetcherConfig) {
		c.recycleAfter = n
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	cfg := fetcherConfig{timeout: DefaultFetchTimeout, recycleAfter: DefaultRecycleAfter}
	for _, opt := range opts {
		opt(&cfg)
	}

	manager, err := NewBrowserManager(cfg.recycleAfter)
	if err != nil {
		return nil, err
	}
	return &Fetcher{manager: manager, timeout: cfg.timeout}, nil
}

// Fetch navigates to the URL and returns the rendered HTML. A document
// response of 404 or 410 is ENOTFOUND, any other error status is EFETCH.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.manager.Closed() {
		return "", docsynth.Errorf(docsynth.EINVALID, "fetcher is closed")
	}

	browser, release := f.manager.Acquire()
	defer release()
	if browser == nil {
		return "", docsynth.Errorf(docsynth.EINVALID, "fetcher is closed")
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", docsynth.Errorf(docsynth.EFETCH, "open page: %v", err)
	}
	defer page.Close()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	page = page.Context(ctx)

	var status atomic.Int64
	wait := page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument {
			return false
		}
		status.Store(int64(e.Response.Status))
		return true
	})
	go wait()

	if err := page.Navigate(url); err != nil {
		return "", f.fetchErr(ctx, url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", f.fetchErr(ctx, url, err)
	}

	switch code := int(status.Load()); {
	case code == http.StatusNotFound || code == http.StatusGone:
		return "", docsynth.Errorf(docsynth.ENOTFOUND, "HTTP %d for %s", code, url)
	case code >= 400:
		return "", docsynth.Errorf(docsynth.EFETCH, "HTTP %d for %s", code, url)
	}

	res, err := page.Eval(serializeJS)
	if err != nil {
		return "", f.fetchErr(ctx, url, err)
	}
	return res.Value.Str(), nil
}

// fetchErr keeps context errors intact so callers can tell cancellation
// and timeouts apart from browser failures.
func (f *Fetcher) fetchErr(ctx context.Context, url string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return docsynth.Errorf(docsynth.EFETCH, "fetch %s: %v", url, err)
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
