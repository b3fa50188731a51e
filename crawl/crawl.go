// Package crawl discovers and extracts the pages of a documentation site.
// It runs a bounded pool of workers over a shared breadth-first frontier,
// or takes the site's precompiled manifest when one is published.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/docsynth"
)

// DefaultFetchTimeout bounds each individual fetch attempt.
const DefaultFetchTimeout = 10 * time.Second

// Config controls a single crawl.
type Config struct {
	BaseURL     string
	Include     []string
	Exclude     []string
	MaxPages    int
	RateLimit   time.Duration // delay between requests of one worker
	Concurrency int
	Timeout     time.Duration // per fetch attempt; DefaultFetchTimeout if zero
}

// ConfigFromSource builds a crawl configuration from a source descriptor.
func ConfigFromSource(d *docsynth.SourceDescriptor) Config {
	return Config{
		BaseURL:     d.BaseURL,
		Include:     d.Include,
		Exclude:     d.Exclude,
		MaxPages:    d.MaxPages,
		RateLimit:   time.Duration(d.RateLimit * float64(time.Second)),
		Concurrency: d.Concurrency,
	}
}

// Validate returns EINVALID if the configuration cannot drive a crawl.
func (c Config) Validate() error {
	if !docsynth.IsAbsoluteURL(c.BaseURL) {
		return docsynth.Errorf(docsynth.EINVALID, "base_url must be an absolute http(s) URL, got %q", c.BaseURL)
	}
	if c.MaxPages <= 0 {
		return docsynth.Errorf(docsynth.EINVALID, "max_pages must be positive, got %d", c.MaxPages)
	}
	if c.RateLimit < 0 {
		return docsynth.Errorf(docsynth.EINVALID, "rate_limit must not be negative, got %s", c.RateLimit)
	}
	if c.Concurrency <= 0 {
		return docsynth.Errorf(docsynth.EINVALID, "concurrency must be positive, got %d", c.Concurrency)
	}
	return nil
}

// Crawler crawls documentation sites.
// Manifests, Sitemaps, Fallback and Store are optional.
type Crawler struct {
	Manifests   docsynth.ManifestService
	Sitemaps    docsynth.SitemapService
	Fetcher     docsynth.Fetcher
	Links       docsynth.LinkExtractor
	Extractor   docsynth.Extractor
	Fallback    docsynth.Extractor
	Converter   docsynth.Converter
	Store       docsynth.ContentStore
	Logger      *slog.Logger
	RetryDelays []time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Result holds the outcome of a crawl.
type Result struct {
	// Pages are in breadth-first discovery order.
	Pages []*docsynth.PageRecord

	Failed    int  // pages skipped after fetch or extraction errors
	Discarded int  // pages fetched after the cap was reached
	Reused    int  // pages taken from the content store
	Manifest  bool // pages came from a precompiled manifest
}

// ProgressEvent reports progress during a crawl operation.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// Crawl produces the pages of the site at cfg.BaseURL.
//
// The manifest fast-path is tried first; if no manifest parses, the site is
// crawled breadth-first from the base URL, seeded additionally from its
// sitemap when a SitemapService is configured. Individual fetch and
// extraction failures are logged and skipped. Only an invalid configuration
// or a canceled context fails the crawl.
func (c *Crawler) Crawl(ctx context.Context, cfg Config, progress ProgressFunc) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	filter, err := docsynth.NewURLFilter(cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultFetchTimeout
	}
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	if c.Manifests != nil {
		if res := c.fromManifest(ctx, cfg); res != nil {
			progress(ProgressEvent{Type: ProgressFinished, Completed: len(res.Pages), Total: len(res.Pages)})
			return res, nil
		}
	}

	scope, err := newScope(cfg.BaseURL, filter)
	if err != nil {
		return nil, err
	}

	frontier := NewFrontier()
	frontier.Push(cfg.BaseURL, 0)
	c.seedFromSitemap(ctx, cfg.BaseURL, scope, frontier)

	progress(ProgressEvent{Type: ProgressStarted, Total: cfg.MaxPages})

	w := newWalker(c, cfg, scope, frontier, progress)
	res, err := w.run(ctx)
	if err != nil {
		return nil, err
	}

	progress(ProgressEvent{Type: ProgressFinished, Completed: len(res.Pages), Total: cfg.MaxPages})
	return res, nil
}

// fromManifest returns the manifest pages capped to MaxPages, or nil when
// no manifest is available.
func (c *Crawler) fromManifest(ctx context.Context, cfg Config) *Result {
	pages, err := c.Manifests.Probe(ctx, cfg.BaseURL)
	if err != nil || len(pages) == 0 {
		c.logger().Debug("no manifest, crawling", "url", cfg.BaseURL, "err", err)
		return nil
	}

	seen := make(map[string]struct{}, len(pages))
	res := &Result{Manifest: true}
	for _, p := range pages {
		if len(res.Pages) == cfg.MaxPages {
			res.Discarded++
			continue
		}
		if _, dup := seen[p.CanonicalURL]; dup {
			c.logger().Warn("skipping duplicate manifest section", "url", p.URL)
			continue
		}
		seen[p.CanonicalURL] = struct{}{}
		res.Pages = append(res.Pages, p)
	}
	c.logger().Info("using manifest", "url", cfg.BaseURL, "pages", len(res.Pages))
	return res
}

func (c *Crawler) seedFromSitemap(ctx context.Context, baseURL string, scope *scope, frontier *Frontier) {
	if c.Sitemaps == nil {
		return
	}
	urls, err := c.Sitemaps.DiscoverURLs(ctx, baseURL, scope.filter)
	if err != nil {
		c.logger().Warn("sitemap discovery failed", "url", baseURL, "err", err)
		return
	}
	for _, u := range urls {
		if scope.contains(u) {
			frontier.Push(u, 1)
		}
	}
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

func (c *Crawler) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// visit fetches one URL and turns it into a page. Links are returned even
// when extraction fails.
func (c *Crawler) visit(ctx context.Context, cfg Config, e Entry) (*docsynth.PageRecord, []docsynth.DiscoveredLink, bool, error) {
	delays := c.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	fetch := func(ctx context.Context, url string) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
		return c.Fetcher.Fetch(ctx, url)
	}
	html, err := FetchWithRetryDelays(ctx, e.URL, fetch, c.logger(), delays)
	if err != nil {
		if docsynth.ErrorCode(err) == docsynth.EINTERNAL && !errors.Is(err, context.Canceled) {
			err = docsynth.Errorf(docsynth.EFETCH, "fetch %s: %v", e.URL, err)
		}
		return nil, nil, false, err
	}

	links, err := c.Links.ExtractLinks(html, e.URL)
	if err != nil {
		c.logger().Debug("link extraction failed", "url", e.URL, "err", err)
	}

	hash := ComputeHash(html)
	if c.Store != nil {
		if prev, ok := c.Store.Lookup(e.CanonicalURL, hash); ok {
			page := *prev
			page.URL = e.URL
			page.Depth = e.Depth
			page.DiscoveredAt = c.now()
			c.Store.Put(&page)
			return &page, links, true, nil
		}
	}

	title, markdown, err := c.extract(html)
	if err != nil {
		return nil, links, false, docsynth.Errorf(docsynth.EPARSE, "extract %s: %v", e.URL, err)
	}
	if title == "" {
		title = e.URL
	}

	page := &docsynth.PageRecord{
		URL:          e.URL,
		CanonicalURL: e.CanonicalURL,
		Title:        title,
		RawText:      markdown,
		DiscoveredAt: c.now(),
		Depth:        e.Depth,
		SourceType:   docsynth.SourceDocs,
		ContentHash:  hash,
	}
	if c.Store != nil {
		c.Store.Put(page)
	}
	return page, links, false, nil
}

// extract runs the primary extractor, then the fallback, and converts the
// content to markdown.
func (c *Crawler) extract(html string) (string, string, error) {
	extracted, err := c.Extractor.Extract(html)
	if err != nil && c.Fallback != nil {
		extracted, err = c.Fallback.Extract(html)
	}
	if err != nil {
		return "", "", err
	}
	markdown, err := c.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		return "", "", fmt.Errorf("convert: %w", err)
	}
	if strings.TrimSpace(markdown) == "" {
		return "", "", fmt.Errorf("empty content")
	}
	return extracted.Title, markdown, nil
}

// scope limits a crawl to the base URL's host and path prefix and to the
// configured filter.
type scope struct {
	host       string
	pathPrefix string
	filter     *docsynth.URLFilter
}

func newScope(baseURL string, filter *docsynth.URLFilter) (*scope, error) {
	canonical, err := docsynth.CanonicalURL(baseURL)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(canonical)
	if err != nil {
		return nil, docsynth.Errorf(docsynth.EINVALID, "invalid base URL: %v", err)
	}
	prefix := u.Path
	if prefix == "/" {
		prefix = ""
	}
	return &scope{host: u.Host, pathPrefix: prefix, filter: filter}, nil
}

func (s *scope) contains(rawURL string) bool {
	canonical, err := docsynth.CanonicalURL(rawURL)
	if err != nil {
		return false
	}
	u, err := url.Parse(canonical)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host != s.host || !s.underPrefix(u.Path) {
		return false
	}
	return s.filter.Match(canonical)
}

// underPrefix reports whether p lies under the base path at a segment
// boundary, so /docs admits /docs/intro but not /docsearch.
func (s *scope) underPrefix(p string) bool {
	return s.pathPrefix == "" || p == s.pathPrefix || strings.HasPrefix(p, s.pathPrefix+"/")
}
