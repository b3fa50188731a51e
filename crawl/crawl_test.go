package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/docsynth"
	"github.com/fwojciec/docsynth/crawl"
	"github.com/fwojciec/docsynth/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedURL = "https://docs.example.com/"

// site maps a page URL to the links found on it.
type site map[string][]string

func newTestCrawler(s site) *crawl.Crawler {
	var mu sync.Mutex
	return &crawl.Crawler{
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				mu.Lock()
				defer mu.Unlock()
				if _, ok := s[url]; !ok {
					return "", docsynth.Errorf(docsynth.ENOTFOUND, "HTTP 404 for %s", url)
				}
				return "<p>" + url + "</p>", nil
			},
		},
		Links: &mock.LinkExtractor{
			ExtractLinksFn: func(_ string, baseURL string) ([]docsynth.DiscoveredLink, error) {
				mu.Lock()
				defer mu.Unlock()
				var links []docsynth.DiscoveredLink
				for _, u := range s[baseURL] {
					links = append(links, docsynth.DiscoveredLink{URL: u})
				}
				return links, nil
			},
		},
		Extractor: &mock.Extractor{
			ExtractFn: func(html string) (*docsynth.ExtractResult, error) {
				return &docsynth.ExtractResult{Title: "Page", ContentHTML: html}, nil
			},
		},
		Converter: &mock.Converter{
			ConvertFn: func(html string) (string, error) { return html, nil },
		},
		RetryDelays: []time.Duration{},
	}
}

func testConfig() crawl.Config {
	return crawl.Config{BaseURL: seedURL, MaxPages: 100, Concurrency: 3}
}

func pageURLs(pages []*docsynth.PageRecord) []string {
	urls := make([]string, len(pages))
	for i, p := range pages {
		urls[i] = p.URL
	}
	return urls
}

func numbered(prefix string, n int) []string {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("%s%d", prefix, i+1)
	}
	return urls
}

func TestCrawler_Crawl(t *testing.T) {
	t.Parallel()

	t.Run("stops at max pages in breadth-first order", func(t *testing.T) {
		t.Parallel()

		links := numbered(seedURL+"page", 10)
		s := site{seedURL: links}
		for _, u := range links {
			s[u] = nil
		}
		c := newTestCrawler(s)
		cfg := testConfig()
		cfg.MaxPages = 5

		res, err := c.Crawl(context.Background(), cfg, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{seedURL, links[0], links[1], links[2], links[3]}, pageURLs(res.Pages))
	})

	t.Run("never exceeds cap or repeats a URL on cyclic sites", func(t *testing.T) {
		t.Parallel()

		var counter atomic.Int64
		c := newTestCrawler(nil)
		c.Fetcher = &mock.Fetcher{FetchFn: func(_ context.Context, url string) (string, error) {
			return url, nil
		}}
		c.Links = &mock.LinkExtractor{ExtractLinksFn: func(_ string, _ string) ([]docsynth.DiscoveredLink, error) {
			links := []docsynth.DiscoveredLink{{URL: seedURL}}
			for range 20 {
				links = append(links, docsynth.DiscoveredLink{URL: fmt.Sprintf("%sp%d", seedURL, counter.Add(1))})
			}
			return links, nil
		}}
		cfg := testConfig()
		cfg.MaxPages = 37
		cfg.Concurrency = 8

		res, err := c.Crawl(context.Background(), cfg, nil)

		require.NoError(t, err)
		assert.Len(t, res.Pages, 37)
		seen := make(map[string]bool)
		for _, p := range res.Pages {
			assert.False(t, seen[p.CanonicalURL], "repeated %s", p.CanonicalURL)
			seen[p.CanonicalURL] = true
		}
	})

	t.Run("visits canonical duplicates once", func(t *testing.T) {
		t.Parallel()

		var fetches sync.Map
		c := newTestCrawler(nil)
		c.Fetcher = &mock.Fetcher{FetchFn: func(_ context.Context, url string) (string, error) {
			n, _ := fetches.LoadOrStore(strings.ToLower(strings.TrimSuffix(url, "/")), new(atomic.Int32))
			n.(*atomic.Int32).Add(1)
			return url, nil
		}}
		c.Links = &mock.LinkExtractor{ExtractLinksFn: func(_ string, baseURL string) ([]docsynth.DiscoveredLink, error) {
			if baseURL != seedURL {
				return nil, nil
			}
			return []docsynth.DiscoveredLink{
				{URL: "https://docs.example.com/guide"},
				{URL: "https://docs.example.com/guide/"},
				{URL: "https://DOCS.example.com/guide#install"},
				{URL: "https://docs.example.com/#top"},
			}, nil
		}}

		res, err := c.Crawl(context.Background(), testConfig(), nil)

		require.NoError(t, err)
		assert.Equal(t, []string{seedURL, "https://docs.example.com/guide"}, pageURLs(res.Pages))
		fetches.Range(func(key, value any) bool {
			assert.Equal(t, int32(1), value.(*atomic.Int32).Load(), "fetched %s more than once", key)
			return true
		})
	})

	t.Run("skips pages that fail to fetch", func(t *testing.T) {
		t.Parallel()

		s := site{
			seedURL:             {seedURL + "ok", seedURL + "missing", seedURL + "also-ok"},
			seedURL + "ok":      nil,
			seedURL + "also-ok": nil,
		}
		c := newTestCrawler(s)
		var failed []string
		progress := func(ev crawl.ProgressEvent) {
			if ev.Type == crawl.ProgressFailed {
				failed = append(failed, ev.URL)
			}
		}

		res, err := c.Crawl(context.Background(), testConfig(), progress)

		require.NoError(t, err)
		assert.Equal(t, []string{seedURL, seedURL + "ok", seedURL + "also-ok"}, pageURLs(res.Pages))
		assert.Equal(t, 1, res.Failed)
		assert.Equal(t, []string{seedURL + "missing"}, failed)
	})

	t.Run("wraps network errors as fetch errors", func(t *testing.T) {
		t.Parallel()

		c := newTestCrawler(nil)
		c.Fetcher = &mock.Fetcher{FetchFn: func(_ context.Context, _ string) (string, error) {
			return "", errors.New("connection refused")
		}}
		var got error
		progress := func(ev crawl.ProgressEvent) {
			if ev.Type == crawl.ProgressFailed {
				got = ev.Error
			}
		}

		res, err := c.Crawl(context.Background(), testConfig(), progress)

		require.NoError(t, err)
		assert.Empty(t, res.Pages)
		assert.Equal(t, docsynth.EFETCH, docsynth.ErrorCode(got))
	})

	t.Run("follows links of pages that fail extraction", func(t *testing.T) {
		t.Parallel()

		s := site{seedURL: {seedURL + "child"}, seedURL + "child": nil}
		c := newTestCrawler(s)
		c.Extractor = &mock.Extractor{ExtractFn: func(html string) (*docsynth.ExtractResult, error) {
			if strings.Contains(html, "child") {
				return &docsynth.ExtractResult{Title: "Child", ContentHTML: html}, nil
			}
			return nil, errors.New("no content")
		}}

		res, err := c.Crawl(context.Background(), testConfig(), nil)

		require.NoError(t, err)
		assert.Equal(t, []string{seedURL + "child"}, pageURLs(res.Pages))
		assert.Equal(t, 1, res.Failed)
	})

	t.Run("uses fallback extractor", func(t *testing.T) {
		t.Parallel()

		c := newTestCrawler(site{seedURL: nil})
		c.Extractor = &mock.Extractor{ExtractFn: func(string) (*docsynth.ExtractResult, error) {
			return nil, errors.New("no content")
		}}
		c.Fallback = &mock.Extractor{ExtractFn: func(html string) (*docsynth.ExtractResult, error) {
			return &docsynth.ExtractResult{Title: "Fallback", ContentHTML: html}, nil
		}}

		res, err := c.Crawl(context.Background(), testConfig(), nil)

		require.NoError(t, err)
		require.Len(t, res.Pages, 1)
		assert.Equal(t, "Fallback", res.Pages[0].Title)
	})

	t.Run("stays within host, path prefix and filters", func(t *testing.T) {
		t.Parallel()

		base := "https://docs.example.com/v2/"
		s := site{
			base: {
				"https://docs.example.com/v2/api",
				"https://docs.example.com/v1/api",
				"https://other.example.com/v2/api",
				"https://docs.example.com/v2/blog/post",
				"mailto:help@example.com",
			},
			"https://docs.example.com/v2/api":       nil,
			"https://docs.example.com/v1/api":       nil,
			"https://other.example.com/v2/api":      nil,
			"https://docs.example.com/v2/blog/post": nil,
		}
		c := newTestCrawler(s)
		cfg := testConfig()
		cfg.BaseURL = base
		cfg.Exclude = []string{`/blog/`}

		res, err := c.Crawl(context.Background(), cfg, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{base, "https://docs.example.com/v2/api"}, pageURLs(res.Pages))
	})

	t.Run("matches the path prefix at segment boundaries", func(t *testing.T) {
		t.Parallel()

		base := "https://docs.example.com/docs"
		s := site{
			base: {
				"https://docs.example.com/docsearch/query",
				"https://docs.example.com/docs-old/intro",
				"https://docs.example.com/docs/intro",
			},
			"https://docs.example.com/docsearch/query": nil,
			"https://docs.example.com/docs-old/intro":  nil,
			"https://docs.example.com/docs/intro":      nil,
		}
		c := newTestCrawler(s)
		cfg := testConfig()
		cfg.BaseURL = base

		res, err := c.Crawl(context.Background(), cfg, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{base, "https://docs.example.com/docs/intro"}, pageURLs(res.Pages))
	})

	t.Run("records depth and canonical URL", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		s := site{seedURL: {seedURL + "a/"}, seedURL + "a/": {seedURL + "a/b"}, seedURL + "a/b": nil}
		c := newTestCrawler(s)
		c.Now = func() time.Time { return now }

		res, err := c.Crawl(context.Background(), testConfig(), nil)

		require.NoError(t, err)
		require.Len(t, res.Pages, 3)
		assert.Equal(t, 0, res.Pages[0].Depth)
		assert.Equal(t, 1, res.Pages[1].Depth)
		assert.Equal(t, "https://docs.example.com/a", res.Pages[1].CanonicalURL)
		assert.Equal(t, 2, res.Pages[2].Depth)
		assert.Equal(t, now, res.Pages[2].DiscoveredAt)
		assert.Equal(t, docsynth.SourceDocs, res.Pages[2].SourceType)
		assert.NotEmpty(t, res.Pages[2].ContentHash)
	})

	t.Run("processes pages in parallel", func(t *testing.T) {
		t.Parallel()

		links := numbered(seedURL+"page", 10)
		s := site{seedURL: links}
		for _, u := range links {
			s[u] = nil
		}
		c := newTestCrawler(s)
		inner := c.Fetcher
		var current, peak atomic.Int32
		c.Fetcher = &mock.Fetcher{FetchFn: func(ctx context.Context, url string) (string, error) {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(30 * time.Millisecond)
			current.Add(-1)
			return inner.Fetch(ctx, url)
		}}

		res, err := c.Crawl(context.Background(), testConfig(), nil)

		require.NoError(t, err)
		assert.Len(t, res.Pages, 11)
		assert.GreaterOrEqual(t, peak.Load(), int32(2))
	})

	t.Run("rate limits each worker", func(t *testing.T) {
		t.Parallel()

		s := site{seedURL: {seedURL + "a", seedURL + "b"}, seedURL + "a": nil, seedURL + "b": nil}
		c := newTestCrawler(s)
		cfg := testConfig()
		cfg.Concurrency = 1
		cfg.RateLimit = 50 * time.Millisecond

		start := time.Now()
		res, err := c.Crawl(context.Background(), cfg, nil)

		require.NoError(t, err)
		assert.Len(t, res.Pages, 3)
		assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("seeds frontier from sitemap", func(t *testing.T) {
		t.Parallel()

		s := site{seedURL: nil, seedURL + "from-sitemap": nil}
		c := newTestCrawler(s)
		c.Sitemaps = &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, _ string, _ *docsynth.URLFilter) ([]string, error) {
				return []string{seedURL + "from-sitemap", "https://elsewhere.com/x"}, nil
			},
		}

		res, err := c.Crawl(context.Background(), testConfig(), nil)

		require.NoError(t, err)
		assert.Equal(t, []string{seedURL, seedURL + "from-sitemap"}, pageURLs(res.Pages))
	})

	t.Run("reuses stored pages with unchanged content", func(t *testing.T) {
		t.Parallel()

		c := newTestCrawler(site{seedURL: nil})
		c.Extractor = &mock.Extractor{ExtractFn: func(string) (*docsynth.ExtractResult, error) {
			t.Error("extractor must not run for stored pages")
			return nil, nil
		}}
		var put []*docsynth.PageRecord
		c.Store = &mock.ContentStore{
			LookupFn: func(canonicalURL, hash string) (*docsynth.PageRecord, bool) {
				assert.Equal(t, seedURL, canonicalURL)
				assert.Equal(t, crawl.ComputeHash("<p>"+seedURL+"</p>"), hash)
				return &docsynth.PageRecord{CanonicalURL: canonicalURL, Title: "Stored", RawText: "stored text", ContentHash: hash}, true
			},
			PutFn: func(p *docsynth.PageRecord) { put = append(put, p) },
		}

		res, err := c.Crawl(context.Background(), testConfig(), nil)

		require.NoError(t, err)
		require.Len(t, res.Pages, 1)
		assert.Equal(t, "Stored", res.Pages[0].Title)
		assert.Equal(t, 1, res.Reused)
		assert.Len(t, put, 1)
	})
}

func TestCrawler_Crawl_Manifest(t *testing.T) {
	t.Parallel()

	t.Run("replaces crawling when a manifest parses", func(t *testing.T) {
		t.Parallel()

		c := newTestCrawler(nil)
		c.Fetcher = &mock.Fetcher{FetchFn: func(context.Context, string) (string, error) {
			t.Error("manifest must replace crawling")
			return "", nil
		}}
		c.Manifests = &mock.ManifestService{ProbeFn: func(_ context.Context, baseURL string) ([]*docsynth.PageRecord, error) {
			assert.Equal(t, seedURL, baseURL)
			return []*docsynth.PageRecord{
				{URL: seedURL + "install", CanonicalURL: seedURL + "install"},
				{URL: seedURL + "api", CanonicalURL: seedURL + "api"},
				{URL: seedURL + "faq", CanonicalURL: seedURL + "faq"},
			}, nil
		}}
		cfg := testConfig()
		cfg.MaxPages = 2

		res, err := c.Crawl(context.Background(), cfg, nil)

		require.NoError(t, err)
		assert.True(t, res.Manifest)
		assert.Equal(t, []string{seedURL + "install", seedURL + "api"}, pageURLs(res.Pages))
		assert.Equal(t, 1, res.Discarded)
	})

	t.Run("falls back to crawling when no manifest parses", func(t *testing.T) {
		t.Parallel()

		c := newTestCrawler(site{seedURL: nil})
		c.Manifests = &mock.ManifestService{ProbeFn: func(context.Context, string) ([]*docsynth.PageRecord, error) {
			return nil, docsynth.Errorf(docsynth.ENOTFOUND, "no manifest")
		}}

		res, err := c.Crawl(context.Background(), testConfig(), nil)

		require.NoError(t, err)
		assert.False(t, res.Manifest)
		assert.Equal(t, []string{seedURL}, pageURLs(res.Pages))
	})
}

func TestCrawler_Crawl_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(cfg *crawl.Config)
	}{
		{"relative base url", func(cfg *crawl.Config) { cfg.BaseURL = "/docs" }},
		{"zero max pages", func(cfg *crawl.Config) { cfg.MaxPages = 0 }},
		{"negative rate limit", func(cfg *crawl.Config) { cfg.RateLimit = -time.Second }},
		{"zero concurrency", func(cfg *crawl.Config) { cfg.Concurrency = 0 }},
		{"bad pattern", func(cfg *crawl.Config) { cfg.Include = []string{"("} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestCrawler(nil)
			c.Fetcher = &mock.Fetcher{FetchFn: func(context.Context, string) (string, error) {
				t.Error("no fetch may happen before validation")
				return "", nil
			}}
			cfg := testConfig()
			tt.mutate(&cfg)

			_, err := c.Crawl(context.Background(), cfg, nil)

			assert.Equal(t, docsynth.EINVALID, docsynth.ErrorCode(err))
		})
	}
}

func TestCrawler_Crawl_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	c := newTestCrawler(nil)
	c.Fetcher = &mock.Fetcher{FetchFn: func(ctx context.Context, _ string) (string, error) {
		cancel()
		<-ctx.Done()
		return "", ctx.Err()
	}}

	_, err := c.Crawl(ctx, testConfig(), nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigFromSource(t *testing.T) {
	t.Parallel()

	cfg := crawl.ConfigFromSource(&docsynth.SourceDescriptor{
		BaseURL:     seedURL,
		Include:     []string{"a"},
		Exclude:     []string{"b"},
		MaxPages:    7,
		RateLimit:   0.25,
		Concurrency: 2,
	})

	assert.Equal(t, seedURL, cfg.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.RateLimit)
	assert.Equal(t, 7, cfg.MaxPages)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, []string{"a"}, cfg.Include)
	assert.Equal(t, []string{"b"}, cfg.Exclude)
}
