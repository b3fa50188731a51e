package http

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/docsynth"
)

var _ docsynth.SitemapService = (*SitemapService)(nil)

// DefaultMaxSitemaps bounds the sitemap files read for one site, counting
// nested index entries.
const DefaultMaxSitemaps = 50

// SitemapService discovers page URLs from a site's sitemaps.
type SitemapService struct {
	client *http.Client

	// MaxSitemaps overrides DefaultMaxSitemaps when positive.
	MaxSitemaps int
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client}
}

// DiscoverURLs returns the page URLs listed by the sitemaps of baseURL's
// host, in sitemap order without duplicates. Sitemaps are taken from
// robots.txt, or /sitemap.xml when robots.txt names none. Gzipped sitemaps
// are decompressed.
//
// Only URLs under baseURL's path that pass filter are returned. A site
// without sitemaps yields an empty slice. A listed sitemap that cannot be
// fetched or parsed is reported as EFETCH or EPARSE.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *docsynth.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, docsynth.Errorf(docsynth.EINVALID, "invalid base URL: %v", err)
	}
	root := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/"}

	queue, fallback, err := s.entryPoints(ctx, root)
	if err != nil {
		return nil, err
	}

	limit := s.MaxSitemaps
	if limit <= 0 {
		limit = DefaultMaxSitemaps
	}

	urls := []string{}
	seenURL := make(map[string]bool)
	seenMap := make(map[string]bool)
	for len(queue) > 0 && len(seenMap) < limit {
		loc := queue[0]
		queue = queue[1:]
		if seenMap[loc] {
			continue
		}
		seenMap[loc] = true

		el, err := s.readSitemap(ctx, loc)
		if err != nil {
			if fallback && docsynth.ErrorCode(err) == docsynth.ENOTFOUND {
				return urls, nil
			}
			return nil, err
		}

		if el.Tag == "sitemapindex" {
			queue = append(queue, locs(el, "sitemap")...)
			continue
		}
		for _, u := range locs(el, "url") {
			if seenURL[u] || !matchesPathPrefix(u, base.Path) || !filter.Match(u) {
				continue
			}
			seenURL[u] = true
			urls = append(urls, u)
		}
	}
	return urls, nil
}

// entryPoints returns the sitemaps named by robots.txt. When there are
// none it returns /sitemap.xml with fallback set, meaning its absence is
// not an error.
func (s *SitemapService) entryPoints(ctx context.Context, root *url.URL) ([]string, bool, error) {
	body, err := get(ctx, s.client, root.JoinPath("robots.txt").String())
	if err == nil {
		defer body.Close()
		if maps := robotsSitemaps(body); len(maps) > 0 {
			return maps, false, nil
		}
	} else if ctx.Err() != nil {
		return nil, false, ctx.Err()
	}
	return []string{root.JoinPath("sitemap.xml").String()}, true, nil
}

// robotsSitemaps returns the values of the Sitemap directives in r.
func robotsSitemaps(r io.Reader) []string {
	var maps []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "sitemap") {
			continue
		}
		if value = strings.TrimSpace(value); value != "" {
			maps = append(maps, value)
		}
	}
	return maps
}

// readSitemap fetches a sitemap and returns its root element.
func (s *SitemapService) readSitemap(ctx context.Context, loc string) (*etree.Element, error) {
	body, err := get(ctx, s.client, loc)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, docsynth.Errorf(docsynth.EFETCH, "read sitemap %s: %v", loc, err)
	}
	if bytes.HasPrefix(data, []byte{0x1f, 0x8b}) {
		if data, err = gunzip(data); err != nil {
			return nil, docsynth.Errorf(docsynth.EPARSE, "decompress sitemap %s: %v", loc, err)
		}
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, docsynth.Errorf(docsynth.EPARSE, "parse sitemap %s: %v", loc, err)
	}
	el := doc.Root()
	if el == nil || (el.Tag != "urlset" && el.Tag != "sitemapindex") {
		return nil, docsynth.Errorf(docsynth.EPARSE, "%s is not a sitemap", loc)
	}
	return el, nil
}

func gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// locs returns the non-empty <loc> values of el's children named tag.
func locs(el *etree.Element, tag string) []string {
	var out []string
	for _, child := range el.SelectElements(tag) {
		if loc := child.SelectElement("loc"); loc != nil {
			if v := strings.TrimSpace(loc.Text()); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// matchesPathPrefix reports whether rawURL's path lies under prefix at a
// segment boundary, so /docs matches /docs/intro but not /documentation.
// An empty or root prefix matches everything.
func matchesPathPrefix(rawURL, prefix string) bool {
	if prefix == "" || prefix == "/" {
		return true
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if !strings.HasSuffix(prefix, "/") {
		if parsed.Path == prefix {
			return true
		}
		prefix += "/"
	}
	return strings.HasPrefix(parsed.Path, prefix)
}
