// Package goquery implements docsynth.LinkExtractor with goquery.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docsynth"
)

// Region labels the links found inside elements matching Selector.
type Region struct {
	Selector string
	Source   string
}

// DefaultRegions are checked in order; a link takes the label of the first
// region that encloses it, or "body" when none does.
var DefaultRegions = []Region{
	{Selector: `nav, [role="navigation"], .nav, .menu, .navbar`, Source: "nav"},
	{Selector: `aside, .sidebar, .toc, .table-of-contents`, Source: "sidebar"},
	{Selector: `footer, .footer`, Source: "footer"},
	{Selector: `main, article, .content, .doc-content`, Source: "content"},
}

var _ docsynth.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor extracts same-host links from any documentation framework.
type LinkExtractor struct {
	// Regions label links by the page area they were found in.
	// Defaults to DefaultRegions.
	Regions []Region
}

// NewLinkExtractor creates a LinkExtractor with DefaultRegions.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{Regions: DefaultRegions}
}

// ExtractLinks parses HTML and returns same-host links in document order.
// Each URL appears once, at its first occurrence. Fragments are stripped,
// and links back to the page itself are dropped.
func (e *LinkExtractor) ExtractLinks(html string, baseURL string) ([]docsynth.DiscoveredLink, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, docsynth.Errorf(docsynth.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, docsynth.Errorf(docsynth.EPARSE, "failed to parse HTML: %v", err)
	}

	// <base href> overrides the page URL for resolving relative links.
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(href); err == nil {
			base = base.ResolveReference(ref)
		}
	}

	regions := e.Regions
	if regions == nil {
		regions = DefaultRegions
	}

	seen := make(map[string]bool)
	var links []docsynth.DiscoveredLink
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href == "" || isNonHTTPLink(href) {
			return
		}

		resolved := resolveURL(base, href)
		if resolved == "" || seen[resolved] {
			return
		}

		// Filter external links (exact host match, subdomains are filtered)
		if !isSameHost(base, resolved) {
			return
		}

		seen[resolved] = true
		links = append(links, docsynth.DiscoveredLink{
			URL:    resolved,
			Text:   strings.Join(strings.Fields(sel.Text()), " "),
			Source: source(sel, regions),
		})
	})

	return links, nil
}

func source(sel *goquery.Selection, regions []Region) string {
	for _, r := range regions {
		if sel.Closest(r.Selector).Length() > 0 {
			return r.Source
		}
	}
	return "body"
}

// resolveURL resolves a relative URL against a base URL.
// Returns empty string if the href cannot be parsed, if the scheme is not
// http(s), or if the resolved URL is the base page itself.
// Fragments are stripped from the resolved URL for deduplication purposes.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	resolved.RawFragment = ""
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}

	result := resolved.String()
	baseNoFragment := *base
	baseNoFragment.Fragment = ""
	baseNoFragment.RawFragment = ""
	if result == baseNoFragment.String() {
		return ""
	}
	return result
}

// isSameHost checks if the resolved URL has the same host as the base URL.
// This uses exact host matching - subdomains are considered different hosts.
func isSameHost(base *url.URL, resolved string) bool {
	u, err := url.Parse(resolved)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, base.Host)
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
