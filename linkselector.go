package docsynth

// DiscoveredLink is a same-host link found on a page.
type DiscoveredLink struct {
	URL    string
	Text   string
	Source string // "nav", "sidebar", "content", "footer", "body"
}

// LinkExtractor extracts links from HTML.
type LinkExtractor interface {
	// ExtractLinks parses HTML and returns same-host links in document
	// order, each URL at most once. The baseURL resolves relative links.
	ExtractLinks(html string, baseURL string) ([]DiscoveredLink, error)
}
