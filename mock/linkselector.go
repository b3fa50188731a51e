package mock

import "github.com/fwojciec/docsynth"

var _ docsynth.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of docsynth.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html string, baseURL string) ([]docsynth.DiscoveredLink, error)
}

func (l *LinkExtractor) ExtractLinks(html string, baseURL string) ([]docsynth.DiscoveredLink, error) {
	return l.ExtractLinksFn(html, baseURL)
}
