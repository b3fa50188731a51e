package mock

import (
	"context"

	"github.com/fwojciec/docsynth"
)

var _ docsynth.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of docsynth.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *docsynth.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *docsynth.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}
