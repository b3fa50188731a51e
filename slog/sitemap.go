package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docsynth"
)

// Ensure LoggingSitemapService implements docsynth.SitemapService.
var _ docsynth.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService wraps a SitemapService with logging.
type LoggingSitemapService struct {
	next   docsynth.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next docsynth.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverURLs delegates to the wrapped service and logs the operation.
func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *docsynth.URLFilter) (urls []string, err error) {
	defer func(begin time.Time) {
		logCall(s.logger, "sitemap discovery", begin, err, "url", baseURL, "count", len(urls))
	}(time.Now())
	return s.next.DiscoverURLs(ctx, baseURL, filter)
}
