package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docsynth"
)

var _ docsynth.ManifestService = (*LoggingManifestService)(nil)

// LoggingManifestService wraps a ManifestService with logging. A missing
// manifest is the common case and is logged at debug level.
type LoggingManifestService struct {
	next   docsynth.ManifestService
	logger *slog.Logger
}

// NewLoggingManifestService creates a new LoggingManifestService.
func NewLoggingManifestService(next docsynth.ManifestService, logger *slog.Logger) *LoggingManifestService {
	return &LoggingManifestService{next: next, logger: logger}
}

// Probe delegates to the wrapped service and logs the outcome.
func (s *LoggingManifestService) Probe(ctx context.Context, baseURL string) (pages []*docsynth.PageRecord, err error) {
	defer func(begin time.Time) {
		if docsynth.ErrorCode(err) == docsynth.ENOTFOUND {
			s.logger.Debug("manifest probe", "url", baseURL, "found", false, "duration", time.Since(begin))
			return
		}
		logCall(s.logger, "manifest probe", begin, err, "url", baseURL, "found", err == nil, "pages", len(pages))
	}(time.Now())
	return s.next.Probe(ctx, baseURL)
}
