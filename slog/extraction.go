package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docsynth"
)

var _ docsynth.SourceExtractor = (*LoggingSourceExtractor)(nil)

// LoggingSourceExtractor wraps a SourceExtractor with logging. Completed
// extractions are logged at info level since there are only a few per run.
type LoggingSourceExtractor struct {
	next   docsynth.SourceExtractor
	name   string
	logger *slog.Logger
}

// NewLoggingSourceExtractor creates a new LoggingSourceExtractor. The name
// identifies the source in log lines.
func NewLoggingSourceExtractor(next docsynth.SourceExtractor, name string, logger *slog.Logger) *LoggingSourceExtractor {
	return &LoggingSourceExtractor{next: next, name: name, logger: logger}
}

// Extract delegates to the wrapped extractor and logs what it produced.
func (s *LoggingSourceExtractor) Extract(ctx context.Context) (ext *docsynth.Extraction, err error) {
	defer func(begin time.Time) {
		if err != nil {
			s.logger.Error("extract source", "source", s.name, "duration", time.Since(begin), "err", err)
			return
		}
		s.logger.Info("extract source",
			"source", s.name,
			"type", ext.Source,
			"pages", len(ext.Pages),
			"facts", len(ext.Facts),
			"duration", time.Since(begin),
		)
	}(time.Now())
	return s.next.Extract(ctx)
}
