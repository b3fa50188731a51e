package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docsynth"
)

var _ docsynth.Enhancer = (*LoggingEnhancer)(nil)

// LoggingEnhancer wraps an Enhancer with logging.
type LoggingEnhancer struct {
	next   docsynth.Enhancer
	logger *slog.Logger
}

// NewLoggingEnhancer creates a new LoggingEnhancer.
func NewLoggingEnhancer(next docsynth.Enhancer, logger *slog.Logger) *LoggingEnhancer {
	return &LoggingEnhancer{next: next, logger: logger}
}

// Enhance delegates to the wrapped enhancer and logs input and output sizes.
func (e *LoggingEnhancer) Enhance(ctx context.Context, req docsynth.EnhanceRequest) (out string, err error) {
	defer func(begin time.Time) {
		logCall(e.logger, "enhance", begin, err,
			"category", req.Category,
			"entry", req.Title,
			"in", len(req.Content),
			"out", len(out),
		)
	}(time.Now())
	return e.next.Enhance(ctx, req)
}
