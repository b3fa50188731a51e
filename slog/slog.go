// Package slog provides logging decorators for docsynth services. Each
// decorator logs one line per call, with its duration and error, and
// delegates to the wrapped implementation.
package slog

import (
	"log/slog"
	"time"
)

// logCall logs a completed call at debug level, or at warn level when it
// failed.
func logCall(logger *slog.Logger, msg string, begin time.Time, err error, args ...any) {
	args = append(args, "duration", time.Since(begin))
	if err != nil {
		logger.Warn(msg, append(args, "err", err)...)
		return
	}
	logger.Debug(msg, args...)
}
