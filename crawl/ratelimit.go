package crawl

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// WorkerLimiter spaces the requests of a single worker. Every worker owns
// its own limiter, so waiting never blocks other workers.
type WorkerLimiter struct {
	limiter *rate.Limiter
}

// NewWorkerLimiter creates a limiter allowing one request per delay, with
// no bursting. The first request is allowed immediately. A zero delay
// disables limiting.
func NewWorkerLimiter(delay time.Duration) *WorkerLimiter {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &WorkerLimiter{limiter: rate.NewLimiter(limit, 1)}
}

// Wait blocks until the next request is allowed.
// Returns an error if the context is canceled before the wait completes.
func (l *WorkerLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
