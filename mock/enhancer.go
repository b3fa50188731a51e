package mock

import (
	"context"

	"github.com/fwojciec/docsynth"
)

var _ docsynth.Enhancer = (*Enhancer)(nil)

// Enhancer is a mock implementation of docsynth.Enhancer.
type Enhancer struct {
	EnhanceFn func(ctx context.Context, req docsynth.EnhanceRequest) (string, error)
}

func (e *Enhancer) Enhance(ctx context.Context, req docsynth.EnhanceRequest) (string, error) {
	return e.EnhanceFn(ctx, req)
}
