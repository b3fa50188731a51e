package mock

import (
	"context"

	"github.com/fwojciec/docsynth"
)

var _ docsynth.ManifestService = (*ManifestService)(nil)

// ManifestService is a mock implementation of docsynth.ManifestService.
type ManifestService struct {
	ProbeFn func(ctx context.Context, baseURL string) ([]*docsynth.PageRecord, error)
}

func (s *ManifestService) Probe(ctx context.Context, baseURL string) ([]*docsynth.PageRecord, error) {
	return s.ProbeFn(ctx, baseURL)
}
