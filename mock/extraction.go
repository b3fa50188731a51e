package mock

import (
	"context"

	"github.com/fwojciec/docsynth"
)

var (
	_ docsynth.SourceExtractor = (*SourceExtractor)(nil)
	_ docsynth.Validator       = (*SourceExtractor)(nil)
)

// SourceExtractor is a mock implementation of docsynth.SourceExtractor.
// A nil ValidateFn accepts the configuration.
type SourceExtractor struct {
	ExtractFn  func(ctx context.Context) (*docsynth.Extraction, error)
	ValidateFn func() error
}

func (s *SourceExtractor) Extract(ctx context.Context) (*docsynth.Extraction, error) {
	return s.ExtractFn(ctx)
}

func (s *SourceExtractor) Validate() error {
	if s.ValidateFn == nil {
		return nil
	}
	return s.ValidateFn()
}
