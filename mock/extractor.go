package mock

import "github.com/fwojciec/docsynth"

var _ docsynth.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of docsynth.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*docsynth.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*docsynth.ExtractResult, error) {
	return e.ExtractFn(html)
}
