package mock

import "github.com/fwojciec/docsynth"

var _ docsynth.Converter = (*Converter)(nil)

// Converter is a mock implementation of docsynth.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
