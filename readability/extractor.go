// Package readability implements the fallback docsynth.Extractor, used when
// the primary extractor finds no main content.
package readability

import (
	"strings"

	"github.com/fwojciec/docsynth"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements docsynth.Extractor at compile time.
var _ docsynth.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*docsynth.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, docsynth.Errorf(docsynth.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, docsynth.Errorf(docsynth.EPARSE, "readability: %v", err)
	}
	if strings.TrimSpace(article.TextContent) == "" {
		return nil, docsynth.Errorf(docsynth.EPARSE, "readability: no readable content")
	}

	return &docsynth.ExtractResult{
		Title:       strings.TrimSpace(article.Title),
		ContentHTML: article.Content,
	}, nil
}
