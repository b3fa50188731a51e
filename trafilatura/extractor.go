// Package trafilatura implements the primary docsynth.Extractor.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/docsynth"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements docsynth.Extractor at compile time.
var _ docsynth.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
// Documentation pages keep their tables and in-text links.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{opts: trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		IncludeLinks:    true,
	}}
}

// Extract processes raw HTML and returns the main content. A page without
// recognizable main content is reported as EPARSE.
func (e *Extractor) Extract(rawHTML string) (*docsynth.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, docsynth.Errorf(docsynth.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, docsynth.Errorf(docsynth.EPARSE, "trafilatura: %v", err)
	}
	if result.ContentNode == nil {
		return nil, docsynth.Errorf(docsynth.EPARSE, "trafilatura: no main content")
	}

	contentHTML, err := renderNode(result.ContentNode)
	if err != nil {
		return nil, docsynth.Errorf(docsynth.EPARSE, "render content: %v", err)
	}

	return &docsynth.ExtractResult{
		Title:       strings.TrimSpace(result.Metadata.Title),
		ContentHTML: contentHTML,
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
