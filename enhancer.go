package docsynth

import "context"

// EnhanceRequest is one entry of a category document handed to an
// external writer for rewriting.
type EnhanceRequest struct {
	Category string
	Title    string

	// Content is the deterministic rendering of the entry. It is used
	// verbatim if enhancement fails.
	Content string
}

// Enhancer rewrites a rendered entry into final prose.
type Enhancer interface {
	Enhance(ctx context.Context, req EnhanceRequest) (string, error)
}
