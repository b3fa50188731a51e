package docsynth

import "context"

// Extraction is everything one source contributed to a run.
type Extraction struct {
	Source SourceType
	Pages  []*PageRecord
	Facts  []*RawFact
}

// SourceExtractor turns one configured source into pages and symbol facts.
// Variants exist for documentation sites, code repositories and PDFs.
type SourceExtractor interface {
	Extract(ctx context.Context) (*Extraction, error)
}

// Validator is implemented by source extractors that can check their
// configuration, such as paths and patterns, before any source runs.
// Validate returns EINVALID for a configuration that can never succeed.
type Validator interface {
	Validate() error
}
