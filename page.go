package docsynth

import (
	"context"
	"time"
)

// SourceType identifies the kind of source a record came from.
type SourceType string

// Supported source types.
const (
	SourceDocs SourceType = "docs"
	SourceCode SourceType = "code"
	SourcePDF  SourceType = "pdf"
)

// PageRecord is a single fetched or extracted page of documentation.
// A PageRecord is never modified once produced.
type PageRecord struct {
	URL          string     `json:"url"`
	CanonicalURL string     `json:"canonicalUrl"`
	Title        string     `json:"title"`
	RawText      string     `json:"rawText"` // Markdown
	DiscoveredAt time.Time  `json:"discoveredAt"`
	Depth        int        `json:"depth"`
	SourceType   SourceType `json:"sourceType"`
	ContentHash  string     `json:"contentHash,omitempty"`
}

// ContentStore is a content-addressed store of previously extracted pages,
// keyed by canonical URL and content hash. It is loaded once at run start,
// read and written concurrently during the run, and persisted at run end.
// Lookup and Put never perform I/O.
type ContentStore interface {
	// Load reads the stored entries into memory.
	Load(ctx context.Context) error

	// Lookup returns the stored page for a canonical URL whose content hash
	// matches. Returns false if the URL is unknown or its content changed.
	Lookup(canonicalURL, contentHash string) (*PageRecord, bool)

	// Put records a page for persistence at the end of the run.
	Put(page *PageRecord)

	// Persist writes the entries recorded during the run.
	Persist(ctx context.Context) error
}
