package docsynth

import "fmt"

// Defaults applied by descriptor loaders when a field is absent.
const (
	DefaultMaxPages    = 500
	DefaultConcurrency = 4
	DefaultRateLimit   = 0.5
)

// MergeMode selects the merge policy.
type MergeMode string

// Supported merge modes.
const (
	MergeRuleBased  MergeMode = "rule-based"
	MergeAIEnhanced MergeMode = "ai-enhanced"
)

// SourceDescriptor describes everything one run synthesizes: a documentation
// site, a code repository and a PDF, any of which may be omitted as long as
// one is present.
type SourceDescriptor struct {
	Name string `json:"name"`

	// Documentation site.
	BaseURL     string   `json:"baseUrl"`
	Include     []string `json:"include"`
	Exclude     []string `json:"exclude"`
	MaxPages    int      `json:"maxPages"`
	RateLimit   float64  `json:"rateLimit"` // seconds between requests per worker
	Concurrency int      `json:"concurrency"`

	// Code repository.
	RepoPath    string   `json:"repoPath"`
	RepoInclude []string `json:"repoInclude"`
	RepoExclude []string `json:"repoExclude"`

	// PDF extract.
	PDFPath string `json:"pdfPath"`

	Categories CategoryMap `json:"categories"`
	MergeMode  MergeMode   `json:"mergeMode"`
}

// Validate returns EINVALID if the descriptor cannot drive a run.
// It performs no I/O and is meant to run before any crawling starts.
func (d *SourceDescriptor) Validate() error {
	if d.Name == "" {
		return Errorf(EINVALID, "source name required")
	}
	if d.BaseURL == "" && d.RepoPath == "" && d.PDFPath == "" {
		return Errorf(EINVALID, "source %q has no base_url, repo or pdf", d.Name)
	}
	if d.BaseURL != "" {
		if !IsAbsoluteURL(d.BaseURL) {
			return Errorf(EINVALID, "base_url must be an absolute http(s) URL, got %q", d.BaseURL)
		}
		if d.MaxPages <= 0 {
			return Errorf(EINVALID, "max_pages must be positive, got %d", d.MaxPages)
		}
		if d.RateLimit < 0 {
			return Errorf(EINVALID, "rate_limit must not be negative, got %v", d.RateLimit)
		}
		if d.Concurrency <= 0 {
			return Errorf(EINVALID, "concurrency must be positive, got %d", d.Concurrency)
		}
		if _, err := NewURLFilter(d.Include, d.Exclude); err != nil {
			return err
		}
	}
	if err := d.Categories.Validate(); err != nil {
		return err
	}
	switch d.MergeMode {
	case MergeRuleBased, MergeAIEnhanced:
	default:
		return Errorf(EINVALID, "unknown merge mode %q", d.MergeMode)
	}
	return nil
}

// String implements fmt.Stringer for log output.
func (d *SourceDescriptor) String() string {
	return fmt.Sprintf("%s (docs=%q repo=%q pdf=%q)", d.Name, d.BaseURL, d.RepoPath, d.PDFPath)
}
