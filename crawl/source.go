package crawl

import (
	"context"

	"github.com/fwojciec/docsynth"
)

var _ docsynth.SourceExtractor = (*DocSource)(nil)

// DocSource is the documentation-site variant of docsynth.SourceExtractor.
// It crawls the site and scans every page for documented signatures.
type DocSource struct {
	Crawler  *Crawler
	Config   Config
	Progress ProgressFunc

	// Result is set after Extract returns successfully.
	Result *Result
}

// Extract crawls the configured site.
func (s *DocSource) Extract(ctx context.Context) (*docsynth.Extraction, error) {
	res, err := s.Crawler.Crawl(ctx, s.Config, s.Progress)
	if err != nil {
		return nil, err
	}
	s.Result = res

	ext := &docsynth.Extraction{Source: docsynth.SourceDocs, Pages: res.Pages}
	for _, p := range res.Pages {
		ext.Facts = append(ext.Facts, docsynth.ScanFacts(p.RawText, docsynth.OriginDoc, p.URL)...)
	}
	return ext, nil
}
