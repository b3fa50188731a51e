package docsynth

import "context"

// ManifestLocations are the site-relative paths probed, in order, for a
// precompiled documentation manifest.
var ManifestLocations = []string{"/llms-full.txt", "/llms.txt", "/llms-small.txt"}

// ManifestService looks for a precompiled documentation manifest that can
// replace crawling a site.
type ManifestService interface {
	// Probe tries each manifest location in order and returns the pages of
	// the first one that resolves and parses. Returns ENOTFOUND when no
	// location yields pages.
	Probe(ctx context.Context, baseURL string) ([]*PageRecord, error)
}
