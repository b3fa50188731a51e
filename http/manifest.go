package http

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/docsynth"
)

// maxManifestSize bounds how much of a manifest is read.
const maxManifestSize = 32 << 20

var _ docsynth.ManifestService = (*ManifestService)(nil)

// ManifestService probes a site for a precompiled llms.txt style manifest.
// A manifest parses when it splits into at least one H1 or H2 section with
// a body; every such section becomes one page.
type ManifestService struct {
	client *http.Client

	// Now returns the discovery time of manifest pages. Defaults to time.Now.
	Now func() time.Time
}

// NewManifestService creates a ManifestService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewManifestService(client *http.Client) *ManifestService {
	if client == nil {
		client = http.DefaultClient
	}
	return &ManifestService{client: client}
}

// Probe tries docsynth.ManifestLocations under the base URL's path in order.
func (s *ManifestService) Probe(ctx context.Context, baseURL string) ([]*docsynth.PageRecord, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, docsynth.Errorf(docsynth.EINVALID, "invalid base URL: %q", baseURL)
	}
	prefix := strings.TrimSuffix(base.Path, "/")

	for _, loc := range docsynth.ManifestLocations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		u := *base
		u.Path = prefix + loc
		u.RawQuery = ""
		u.Fragment = ""

		content, err := s.fetch(ctx, u.String())
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if pages := s.parse(base, prefix, content); len(pages) > 0 {
			return pages, nil
		}
	}
	return nil, docsynth.Errorf(docsynth.ENOTFOUND, "no manifest at %s", baseURL)
}

func (s *ManifestService) fetch(ctx context.Context, manifestURL string) (string, error) {
	body, err := get(ctx, s.client, manifestURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	b, err := io.ReadAll(io.LimitReader(body, maxManifestSize))
	if err != nil {
		return "", docsynth.Errorf(docsynth.EFETCH, "read %s: %v", manifestURL, err)
	}
	return string(b), nil
}

// parse turns manifest sections into pages addressed as <base>/<anchor>.
func (s *ManifestService) parse(base *url.URL, prefix, content string) []*docsynth.PageRecord {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	var pages []*docsynth.PageRecord
	for _, sec := range docsynth.SplitSections(content, 2) {
		if strings.TrimSpace(sec.Body) == "" {
			continue
		}
		u := *base
		u.Path = prefix + "/" + sec.Anchor
		u.RawQuery = ""
		u.Fragment = ""
		canonical, err := docsynth.CanonicalURL(u.String())
		if err != nil {
			continue
		}
		pages = append(pages, &docsynth.PageRecord{
			URL:          u.String(),
			CanonicalURL: canonical,
			Title:        sec.Title,
			RawText:      strings.TrimSpace(sec.Body),
			DiscoveredAt: now(),
			SourceType:   docsynth.SourceDocs,
		})
	}
	return pages
}
