package crawl

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ComputeHash returns the content hash the crawler keys stored pages by: the
// xxhash of content as 16 hex digits.
func ComputeHash(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

// TruncateURL shortens a URL for display to at most maxLen bytes, keeping
// its tail.
func TruncateURL(url string, maxLen int) string {
	switch {
	case maxLen <= 0:
		return ""
	case len(url) <= maxLen:
		return url
	case maxLen < 4:
		return url[:maxLen]
	}
	return "..." + url[len(url)-maxLen+3:]
}

// Summary describes a crawl result in one line. Zero counters are left out.
func Summary(res *Result) string {
	pages := plural(len(res.Pages), "page")
	if res.Manifest {
		return pages + " from manifest"
	}

	var details []string
	for _, c := range []struct {
		n    int
		what string
	}{{res.Reused, "reused"}, {res.Failed, "failed"}, {res.Discarded, "discarded"}} {
		if c.n > 0 {
			details = append(details, fmt.Sprintf("%d %s", c.n, c.what))
		}
	}
	if len(details) == 0 {
		return pages
	}
	return pages + " (" + strings.Join(details, ", ") + ")"
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
