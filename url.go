package docsynth

import (
	"net/url"
	"strings"
)

// CanonicalURL normalizes a URL for deduplication: scheme and host are
// lowercased, the fragment is dropped, an empty path becomes "/" and a
// trailing slash is removed from any other path. Applying it twice yields
// the same result as applying it once.
func CanonicalURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", Errorf(EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	switch {
	case u.Path == "" || u.Path == "/":
		if u.Host != "" {
			u.Path = "/"
		}
	default:
		u.Path = strings.TrimRight(u.Path, "/")
		if u.Path == "" {
			u.Path = "/"
		}
	}
	u.RawPath = ""

	return u.String(), nil
}

// IsAbsoluteURL reports whether rawURL is an absolute http(s) URL with a host.
func IsAbsoluteURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
