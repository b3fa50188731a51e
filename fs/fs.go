// Package fs writes run output to disk. Every writer stages its files in a
// temporary sibling directory and moves it into place on commit, so readers
// never see a partially written directory.
package fs

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/docsynth"
)

// staging is a directory written under <dir>.tmp and renamed to <dir>.
type staging struct {
	dir string
}

func (s staging) tempDir() string {
	return s.dir + ".tmp"
}

// writeFile writes a file relative to the staging directory, rejecting
// paths that escape it.
func (s staging) writeFile(relPath string, data []byte) error {
	fullPath := filepath.Join(s.tempDir(), relPath)
	if !strings.HasPrefix(fullPath, filepath.Clean(s.tempDir())+string(filepath.Separator)) {
		return docsynth.Errorf(docsynth.EINVALID, "path traversal in %q", relPath)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, data, 0644)
}

func (s staging) commit() error {
	// Remove existing final directory if present
	if err := os.RemoveAll(s.dir); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.dir)
}

func (s staging) abort() error {
	return os.RemoveAll(s.tempDir())
}

// URLToPath converts a documentation URL to a relative file path.
// Example: https://example.com/docs/api/users → docs/api/users.md
// PDF page URLs (pdf://guide.pdf#page-3) map to guide/page-3.md.
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	path := u.Path
	if u.Scheme == "pdf" {
		name := strings.TrimSuffix(u.Host+u.Path, filepath.Ext(u.Host+u.Path))
		page := u.Fragment
		if page == "" {
			page = "index"
		}
		return strings.TrimPrefix(name, "/") + "/" + page + ".md", nil
	}

	// Handle root or trailing slash → index.md
	if path == "" || path == "/" {
		return "index.md", nil
	}

	// Remove leading slash
	path = strings.TrimPrefix(path, "/")

	// Trailing slash becomes index.md in that directory
	if strings.HasSuffix(path, "/") {
		return path + "index.md", nil
	}

	// Otherwise append .md
	return path + ".md", nil
}
