package fs

import (
	"strings"

	"github.com/fwojciec/docsynth"
)

// PageWriter dumps crawled pages as markdown files mirroring their URL
// paths. Pages are saved to <dir>.tmp and moved to <dir> on Commit.
type PageWriter struct {
	staging
}

// NewPageWriter creates a PageWriter for the given output directory.
func NewPageWriter(dir string) *PageWriter {
	return &PageWriter{staging{dir: dir}}
}

// Save writes one page.
func (w *PageWriter) Save(page *docsynth.PageRecord) error {
	relPath, err := URLToPath(page.URL)
	if err != nil {
		return docsynth.Errorf(docsynth.EINVALID, "invalid page URL %q: %v", page.URL, err)
	}
	return w.writeFile(relPath, []byte(FormatPage(page)))
}

// Commit moves the saved pages into place, replacing any previous output.
func (w *PageWriter) Commit() error {
	return w.commit()
}

// Abort discards the saved pages.
func (w *PageWriter) Abort() error {
	return w.abort()
}

// FormatPage formats a page with YAML frontmatter.
func FormatPage(page *docsynth.PageRecord) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(page.URL)
	b.WriteString("\ntitle: ")
	b.WriteString(page.Title)
	b.WriteString("\ntype: ")
	b.WriteString(string(page.SourceType))
	b.WriteString("\ncrawled: ")
	b.WriteString(page.DiscoveredAt.Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	b.WriteString(page.RawText)
	return b.String()
}
