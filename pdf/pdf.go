// Package pdf extracts pages and documented signatures from PDF files.
package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/docsynth"
	"github.com/ledongthuc/pdf"
)

var (
	_ docsynth.SourceExtractor = (*Extractor)(nil)
	_ docsynth.Validator       = (*Extractor)(nil)
)

// Extractor is the PDF variant of docsynth.SourceExtractor. Every page with
// text becomes one PageRecord addressed as pdf://<file>#page-<n>.
type Extractor struct {
	Path   string
	Logger *slog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewExtractor creates an Extractor for the PDF at path.
func NewExtractor(path string) *Extractor {
	return &Extractor{Path: path}
}

// Validate checks that Path names a regular file.
func (e *Extractor) Validate() error {
	info, err := os.Stat(e.Path)
	if err != nil {
		return docsynth.Errorf(docsynth.EINVALID, "pdf %q: %v", e.Path, err)
	}
	if info.IsDir() {
		return docsynth.Errorf(docsynth.EINVALID, "pdf %q is a directory", e.Path)
	}
	return nil
}

// PageURL returns the address of a page of the named file.
func PageURL(file string, page int) string {
	return "pdf://" + filepath.Base(file) + "#page-" + strconv.Itoa(page)
}

// Extract reads every page. Pages without text and pages that fail to
// decode are skipped.
func (e *Extractor) Extract(ctx context.Context) (*docsynth.Extraction, error) {
	f, r, err := pdf.Open(e.Path)
	if err != nil {
		return nil, docsynth.Errorf(docsynth.EINVALID, "open pdf %q: %v", e.Path, err)
	}
	defer f.Close()

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}

	ext := &docsynth.Extraction{Source: docsynth.SourcePDF}
	seen := make(map[string]bool)
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger().Warn("skipping unreadable pdf page", "path", e.Path, "page", i, "error", err)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		url := PageURL(e.Path, i)
		ext.Pages = append(ext.Pages, &docsynth.PageRecord{
			URL:          url,
			CanonicalURL: url,
			Title:        title(text, filepath.Base(e.Path), i),
			RawText:      text,
			DiscoveredAt: now(),
			SourceType:   docsynth.SourcePDF,
			ContentHash:  fmt.Sprintf("%x", xxhash.Sum64String(text)),
		})

		for _, fact := range docsynth.ScanFacts(text, docsynth.OriginPDF, url) {
			k := strings.ToLower(fact.QualifiedName()) + "#" + strconv.Itoa(len(fact.Params))
			if seen[k] {
				continue
			}
			seen[k] = true
			ext.Facts = append(ext.Facts, fact)
		}
	}

	if len(ext.Pages) == 0 {
		e.logger().Warn("no text extracted from pdf", "path", e.Path, "pages", r.NumPage())
	}
	return ext, nil
}

// title is the first line of the page, or "<file> page <n>" when that line
// is too long to be a heading.
func title(text, file string, page int) string {
	line, _, _ := strings.Cut(text, "\n")
	line = strings.TrimSpace(line)
	if line == "" || len(line) > 80 {
		return file + " page " + strconv.Itoa(page)
	}
	return line
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.New(slog.DiscardHandler)
}
