// Package repo extracts symbol facts from a source code repository. Python
// files are parsed with tree-sitter and Go files with go/parser; only public
// functions and methods are reported.
package repo

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/docsynth"
)

// DefaultInclude selects every supported source file.
var DefaultInclude = []string{"**/*.py", "**/*.go"}

// DefaultExclude skips tests, vendored code and tool directories.
var DefaultExclude = []string{
	"**/.*/**",
	"**/vendor/**",
	"**/node_modules/**",
	"**/venv/**",
	"**/__pycache__/**",
	"**/testdata/**",
	"**/*_test.go",
	"**/test_*.py",
	"**/*_test.py",
	"**/tests/**",
}

var (
	_ docsynth.SourceExtractor = (*Extractor)(nil)
	_ docsynth.Validator       = (*Extractor)(nil)
)

// Extractor is the code repository variant of docsynth.SourceExtractor.
type Extractor struct {
	Root    string
	Include []string // doublestar patterns relative to Root; DefaultInclude if empty
	Exclude []string // applied in addition to DefaultExclude
	Logger  *slog.Logger
}

// NewExtractor creates an Extractor for the repository at root.
func NewExtractor(root string, include, exclude []string) *Extractor {
	return &Extractor{Root: root, Include: include, Exclude: exclude}
}

// parser extracts the facts of one file. rel is slash-separated and
// relative to the repository root.
type parser interface {
	parse(ctx context.Context, rel string, content []byte) ([]*docsynth.RawFact, error)
}

// Extract parses every selected file. Files that fail to parse are logged
// and skipped.
func (e *Extractor) Extract(ctx context.Context) (*docsynth.Extraction, error) {
	files, err := e.Files()
	if err != nil {
		return nil, err
	}

	parsers := map[string]parser{
		".py": newPythonParser(),
		".go": goParser{},
	}

	ext := &docsynth.Extraction{Source: docsynth.SourceCode}
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, ok := parsers[path.Ext(rel)]
		if !ok {
			continue
		}

		content, err := os.ReadFile(filepath.Join(e.Root, filepath.FromSlash(rel)))
		if err != nil {
			e.logger().Warn("skipping unreadable file", "path", rel, "error", err)
			continue
		}
		facts, err := p.parse(ctx, rel, content)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.logger().Warn("skipping unparseable file", "path", rel, "error", err)
			continue
		}
		ext.Facts = append(ext.Facts, facts...)
	}
	return ext, nil
}

// Validate checks that Root is a directory and that every pattern is a
// valid glob, without walking the repository.
func (e *Extractor) Validate() error {
	info, err := os.Stat(e.Root)
	if err != nil {
		return docsynth.Errorf(docsynth.EINVALID, "repository %q: %v", e.Root, err)
	}
	if !info.IsDir() {
		return docsynth.Errorf(docsynth.EINVALID, "repository %q is not a directory", e.Root)
	}
	include, exclude := e.patterns()
	for _, p := range append(append([]string(nil), include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return docsynth.Errorf(docsynth.EINVALID, "invalid glob pattern %q", p)
		}
	}
	return nil
}

func (e *Extractor) patterns() (include, exclude []string) {
	include = e.Include
	if len(include) == 0 {
		include = DefaultInclude
	}
	exclude = append(append([]string(nil), DefaultExclude...), e.Exclude...)
	return include, exclude
}

// Files returns the selected files in lexical order, relative to Root.
func (e *Extractor) Files() ([]string, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	include, exclude := e.patterns()

	fsys := os.DirFS(e.Root)
	seen := make(map[string]bool)
	var files []string
	for _, p := range include {
		matches, err := doublestar.Glob(fsys, p, doublestar.WithFilesOnly())
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, docsynth.Errorf(docsynth.EINVALID, "glob %q: %v", p, err)
		}
		for _, m := range matches {
			if seen[m] || excluded(m, exclude) {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

func excluded(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// location formats a file position.
func location(rel string, line int) string {
	return rel + ":" + strconv.Itoa(line)
}

// firstParagraph collapses the first paragraph of a doc comment onto one
// line.
func firstParagraph(doc string) string {
	doc = strings.TrimSpace(doc)
	if i := strings.Index(doc, "\n\n"); i >= 0 {
		doc = doc[:i]
	}
	return strings.Join(strings.Fields(doc), " ")
}
