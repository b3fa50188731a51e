package docsynth

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// Document is a named markdown document.
type Document struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// CategoryDocument aggregates the pages of one category.
type CategoryDocument struct {
	Category  string           `json:"category"`
	File      string           `json:"file"` // artifact-relative path, unique within the artifact
	PageURLs  []string         `json:"pageUrls"`
	Conflicts []ConflictRecord `json:"conflicts,omitempty"`
	Content   string           `json:"content"`
}

// ConflictAnnotation is a conflict together with the categories it was
// rendered into. Categories is empty when no category mentions the symbol.
type ConflictAnnotation struct {
	ConflictRecord
	Categories []string `json:"categories"`
}

// MergedArtifact is the output of a run.
type MergedArtifact struct {
	Index      Document             `json:"index"`
	Categories []*CategoryDocument  `json:"categories"`
	Conflicts  []ConflictAnnotation `json:"conflicts"`
}

// ArtifactWriter persists a merged artifact.
type ArtifactWriter interface {
	Write(ctx context.Context, artifact *MergedArtifact) error
}

// CategoryFile is the artifact-relative path of a category document.
func CategoryFile(category string) string {
	return "categories/" + Slug(category) + ".md"
}

// CategoryFiles returns a distinct path for every category, in order.
// Names whose slugs collide keep their order: the first gets the plain path
// and later ones a numeric suffix, as in categories/getting-started-2.md.
func CategoryFiles(categories []string) []string {
	used := make(map[string]bool, len(categories))
	files := make([]string, len(categories))
	for i, name := range categories {
		slug := Slug(name)
		candidate := slug
		for n := 2; used[candidate]; n++ {
			candidate = slug + "-" + strconv.Itoa(n)
		}
		used[candidate] = true
		files[i] = "categories/" + candidate + ".md"
	}
	return files
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a category name into a file name.
func Slug(s string) string {
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if slug == "" {
		return "category"
	}
	return slug
}
