package docsynth

import (
	"sort"
	"strings"
)

// OtherCategory receives every page no category claims.
const OtherCategory = "other"

// CategoryMap maps a category name to its keywords.
type CategoryMap map[string][]string

// Validate returns EINVALID for an empty category name, the reserved name
// "other", a category without keywords or a blank keyword, and for two
// names that would share a category file.
func (m CategoryMap) Validate() error {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	slugs := map[string]string{Slug(OtherCategory): OtherCategory}
	for _, name := range names {
		keywords := m[name]
		if strings.TrimSpace(name) == "" {
			return Errorf(EINVALID, "category name must not be empty")
		}
		if strings.EqualFold(name, OtherCategory) {
			return Errorf(EINVALID, "category name %q is reserved", OtherCategory)
		}
		if prev, ok := slugs[Slug(name)]; ok {
			return Errorf(EINVALID, "categories %q and %q would share file %s", prev, name, CategoryFile(name))
		}
		slugs[Slug(name)] = name
		if len(keywords) == 0 {
			return Errorf(EINVALID, "category %q has no keywords", name)
		}
		for _, kw := range keywords {
			if strings.TrimSpace(kw) == "" {
				return Errorf(EINVALID, "category %q has a blank keyword", name)
			}
		}
	}
	return nil
}

// CategoryAssignment places a page in a category.
type CategoryAssignment struct {
	PageURL      string   `json:"pageUrl"`
	Category     string   `json:"category"`
	Score        int      `json:"score"`
	MatchedTerms []string `json:"matchedTerms"`
}
