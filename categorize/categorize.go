// Package categorize assigns pages to categories by keyword scoring.
// Everything here is a pure function of its inputs.
package categorize

import (
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/fwojciec/docsynth"
)

// Scoring weights and limits.
const (
	URLWeight   = 3
	TitleWeight = 2
	BodyWeight  = 1

	// MinScore is the lowest score that keeps an assignment.
	MinScore = 2

	// BodyPrefix is how many characters of the body are searched.
	BodyPrefix = 500
)

// Rule is one row of the rule table. Keywords are lowercase and distinct.
type Rule struct {
	Category string
	Keywords []string
}

// RuleTable is an ordered set of category rules.
type RuleTable []Rule

// NewRuleTable validates a category map and turns it into a rule table
// ordered by category name.
func NewRuleTable(m docsynth.CategoryMap) (RuleTable, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	table := make(RuleTable, 0, len(m))
	for name, keywords := range m {
		seen := make(map[string]bool, len(keywords))
		rule := Rule{Category: name}
		for _, kw := range keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if !seen[kw] {
				seen[kw] = true
				rule.Keywords = append(rule.Keywords, kw)
			}
		}
		table = append(table, rule)
	}
	sort.Slice(table, func(i, j int) bool { return table[i].Category < table[j].Category })
	return table, nil
}

// Categorize scores a page against every rule and returns the assignments
// scoring at least MinScore, highest score first and then by name. An
// empty table infers a category from the URL path instead. A page nothing
// claims is assigned to docsynth.OtherCategory, so the result is never
// empty.
func Categorize(page *docsynth.PageRecord, table RuleTable) []docsynth.CategoryAssignment {
	var out []docsynth.CategoryAssignment
	if len(table) == 0 {
		if a, ok := infer(page); ok {
			out = append(out, a)
		}
	} else {
		out = score(page, table)
	}

	if len(out) == 0 {
		return []docsynth.CategoryAssignment{{PageURL: page.URL, Category: docsynth.OtherCategory}}
	}
	return out
}

// CategorizeAll categorizes every page, preserving page order.
func CategorizeAll(pages []*docsynth.PageRecord, table RuleTable) []docsynth.CategoryAssignment {
	var out []docsynth.CategoryAssignment
	for _, p := range pages {
		out = append(out, Categorize(p, table)...)
	}
	return out
}

func score(page *docsynth.PageRecord, table RuleTable) []docsynth.CategoryAssignment {
	u := strings.ToLower(page.URL)
	title := strings.ToLower(page.Title)
	body := strings.ToLower(prefix(page.RawText, BodyPrefix))

	var out []docsynth.CategoryAssignment
	for _, rule := range table {
		a := docsynth.CategoryAssignment{PageURL: page.URL, Category: rule.Category}
		for _, kw := range rule.Keywords {
			matched := false
			if strings.Contains(u, kw) {
				a.Score += URLWeight
				matched = true
			}
			if strings.Contains(title, kw) {
				a.Score += TitleWeight
				matched = true
			}
			if strings.Contains(body, kw) {
				a.Score += BodyWeight
				matched = true
			}
			if matched {
				a.MatchedTerms = append(a.MatchedTerms, kw)
			}
		}
		if a.Score >= MinScore {
			out = append(out, a)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// prefix returns the first n characters of s.
func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// StopSegments are path segments that never name a category.
var StopSegments = map[string]bool{
	"docs":       true,
	"doc":        true,
	"en":         true,
	"en-us":      true,
	"latest":     true,
	"stable":     true,
	"main":       true,
	"master":     true,
	"index":      true,
	"index.html": true,
}

var versionSegmentRe = regexp.MustCompile(`^v?\d+(\.\d+)*$`)

// infer derives a category from the first meaningful URL path segment.
func infer(page *docsynth.PageRecord) (docsynth.CategoryAssignment, bool) {
	u, err := url.Parse(page.URL)
	if err != nil {
		return docsynth.CategoryAssignment{}, false
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		seg = strings.ToLower(seg)
		if i == len(segments)-1 {
			// The last segment names the page itself unless it is the only one.
			if len(segments) > 1 {
				break
			}
			seg = strings.TrimSuffix(seg, path.Ext(seg))
		}
		if seg == "" || StopSegments[seg] || versionSegmentRe.MatchString(seg) {
			continue
		}
		return docsynth.CategoryAssignment{
			PageURL:      page.URL,
			Category:     seg,
			Score:        URLWeight,
			MatchedTerms: []string{seg},
		}, true
	}
	return docsynth.CategoryAssignment{}, false
}
