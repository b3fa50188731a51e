// Package conflict finds discrepancies between documentation and code.
package conflict

import (
	"sort"
	"strings"

	"github.com/fwojciec/docsynth"
)

// Group is every record sharing one identity, split by side.
// Doc holds doc and pdf records, doc first.
type Group struct {
	IdentityKey   string
	Doc           []*docsynth.SymbolRecord
	Code          []*docsynth.SymbolRecord
	LowConfidence bool
}

// Rule is one row of the decision table. Match reports whether the rule
// applies to a group and, if so, which versions to show.
type Rule struct {
	Type     docsynth.ConflictType
	Severity docsynth.Severity
	Match    func(g *Group) bool
}

// DecisionTable is evaluated top to bottom; the first matching row wins
// and a group matching no row has no conflict. Signature and description
// mismatches are therefore never reported for the same group.
var DecisionTable = []Rule{
	{
		Type:     docsynth.MissingInDocs,
		Severity: docsynth.SeverityHigh,
		Match:    func(g *Group) bool { return len(g.Code) > 0 && len(g.Doc) == 0 },
	},
	{
		Type:     docsynth.MissingInCode,
		Severity: docsynth.SeverityHigh,
		Match:    func(g *Group) bool { return len(g.Doc) > 0 && len(g.Code) == 0 },
	},
	{
		Type:     docsynth.SignatureMismatch,
		Severity: docsynth.SeverityMedium,
		Match: func(g *Group) bool {
			return normalizeSpace(g.Doc[0].Signature, "") != normalizeSpace(g.Code[0].Signature, "")
		},
	},
	{
		Type:     docsynth.DescriptionMismatch,
		Severity: docsynth.SeverityLow,
		Match: func(g *Group) bool {
			doc, code := normalizeSpace(g.Doc[0].Description, " "), normalizeSpace(g.Code[0].Description, " ")
			return doc != "" && code != "" && doc != code
		},
	},
}

// LowConfidenceCap is the highest severity reported for a group whose
// identity came from a fuzzy match.
const LowConfidenceCap = docsynth.SeverityMedium

// Detect groups records by identity and classifies each group.
// Records are sorted by severity, most severe first, then by identity.
func Detect(records []*docsynth.SymbolRecord) []docsynth.ConflictRecord {
	var out []docsynth.ConflictRecord
	for _, g := range GroupRecords(records) {
		if c, ok := Classify(g); ok {
			out = append(out, c)
		}
	}
	Sort(out)
	return out
}

// GroupRecords groups records by identity key, in key order.
func GroupRecords(records []*docsynth.SymbolRecord) []*Group {
	byKey := make(map[string]*Group)
	for _, r := range records {
		g, ok := byKey[r.IdentityKey]
		if !ok {
			g = &Group{IdentityKey: r.IdentityKey}
			byKey[r.IdentityKey] = g
		}
		switch {
		case r.Origin == docsynth.OriginCode:
			g.Code = append(g.Code, r)
		case r.Origin.IsDoc():
			g.Doc = append(g.Doc, r)
		}
		if r.LowConfidenceMatch {
			g.LowConfidence = true
		}
	}

	groups := make([]*Group, 0, len(byKey))
	for _, g := range byKey {
		// Prefer doc over pdf as the documented version.
		sort.SliceStable(g.Doc, func(i, j int) bool {
			return g.Doc[i].Origin == docsynth.OriginDoc && g.Doc[j].Origin != docsynth.OriginDoc
		})
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].IdentityKey < groups[j].IdentityKey })
	return groups
}

// Classify applies the decision table to one group.
func Classify(g *Group) (docsynth.ConflictRecord, bool) {
	if len(g.Doc) == 0 && len(g.Code) == 0 {
		return docsynth.ConflictRecord{}, false
	}
	for _, rule := range DecisionTable {
		if !rule.Match(g) {
			continue
		}
		c := docsynth.ConflictRecord{
			IdentityKey:   g.IdentityKey,
			Type:          rule.Type,
			Severity:      rule.Severity,
			LowConfidence: g.LowConfidence,
		}
		if g.LowConfidence {
			c.Severity = c.Severity.Cap(LowConfidenceCap)
		}
		if len(g.Doc) > 0 {
			c.DocVersion = version(rule.Type, g.Doc[0])
		}
		if len(g.Code) > 0 {
			c.CodeVersion = version(rule.Type, g.Code[0])
		}
		return c, true
	}
	return docsynth.ConflictRecord{}, false
}

func version(t docsynth.ConflictType, r *docsynth.SymbolRecord) string {
	if t == docsynth.DescriptionMismatch {
		return r.Description
	}
	return r.Signature
}

// Sort orders conflicts by severity, most severe first, then by identity.
func Sort(conflicts []docsynth.ConflictRecord) {
	sort.SliceStable(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		return a.IdentityKey < b.IdentityKey
	})
}

// normalizeSpace collapses runs of whitespace into sep and trims the ends.
func normalizeSpace(s, sep string) string {
	return strings.Join(strings.Fields(s), sep)
}
