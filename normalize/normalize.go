// Package normalize resolves the cross-source identity of extracted symbols.
package normalize

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/fwojciec/docsynth"
)

// IdentityRule pairs documentation of one origin with the code it
// describes. Facts of an origin without a rule keep their own identity.
type IdentityRule struct {
	From docsynth.Origin
	To   docsynth.Origin
}

// DefaultRules match both documentation origins against code.
var DefaultRules = []IdentityRule{
	{From: docsynth.OriginDoc, To: docsynth.OriginCode},
	{From: docsynth.OriginPDF, To: docsynth.OriginCode},
}

// ExactKey returns the exact identity of a fact: the lowercased fully
// qualified name and the arity. It is only derivable when the fact names
// its module.
func ExactKey(f *docsynth.RawFact) (string, bool) {
	if f.Module == "" {
		return "", false
	}
	return key(f.QualifiedName(), len(f.Params)), true
}

// LooseKey is the identity given to a fact that has no exact identity and
// no fuzzy partner.
func LooseKey(f *docsynth.RawFact) string {
	if k, ok := ExactKey(f); ok {
		return k
	}
	return key(f.Name, len(f.Params))
}

func key(name string, arity int) string {
	return strings.ToLower(name) + "#" + strconv.Itoa(arity)
}

// shortName is the case-folded name without any module prefix.
func shortName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}

// Result holds normalized records in input order, and a warning for every
// record whose fuzzy match had more than one candidate.
type Result struct {
	Records  []*docsynth.SymbolRecord
	Warnings []error
}

// Normalizer turns raw facts into symbol records.
type Normalizer struct {
	Rules  []IdentityRule // DefaultRules if nil
	Logger *slog.Logger
}

// Normalize assigns an identity to every fact.
//
// A fact whose identity equals that of a fact of its rule's target origin
// keeps it. Otherwise it is matched by name alone, ignoring case
// and module prefix; a fuzzy match takes the partner's identity and is
// marked low confidence. When several partners share the name, the one
// with equal arity wins, then the smallest identity. Facts without a
// partner keep their own identity.
func (n *Normalizer) Normalize(facts []*docsynth.RawFact) *Result {
	rules := n.Rules
	if rules == nil {
		rules = DefaultRules
	}
	targets := make(map[docsynth.Origin]*index)
	for _, r := range rules {
		if targets[r.To] == nil {
			targets[r.To] = newIndex(facts, r.To)
		}
	}

	res := &Result{Records: make([]*docsynth.SymbolRecord, 0, len(facts))}
	for _, f := range facts {
		rec := &docsynth.SymbolRecord{
			IdentityKey: LooseKey(f),
			Origin:      f.Origin,
			Name:        f.QualifiedName(),
			Signature:   f.Signature(),
			Description: f.Description,
			Examples:    f.Examples,
			Location:    f.Location,
		}
		if idx := targets[ruleTarget(rules, f.Origin)]; idx != nil {
			if err := idx.resolve(f, rec); err != nil {
				res.Warnings = append(res.Warnings, err)
				n.logger().Warn("ambiguous identity", "symbol", rec.Name, "identity", rec.IdentityKey, "err", err)
			} else if rec.LowConfidenceMatch {
				n.logger().Debug("low confidence identity", "symbol", rec.Name, "identity", rec.IdentityKey)
			}
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

func (n *Normalizer) logger() *slog.Logger {
	if n.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return n.Logger
}

func ruleTarget(rules []IdentityRule, from docsynth.Origin) docsynth.Origin {
	for _, r := range rules {
		if r.From == from {
			return r.To
		}
	}
	return ""
}

// index holds the identities of one target origin.
type index struct {
	exact  map[string]bool
	byName map[string][]candidate
}

type candidate struct {
	key   string
	arity int
}

func newIndex(facts []*docsynth.RawFact, origin docsynth.Origin) *index {
	idx := &index{exact: make(map[string]bool), byName: make(map[string][]candidate)}
	for _, f := range facts {
		if f.Origin != origin {
			continue
		}
		k := LooseKey(f)
		if idx.exact[k] {
			continue
		}
		idx.exact[k] = true
		name := shortName(f.Name)
		idx.byName[name] = append(idx.byName[name], candidate{key: k, arity: len(f.Params)})
	}
	for _, cs := range idx.byName {
		sort.Slice(cs, func(i, j int) bool { return cs[i].key < cs[j].key })
	}
	return idx
}

// resolve sets the identity of rec. It returns EAMBIGUOUS when a fuzzy
// match had to choose between several partners.
func (idx *index) resolve(f *docsynth.RawFact, rec *docsynth.SymbolRecord) error {
	if k := LooseKey(f); idx.exact[k] {
		rec.IdentityKey = k
		return nil
	}

	cs := idx.byName[shortName(f.Name)]
	if len(cs) == 0 {
		return nil
	}
	chosen := cs[0]
	for _, c := range cs {
		if c.arity == len(f.Params) {
			chosen = c
			break
		}
	}
	rec.IdentityKey = chosen.key
	rec.LowConfidenceMatch = true
	if len(cs) == 1 {
		return nil
	}
	return docsynth.Errorf(docsynth.EAMBIGUOUS, "%s matched %s by name among %d candidates", rec.Name, chosen.key, len(cs))
}
