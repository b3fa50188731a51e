// Package merge renders the final artifact of a run from categorized pages
// and detected conflicts.
package merge

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/fwojciec/docsynth"
	"golang.org/x/sync/errgroup"
)

// Defaults for ai-enhanced merging.
const (
	DefaultConcurrency  = 4
	DefaultEntryTimeout = 60 * time.Second
)

// Input is everything the engine merges.
type Input struct {
	Name        string
	Pages       []*docsynth.PageRecord
	Assignments []docsynth.CategoryAssignment
	Symbols     []*docsynth.SymbolRecord
	Conflicts   []docsynth.ConflictRecord // sorted as produced by conflict.Detect
}

// Report is the outcome of a merge.
type Report struct {
	Artifact *docsynth.MergedArtifact

	Entries   int // entries rendered into category documents
	Enhanced  int // entries rewritten by the enhancer
	Fallbacks int // entries that fell back to rule-based rendering
}

// Engine merges inputs into a docsynth.MergedArtifact.
//
// In rule-based mode the output is a pure function of the input. In
// ai-enhanced mode every entry is rewritten by the Enhancer; an entry whose
// call fails or times out keeps its rule-based rendering, and the merge
// still succeeds.
type Engine struct {
	Mode         docsynth.MergeMode
	Enhancer     docsynth.Enhancer
	TokenCounter docsynth.TokenCounter // optional, adds token estimates to the index
	Concurrency  int
	EntryTimeout time.Duration
	Logger       *slog.Logger
}

// Merge renders the artifact.
func (e *Engine) Merge(ctx context.Context, in *Input) (*Report, error) {
	switch e.Mode {
	case docsynth.MergeRuleBased:
	case docsynth.MergeAIEnhanced:
		if e.Enhancer == nil {
			return nil, docsynth.Errorf(docsynth.EINVALID, "ai-enhanced merge requires an enhancer")
		}
	default:
		return nil, docsynth.Errorf(docsynth.EINVALID, "unknown merge mode %q", e.Mode)
	}

	categories := groupPages(in.Pages, in.Assignments)
	annotations := mapConflicts(in.Conflicts, categories)

	var entries []*entry
	names := make([]string, len(categories))
	for i, cat := range categories {
		names[i] = cat.name
	}
	files := docsynth.CategoryFiles(names)

	docs := make([]*docsynth.CategoryDocument, len(categories))
	for i, cat := range categories {
		doc := &docsynth.CategoryDocument{Category: cat.name, File: files[i]}
		for _, p := range cat.pages {
			doc.PageURLs = append(doc.PageURLs, p.URL)
			entries = append(entries, &entry{doc: i, title: p.Title, rendered: RenderPage(p)})
		}
		for _, a := range annotations {
			if slices.Contains(a.Categories, cat.name) {
				doc.Conflicts = append(doc.Conflicts, a.ConflictRecord)
				entries = append(entries, &entry{doc: i, title: a.IdentityKey, rendered: RenderConflict(a.ConflictRecord), conflict: true})
			}
		}
		docs[i] = doc
	}

	report := &Report{Entries: len(entries)}
	if e.Mode == docsynth.MergeAIEnhanced {
		report.Enhanced, report.Fallbacks = e.enhance(ctx, docs, entries)
	} else {
		for _, en := range entries {
			en.final = en.rendered
		}
	}

	for i, doc := range docs {
		doc.Content = renderCategory(doc.Category, entries, i)
	}

	report.Artifact = &docsynth.MergedArtifact{
		Index:      docsynth.Document{Name: "index.md", Content: e.renderIndex(ctx, in, docs, annotations)},
		Categories: docs,
		Conflicts:  annotations,
	}
	return report, nil
}

// entry is one independently rendered block of a category document.
type entry struct {
	doc      int
	title    string
	rendered string
	final    string
	conflict bool
}

func (e *Engine) enhance(ctx context.Context, docs []*docsynth.CategoryDocument, entries []*entry) (enhanced, fallbacks int) {
	concurrency := e.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	timeout := e.EntryTimeout
	if timeout <= 0 {
		timeout = DefaultEntryTimeout
	}

	ok := make([]bool, len(entries))
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, en := range entries {
		g.Go(func() error {
			ectx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			out, err := e.Enhancer.Enhance(ectx, docsynth.EnhanceRequest{
				Category: docs[en.doc].Category,
				Title:    en.title,
				Content:  en.rendered,
			})
			if err == nil && strings.TrimSpace(out) == "" {
				err = fmt.Errorf("empty response")
			}
			if err != nil {
				err = docsynth.Errorf(docsynth.ECOLLABORATOR, "enhance %q: %v", en.title, err)
				e.logger().Warn("enhancement failed, using rule-based rendering", "entry", en.title, "err", err)
				en.final = en.rendered
				return nil
			}
			en.final = strings.TrimSpace(out)
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	for _, v := range ok {
		if v {
			enhanced++
		} else {
			fallbacks++
		}
	}
	return enhanced, fallbacks
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

type category struct {
	name  string
	pages []*docsynth.PageRecord
}

// groupPages collects the pages of every assigned category, keeping page
// order. Categories are sorted by name with docsynth.OtherCategory last.
func groupPages(pages []*docsynth.PageRecord, assignments []docsynth.CategoryAssignment) []*category {
	byURL := make(map[string]*docsynth.PageRecord, len(pages))
	order := make(map[string]int, len(pages))
	for i, p := range pages {
		byURL[p.URL] = p
		order[p.URL] = i
	}

	byName := make(map[string]*category)
	seen := make(map[string]bool)
	for _, a := range assignments {
		p, ok := byURL[a.PageURL]
		if !ok || seen[a.Category+"\x00"+a.PageURL] {
			continue
		}
		seen[a.Category+"\x00"+a.PageURL] = true
		c, ok := byName[a.Category]
		if !ok {
			c = &category{name: a.Category}
			byName[a.Category] = c
		}
		c.pages = append(c.pages, p)
	}

	out := make([]*category, 0, len(byName))
	for _, c := range byName {
		sort.SliceStable(c.pages, func(i, j int) bool { return order[c.pages[i].URL] < order[c.pages[j].URL] })
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].name, out[j].name
		if (a == docsynth.OtherCategory) != (b == docsynth.OtherCategory) {
			return b == docsynth.OtherCategory
		}
		return a < b
	})
	return out
}

// mapConflicts annotates each conflict with the categories whose pages
// mention the symbol's short name as a whole word.
func mapConflicts(conflicts []docsynth.ConflictRecord, categories []*category) []docsynth.ConflictAnnotation {
	out := make([]docsynth.ConflictAnnotation, len(conflicts))
	for i, c := range conflicts {
		out[i] = docsynth.ConflictAnnotation{ConflictRecord: c, Categories: []string{}}
		name := SymbolName(c.IdentityKey)
		if name == "" {
			continue
		}
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
		for _, cat := range categories {
			for _, p := range cat.pages {
				if re.MatchString(p.RawText) {
					out[i].Categories = append(out[i].Categories, cat.name)
					break
				}
			}
		}
	}
	return out
}

// SymbolName returns the short symbol name of an identity key, so
// "lib.io.parse#1" yields "parse".
func SymbolName(identityKey string) string {
	name := identityKey
	if i := strings.LastIndex(name, "#"); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
