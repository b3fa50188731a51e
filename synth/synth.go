// Package synth builds the merged artifact of one source descriptor: it
// extracts every configured source, resolves symbol identities, detects
// conflicts, categorizes pages and merges the result.
package synth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/docsynth"
	"github.com/fwojciec/docsynth/categorize"
	"github.com/fwojciec/docsynth/conflict"
	"github.com/fwojciec/docsynth/merge"
	"github.com/fwojciec/docsynth/normalize"
	dsslog "github.com/fwojciec/docsynth/slog"
)

// Builder runs the whole pipeline for a descriptor.
//
// The source constructors are called only for the kinds a descriptor
// configures; a descriptor naming a kind whose constructor is nil is
// invalid.
type Builder struct {
	DocSource  func(d *docsynth.SourceDescriptor, store docsynth.ContentStore) docsynth.SourceExtractor
	RepoSource func(d *docsynth.SourceDescriptor) docsynth.SourceExtractor
	PDFSource  func(d *docsynth.SourceDescriptor) docsynth.SourceExtractor

	// Store returns the content store of the named source, or nil to crawl
	// without reuse.
	Store func(source string) docsynth.ContentStore

	Enhancer     docsynth.Enhancer     // required for ai-enhanced merges
	TokenCounter docsynth.TokenCounter // optional
	Writer       docsynth.ArtifactWriter
	Logger       *slog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Report summarizes a build.
type Report struct {
	Sources  []SourceReport
	Symbols  int
	Warnings []error // identities fuzzy matched among several candidates
	Merge    *merge.Report
	Duration time.Duration
}

// SourceReport is what one source contributed. Err is set when the source
// failed and contributed nothing.
type SourceReport struct {
	Source docsynth.SourceType
	Pages  int
	Facts  int
	Err    error
}

type source struct {
	kind docsynth.SourceType
	ext  docsynth.SourceExtractor
}

// Build validates the descriptor, runs every source and writes the
// artifact.
//
// An invalid descriptor fails before any source runs and nothing is
// written. A source that fails for any other reason is logged and skipped,
// so the artifact is still complete for the remaining sources.
func (b *Builder) Build(ctx context.Context, d *docsynth.SourceDescriptor) (*Report, error) {
	begin := b.now()

	table, sources, err := b.prepare(d)
	if err != nil {
		return nil, err
	}

	var store docsynth.ContentStore
	if d.BaseURL != "" && b.Store != nil {
		store = b.Store(d.Name)
	}
	if store != nil {
		if err := store.Load(ctx); err != nil {
			return nil, fmt.Errorf("load content store: %w", err)
		}
	}

	report := &Report{}
	var (
		pages []*docsynth.PageRecord
		facts []*docsynth.RawFact
	)
	for _, src := range sources {
		ext := src.ext
		if src.kind == docsynth.SourceDocs {
			ext = b.DocSource(d, store)
		}
		ext = dsslog.NewLoggingSourceExtractor(ext, string(src.kind), b.logger())

		res, err := ext.Extract(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if docsynth.ErrorCode(err) == docsynth.EINVALID {
				return nil, err
			}
			report.Sources = append(report.Sources, SourceReport{Source: src.kind, Err: err})
			continue
		}
		report.Sources = append(report.Sources, SourceReport{Source: src.kind, Pages: len(res.Pages), Facts: len(res.Facts)})
		pages = append(pages, res.Pages...)
		facts = append(facts, res.Facts...)
	}

	normalized := (&normalize.Normalizer{Logger: b.Logger}).Normalize(facts)
	report.Symbols = len(normalized.Records)
	report.Warnings = normalized.Warnings
	conflicts := conflict.Detect(normalized.Records)
	assignments := categorize.CategorizeAll(pages, table)

	engine := &merge.Engine{
		Mode:         d.MergeMode,
		Enhancer:     b.Enhancer,
		TokenCounter: b.TokenCounter,
		Logger:       b.Logger,
	}
	report.Merge, err = engine.Merge(ctx, &merge.Input{
		Name:        d.Name,
		Pages:       pages,
		Assignments: assignments,
		Symbols:     normalized.Records,
		Conflicts:   conflicts,
	})
	if err != nil {
		return nil, err
	}

	if store != nil {
		if err := store.Persist(ctx); err != nil {
			b.logger().Warn("content store not persisted", "source", d.Name, "err", err)
		}
	}

	if err := b.Writer.Write(ctx, report.Merge.Artifact); err != nil {
		return nil, fmt.Errorf("write artifact: %w", err)
	}

	report.Duration = b.now().Sub(begin)
	b.logger().Info("build complete",
		"source", d.Name,
		"categories", len(report.Merge.Artifact.Categories),
		"conflicts", len(report.Merge.Artifact.Conflicts),
		"duration", report.Duration,
	)
	return report, nil
}

// prepare checks the descriptor and the configuration of every non-crawl
// source, and returns the rule table and the sources to run, documentation
// first.
func (b *Builder) prepare(d *docsynth.SourceDescriptor) (categorize.RuleTable, []source, error) {
	if err := d.Validate(); err != nil {
		return nil, nil, err
	}
	table, err := categorize.NewRuleTable(d.Categories)
	if err != nil {
		return nil, nil, err
	}
	if d.MergeMode == docsynth.MergeAIEnhanced && b.Enhancer == nil {
		return nil, nil, docsynth.Errorf(docsynth.EINVALID, "merge mode %q requires an enhancer", d.MergeMode)
	}
	if b.Writer == nil {
		return nil, nil, errors.New("builder has no artifact writer")
	}

	var sources []source
	if d.BaseURL != "" {
		if b.DocSource == nil {
			return nil, nil, docsynth.Errorf(docsynth.EINVALID, "documentation sites are not supported")
		}
		sources = append(sources, source{kind: docsynth.SourceDocs})
	}
	if d.RepoPath != "" {
		if b.RepoSource == nil {
			return nil, nil, docsynth.Errorf(docsynth.EINVALID, "code repositories are not supported")
		}
		sources = append(sources, source{kind: docsynth.SourceCode, ext: b.RepoSource(d)})
	}
	if d.PDFPath != "" {
		if b.PDFSource == nil {
			return nil, nil, docsynth.Errorf(docsynth.EINVALID, "pdf extracts are not supported")
		}
		sources = append(sources, source{kind: docsynth.SourcePDF, ext: b.PDFSource(d)})
	}
	for _, src := range sources {
		if v, ok := src.ext.(docsynth.Validator); ok {
			if err := v.Validate(); err != nil {
				return nil, nil, err
			}
		}
	}
	return table, sources, nil
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}
