package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/docsynth"
	"github.com/fwojciec/docsynth/crawl"
	"github.com/fwojciec/docsynth/fs"
	"github.com/fwojciec/docsynth/pdf"
	"github.com/fwojciec/docsynth/repo"
	"github.com/fwojciec/docsynth/sqlite"
	"github.com/fwojciec/docsynth/synth"
	"github.com/fwojciec/docsynth/yaml"
)

// Run executes the build command.
func (c *BuildCmd) Run(deps *Dependencies) error {
	d, err := yaml.LoadDescriptor(c.Descriptor)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsynth.ErrorMessage(err))
		return err
	}

	if d.MergeMode == docsynth.MergeAIEnhanced && deps.Enhancer == nil {
		fmt.Fprintln(deps.Stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
	}

	builder := &synth.Builder{
		DocSource: func(d *docsynth.SourceDescriptor, store docsynth.ContentStore) docsynth.SourceExtractor {
			crawler := *deps.Crawler
			crawler.Store = store
			cfg := crawl.ConfigFromSource(d)
			cfg.Timeout = c.Timeout
			return &crawl.DocSource{
				Crawler:  &crawler,
				Config:   cfg,
				Progress: deps.progress(printProgress(deps)),
			}
		},
		RepoSource: func(d *docsynth.SourceDescriptor) docsynth.SourceExtractor {
			ext := repo.NewExtractor(d.RepoPath, d.RepoInclude, d.RepoExclude)
			ext.Logger = deps.Logger
			return ext
		},
		PDFSource: func(d *docsynth.SourceDescriptor) docsynth.SourceExtractor {
			ext := pdf.NewExtractor(d.PDFPath)
			ext.Logger = deps.Logger
			return ext
		},
		Enhancer:     deps.Enhancer,
		TokenCounter: deps.TokenCounter,
		Writer:       fs.NewArtifactWriter(c.Out),
		Logger:       deps.Logger,
	}
	if deps.Crawler == nil {
		builder.DocSource = nil
	}
	if deps.DB != nil {
		builder.Store = func(source string) docsynth.ContentStore {
			return sqlite.NewContentStore(deps.DB, source)
		}
	}

	report, err := builder.Build(deps.Ctx, d)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsynth.ErrorMessage(err))
		return err
	}

	if deps.Metrics != nil {
		deps.Metrics.ObserveMerge(report.Merge)
		deps.Metrics.ObserveBuild(report.Duration)
	}

	printReport(deps, d, report, c.Out)
	return nil
}

func printReport(deps *Dependencies, d *docsynth.SourceDescriptor, report *synth.Report, out string) {
	fmt.Fprintf(deps.Stdout, "Built %q in %s\n", d.Name, report.Duration.Round(time.Millisecond))
	for _, src := range report.Sources {
		if src.Err != nil {
			fmt.Fprintf(deps.Stdout, "  %-5s skipped: %s\n", src.Source, docsynth.ErrorMessage(src.Err))
			continue
		}
		fmt.Fprintf(deps.Stdout, "  %-5s %d pages, %d facts\n", src.Source, src.Pages, src.Facts)
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(deps.Stderr, "  warning: %s\n", docsynth.ErrorMessage(w))
	}

	m := report.Merge
	fmt.Fprintf(deps.Stdout, "  %d symbols, %d conflicts, %d categories\n",
		report.Symbols, len(m.Artifact.Conflicts), len(m.Artifact.Categories))
	if m.Enhanced > 0 || m.Fallbacks > 0 {
		fmt.Fprintf(deps.Stdout, "  %d entries enhanced, %d fell back to rule-based\n", m.Enhanced, m.Fallbacks)
	}
	fmt.Fprintf(deps.Stdout, "Wrote %s\n", out)
}

// progress wraps fn with metric recording when metrics are enabled.
func (deps *Dependencies) progress(fn crawl.ProgressFunc) crawl.ProgressFunc {
	if deps.Metrics == nil {
		return fn
	}
	return deps.Metrics.Progress(fn)
}

func printProgress(deps *Dependencies) crawl.ProgressFunc {
	return func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "  Crawling up to %d pages\n", event.Total)
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", crawl.TruncateURL(event.URL, 80), event.Error)
		}
	}
}
