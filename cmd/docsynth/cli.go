package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/docsynth"
	"github.com/fwojciec/docsynth/crawl"
	dsprom "github.com/fwojciec/docsynth/prometheus"
	"github.com/fwojciec/docsynth/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx          context.Context
	Stdout       io.Writer
	Stderr       io.Writer
	Logger       *slog.Logger
	DB           *sqlite.DB
	Crawler      *crawl.Crawler
	Enhancer     docsynth.Enhancer
	TokenCounter docsynth.TokenCounter
	Metrics      *dsprom.Metrics // nil unless --metrics-file is set
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose     bool   `short:"v" help:"Log debug output"`
	MetricsFile string `name:"metrics-file" type:"path" help:"Write Prometheus metrics to this file on exit"`

	Build BuildCmd `cmd:"" help:"Build the merged artifact of a source descriptor"`
	Crawl CrawlCmd `cmd:"" help:"Crawl a documentation site and show how its pages categorize"`
	Runs  RunsCmd  `cmd:"" help:"List persisted crawl runs of a source"`
}

// BuildCmd is the "build" subcommand.
type BuildCmd struct {
	Descriptor string        `arg:"" type:"existingfile" help:"Source descriptor (YAML)"`
	Out        string        `short:"o" default:"out" type:"path" help:"Artifact directory"`
	Render     bool          `short:"r" help:"Render pages in a headless browser"`
	Timeout    time.Duration `default:"10s" help:"Per-page fetch timeout"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URL         string            `arg:"" help:"Documentation base URL"`
	MaxPages    int               `short:"n" default:"500" help:"Maximum pages to keep"`
	Concurrency int               `short:"c" default:"4" help:"Concurrent fetch limit"`
	RateLimit   float64           `default:"0.5" help:"Seconds between requests of one worker"`
	Include     []string          `short:"i" help:"Only crawl URLs matching this regex (repeatable)"`
	Exclude     []string          `short:"x" help:"Skip URLs matching this regex (repeatable)"`
	Categories  map[string]string `name:"category" help:"Category and comma-separated keywords, e.g. api=reference,function (repeatable)"`
	Out         string            `short:"o" type:"path" help:"Save pages as markdown under this directory"`
	Render      bool              `short:"r" help:"Render pages in a headless browser"`
	Timeout     time.Duration     `default:"10s" help:"Per-page fetch timeout"`
}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct {
	Source string `arg:"" help:"Source name"`
	Limit  int    `short:"n" default:"10" help:"Maximum runs to show (0 for all)"`
}
