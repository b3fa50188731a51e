package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	charmlog "github.com/charmbracelet/log"
	"github.com/fwojciec/docsynth"
	"github.com/fwojciec/docsynth/crawl"
	"github.com/fwojciec/docsynth/gemini"
	"github.com/fwojciec/docsynth/goquery"
	"github.com/fwojciec/docsynth/htmltomarkdown"
	dshttp "github.com/fwojciec/docsynth/http"
	dsprom "github.com/fwojciec/docsynth/prometheus"
	"github.com/fwojciec/docsynth/readability"
	"github.com/fwojciec/docsynth/rod"
	dsslog "github.com/fwojciec/docsynth/slog"
	"github.com/fwojciec/docsynth/sqlite"
	"github.com/fwojciec/docsynth/trafilatura"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database holding the content store.
	DB *sqlite.DB

	// GeminiAPIKey enables ai-enhanced merges. Defaults to $GEMINI_API_KEY.
	GeminiAPIKey string
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:       defaultDBPath(),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docsynth"),
		kong.Description("Synthesize one documentation artifact from docs sites, code and PDFs"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docsynth --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	deps.Logger = newLogger(stderr, cli.Verbose)
	if cli.MetricsFile != "" {
		deps.Metrics = dsprom.NewMetrics()
		defer func() {
			if werr := deps.Metrics.WriteToTextfile(cli.MetricsFile); werr != nil {
				err = errors.Join(err, fmt.Errorf("write metrics: %w", werr))
			}
		}()
	}

	if cmd == "build" || cmd == "runs" {
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set DOCSYNTH_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		}
		defer m.Close()
		deps.DB = m.DB
	}

	switch cmd {
	case "build":
		closeFn, err := m.wireCrawler(deps, cli.Build.Render, cli.Build.Timeout)
		if err != nil {
			return err
		}
		defer closeFn()

		if m.GeminiAPIKey != "" {
			client, err := genai.NewClient(ctx, &genai.ClientConfig{
				APIKey:  m.GeminiAPIKey,
				Backend: genai.BackendGeminiAPI,
			})
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
				return fmt.Errorf("failed to connect to Gemini API: %w", err)
			}
			deps.Enhancer = dsslog.NewLoggingEnhancer(gemini.NewEnhancer(client), deps.Logger)

			tokenCounter, err := gemini.NewTokenCounter(gemini.DefaultModel)
			if err != nil {
				deps.Logger.Warn("token estimates disabled", "err", err)
			} else {
				deps.TokenCounter = tokenCounter
			}
		}

	case "crawl":
		closeFn, err := m.wireCrawler(deps, cli.Crawl.Render, cli.Crawl.Timeout)
		if err != nil {
			return err
		}
		defer closeFn()
	}

	return kongCtx.Run(deps)
}

// wireCrawler builds the crawler shared by build and crawl. Pages are
// fetched over plain HTTP unless render is set, in which case a headless
// browser executes their scripts first.
func (m *Main) wireCrawler(deps *Dependencies, render bool, timeout time.Duration) (func(), error) {
	logger := deps.Logger
	closeFn := func() {}

	var fetcher docsynth.Fetcher = dshttp.NewFetcher(dshttp.WithTimeout(timeout))
	if render {
		rodFetcher, err := rod.NewFetcher(rod.WithFetchTimeout(timeout))
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed")
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		fetcher = rodFetcher
		closeFn = func() { _ = rodFetcher.Close() }
	}

	deps.Crawler = &crawl.Crawler{
		Manifests: dsslog.NewLoggingManifestService(dshttp.NewManifestService(nil), logger),
		Sitemaps:  dsslog.NewLoggingSitemapService(dshttp.NewSitemapService(nil), logger),
		Fetcher:   dsslog.NewLoggingFetcher(fetcher, logger),
		Links:     goquery.NewLinkExtractor(),
		Extractor: trafilatura.NewExtractor(),
		Fallback:  readability.NewExtractor(),
		Converter: htmltomarkdown.NewConverter(),
		Logger:    logger,
	}
	return closeFn, nil
}

// newLogger returns a slog.Logger writing human-readable lines to w.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := charmlog.InfoLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	return slog.New(charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		ReportTimestamp: true,
	}))
}

func defaultDBPath() string {
	if path := os.Getenv("DOCSYNTH_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "docsynth.db"
	}
	dir := filepath.Join(home, ".docsynth")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "docsynth.db")
}
