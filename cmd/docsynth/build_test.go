package main_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/docsynth"
	main "github.com/fwojciec/docsynth/cmd/docsynth"
	"github.com/fwojciec/docsynth/crawl"
	"github.com/fwojciec/docsynth/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// site maps a page URL to its HTML.
type site map[string]string

func newTestCrawler(s site) *crawl.Crawler {
	var mu sync.Mutex
	return &crawl.Crawler{
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				mu.Lock()
				defer mu.Unlock()
				html, ok := s[url]
				if !ok {
					return "", docsynth.Errorf(docsynth.ENOTFOUND, "HTTP 404 for %s", url)
				}
				return html, nil
			},
		},
		Links: &mock.LinkExtractor{
			ExtractLinksFn: func(_ string, baseURL string) ([]docsynth.DiscoveredLink, error) {
				if baseURL != "https://docs.example.com/" {
					return nil, nil
				}
				return []docsynth.DiscoveredLink{{URL: "https://docs.example.com/api"}}, nil
			},
		},
		Extractor: &mock.Extractor{
			ExtractFn: func(html string) (*docsynth.ExtractResult, error) {
				return &docsynth.ExtractResult{Title: "Page", ContentHTML: html}, nil
			},
		},
		Converter: &mock.Converter{
			ConvertFn: func(html string) (string, error) { return html, nil },
		},
		RetryDelays: []time.Duration{},
	}
}

func testSite() site {
	return site{
		"https://docs.example.com/":    "# Getting started\n\nInstall the package.",
		"https://docs.example.com/api": "# API reference\n\n`parse(data: str) -> dict`\n\nParses a document.",
	}
}

func writeDescriptor(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "lib.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func testDeps(stdout, stderr *bytes.Buffer) *main.Dependencies {
	return &main.Dependencies{
		Ctx:     context.Background(),
		Stdout:  stdout,
		Stderr:  stderr,
		Logger:  slog.New(slog.DiscardHandler),
		Crawler: newTestCrawler(testSite()),
	}
}

func TestBuildCmd(t *testing.T) {
	t.Parallel()

	t.Run("writes artifact of a docs source", func(t *testing.T) {
		t.Parallel()

		descriptor := writeDescriptor(t, `name: lib
base_url: https://docs.example.com/
rate_limit: 0
categories:
  api: [reference, parse]
`)
		out := filepath.Join(t.TempDir(), "out")
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		cmd := &main.BuildCmd{Descriptor: descriptor, Out: out, Timeout: time.Second}
		err := cmd.Run(testDeps(stdout, stderr))

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), `Built "lib"`)
		assert.Contains(t, stdout.String(), "docs  2 pages")
		assert.FileExists(t, filepath.Join(out, "index.md"))
		assert.FileExists(t, filepath.Join(out, "categories", "api.md"))
		assert.FileExists(t, filepath.Join(out, "conflicts.json"))
	})

	t.Run("ai-enhanced without enhancer fails with hint", func(t *testing.T) {
		t.Parallel()

		descriptor := writeDescriptor(t, `name: lib
base_url: https://docs.example.com/
merge_mode: ai-enhanced
`)
		out := filepath.Join(t.TempDir(), "out")
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		cmd := &main.BuildCmd{Descriptor: descriptor, Out: out}
		err := cmd.Run(testDeps(stdout, stderr))

		require.Error(t, err)
		assert.Equal(t, docsynth.EINVALID, docsynth.ErrorCode(err))
		assert.Contains(t, stderr.String(), "GEMINI_API_KEY")
		assert.NoDirExists(t, out)
	})

	t.Run("enhances entries", func(t *testing.T) {
		t.Parallel()

		descriptor := writeDescriptor(t, `name: lib
base_url: https://docs.example.com/
rate_limit: 0
merge_mode: ai-enhanced
`)
		out := filepath.Join(t.TempDir(), "out")
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := testDeps(stdout, stderr)
		deps.Enhancer = &mock.Enhancer{
			EnhanceFn: func(_ context.Context, req docsynth.EnhanceRequest) (string, error) {
				return req.Content, nil
			},
		}

		cmd := &main.BuildCmd{Descriptor: descriptor, Out: out}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "entries enhanced")
	})

	t.Run("missing file is reported", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		cmd := &main.BuildCmd{Descriptor: filepath.Join(t.TempDir(), "missing.yaml"), Out: t.TempDir()}
		err := cmd.Run(testDeps(stdout, stderr))

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error:")
	})
}
