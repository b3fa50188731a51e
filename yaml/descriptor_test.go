package yaml_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/docsynth"
	"github.com/fwojciec/docsynth/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDescriptor(t *testing.T) {
	t.Parallel()

	t.Run("reads every field", func(t *testing.T) {
		t.Parallel()

		data := []byte(`
name: mylib
base_url: https://docs.example.com/
include: ["^/docs/"]
exclude: ["/changelog"]
max_pages: 50
rate_limit: 1.5
concurrency: 2
repo:
  path: ./src
  include: ["**/*.py"]
  exclude: ["**/gen_*.py"]
pdf: manual.pdf
categories:
  api: [reference, endpoint]
  guides: [tutorial]
merge_mode: ai-enhanced
`)

		d, err := yaml.ParseDescriptor(data)

		require.NoError(t, err)
		assert.Equal(t, &docsynth.SourceDescriptor{
			Name:        "mylib",
			BaseURL:     "https://docs.example.com/",
			Include:     []string{"^/docs/"},
			Exclude:     []string{"/changelog"},
			MaxPages:    50,
			RateLimit:   1.5,
			Concurrency: 2,
			RepoPath:    "./src",
			RepoInclude: []string{"**/*.py"},
			RepoExclude: []string{"**/gen_*.py"},
			PDFPath:     "manual.pdf",
			Categories: docsynth.CategoryMap{
				"api":    {"reference", "endpoint"},
				"guides": {"tutorial"},
			},
			MergeMode: docsynth.MergeAIEnhanced,
		}, d)
	})

	t.Run("applies defaults for absent keys", func(t *testing.T) {
		t.Parallel()

		d, err := yaml.ParseDescriptor([]byte("name: mylib\nbase_url: https://docs.example.com/\n"))

		require.NoError(t, err)
		assert.Equal(t, docsynth.DefaultMaxPages, d.MaxPages)
		assert.InDelta(t, docsynth.DefaultRateLimit, d.RateLimit, 0.0001)
		assert.Equal(t, docsynth.DefaultConcurrency, d.Concurrency)
		assert.Equal(t, docsynth.MergeRuleBased, d.MergeMode)
	})

	t.Run("keeps explicit zero so validation rejects it", func(t *testing.T) {
		t.Parallel()

		d, err := yaml.ParseDescriptor([]byte("name: mylib\nbase_url: https://docs.example.com/\nmax_pages: 0\n"))

		require.NoError(t, err)
		assert.Equal(t, 0, d.MaxPages)
		err = d.Validate()
		require.Error(t, err)
		assert.Equal(t, docsynth.EINVALID, docsynth.ErrorCode(err))
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.ParseDescriptor([]byte("name: mylib\nbase_uri: https://docs.example.com/\n"))

		require.Error(t, err)
		assert.Equal(t, docsynth.EINVALID, docsynth.ErrorCode(err))
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.ParseDescriptor([]byte("name: [unterminated\n"))

		require.Error(t, err)
		assert.Equal(t, docsynth.EINVALID, docsynth.ErrorCode(err))
	})

	t.Run("rejects empty document", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.ParseDescriptor(nil)

		require.Error(t, err)
		assert.Equal(t, docsynth.EINVALID, docsynth.ErrorCode(err))
		assert.Contains(t, docsynth.ErrorMessage(err), "empty")
	})
}

func TestLoadDescriptor(t *testing.T) {
	t.Parallel()

	t.Run("resolves paths relative to the descriptor", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "mylib.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: mylib\nrepo:\n  path: src\npdf: docs/manual.pdf\n"), 0644))

		d, err := yaml.LoadDescriptor(path)

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "src"), d.RepoPath)
		assert.Equal(t, filepath.Join(dir, "docs", "manual.pdf"), d.PDFPath)
	})

	t.Run("validates the descriptor", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: mylib\nbase_url: not-a-url\n"), 0644))

		_, err := yaml.LoadDescriptor(path)

		require.Error(t, err)
		assert.Equal(t, docsynth.EINVALID, docsynth.ErrorCode(err))
		assert.Contains(t, docsynth.ErrorMessage(err), "base_url")
	})

	t.Run("missing file is invalid", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.LoadDescriptor(filepath.Join(t.TempDir(), "missing.yaml"))

		require.Error(t, err)
		assert.Equal(t, docsynth.EINVALID, docsynth.ErrorCode(err))
	})
}
