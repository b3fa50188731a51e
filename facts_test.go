package docsynth_test

import (
	"testing"

	"github.com/fwojciec/docsynth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanFacts(t *testing.T) {
	t.Parallel()

	t.Run("finds arrow signature in heading with following description", func(t *testing.T) {
		t.Parallel()

		text := "## API\n\n### `parse(path) -> list`\n\nParses the file at path.\n"

		facts := docsynth.ScanFacts(text, docsynth.OriginDoc, "https://docs.example.com/api")

		require.Len(t, facts, 1)
		f := facts[0]
		assert.Equal(t, "parse", f.Name)
		assert.Empty(t, f.Module)
		assert.Equal(t, []docsynth.Param{{Name: "path"}}, f.Params)
		assert.Equal(t, "list", f.Returns)
		assert.Equal(t, "Parses the file at path.", f.Description)
		assert.Equal(t, docsynth.OriginDoc, f.Origin)
		assert.Equal(t, "https://docs.example.com/api", f.Location)
	})

	t.Run("finds python def in fenced block with preceding description", func(t *testing.T) {
		t.Parallel()

		text := "Loads a config\nfrom disk.\n\n```python\ndef mylib.load(path: str, strict: bool = False) -> Dict[str, int]:\n    ...\n```\n"

		facts := docsynth.ScanFacts(text, docsynth.OriginPDF, "manual.pdf#page-2")

		require.Len(t, facts, 1)
		f := facts[0]
		assert.Equal(t, "mylib", f.Module)
		assert.Equal(t, "load", f.Name)
		assert.Equal(t, []docsynth.Param{{Name: "path", Type: "str"}, {Name: "strict", Type: "bool"}}, f.Params)
		assert.Equal(t, "Dict[str, int]", f.Returns)
		assert.Equal(t, "Loads a config from disk.", f.Description)
	})

	t.Run("drops self and ignores calls", func(t *testing.T) {
		t.Parallel()

		text := "```python\ndef close(self):\n    pass\nclient.close()\nprint(\"x\")\n```"

		facts := docsynth.ScanFacts(text, docsynth.OriginDoc, "u")

		require.Len(t, facts, 1)
		assert.Equal(t, "close", facts[0].Name)
		assert.Empty(t, facts[0].Params)
	})

	t.Run("parses go funcs", func(t *testing.T) {
		t.Parallel()

		text := "```go\nfunc Parse(path, mode string) (*Result, error) {\n```"

		facts := docsynth.ScanFacts(text, docsynth.OriginDoc, "u")

		require.Len(t, facts, 1)
		assert.Equal(t, "Parse", facts[0].Name)
		assert.Equal(t, []docsynth.Param{{Name: "path", Type: "string"}, {Name: "mode", Type: "string"}}, facts[0].Params)
		assert.Equal(t, "(*Result, error)", facts[0].Returns)
	})

	t.Run("reports each name and arity once", func(t *testing.T) {
		t.Parallel()

		text := "`parse(path) -> list`\n\n`parse(path) -> list`\n\n`parse(path, mode) -> list`"

		facts := docsynth.ScanFacts(text, docsynth.OriginDoc, "u")

		assert.Len(t, facts, 2)
	})

	t.Run("returns nothing for prose", func(t *testing.T) {
		t.Parallel()

		facts := docsynth.ScanFacts("Converts input -> output.\n\nSee the guide.", docsynth.OriginDoc, "u")

		assert.Empty(t, facts)
	})
}

func TestSplitParams(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a: Dict[str, int]", "b"}, docsynth.SplitParams("a: Dict[str, int], b"))
	assert.Empty(t, docsynth.SplitParams("  "))
}
