package conflict_test

import (
	"testing"

	"github.com/fwojciec/docsynth"
	"github.com/fwojciec/docsynth/conflict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(key string, origin docsynth.Origin, sig, desc string) *docsynth.SymbolRecord {
	return &docsynth.SymbolRecord{IdentityKey: key, Origin: origin, Signature: sig, Description: desc}
}

func TestDetect(t *testing.T) {
	t.Parallel()

	t.Run("matching signatures and descriptions yield no conflict", func(t *testing.T) {
		t.Parallel()

		got := conflict.Detect([]*docsynth.SymbolRecord{
			rec("lib.parse#1", docsynth.OriginCode, "parse(path: str) -> dict", "Parse a file."),
			rec("lib.parse#1", docsynth.OriginDoc, "parse(path:  str) -> dict", "Parse  a\nfile."),
		})

		assert.Empty(t, got)
	})

	t.Run("type-only difference yields one signature mismatch", func(t *testing.T) {
		t.Parallel()

		got := conflict.Detect([]*docsynth.SymbolRecord{
			rec("lib.parse#1", docsynth.OriginCode, "parse(path: str) -> dict", "Parse a file."),
			rec("lib.parse#1", docsynth.OriginDoc, "parse(path) -> list", "Reads a file."),
		})

		require.Len(t, got, 1)
		assert.Equal(t, docsynth.ConflictRecord{
			IdentityKey: "lib.parse#1",
			Type:        docsynth.SignatureMismatch,
			Severity:    docsynth.SeverityMedium,
			DocVersion:  "parse(path) -> list",
			CodeVersion: "parse(path: str) -> dict",
		}, got[0])
	})

	t.Run("description mismatch when signatures agree", func(t *testing.T) {
		t.Parallel()

		got := conflict.Detect([]*docsynth.SymbolRecord{
			rec("lib.parse#1", docsynth.OriginCode, "parse(path)", "Parse a file."),
			rec("lib.parse#1", docsynth.OriginDoc, "parse(path)", "Parse a directory."),
		})

		require.Len(t, got, 1)
		assert.Equal(t, docsynth.DescriptionMismatch, got[0].Type)
		assert.Equal(t, docsynth.SeverityLow, got[0].Severity)
		assert.Equal(t, "Parse a directory.", got[0].DocVersion)
		assert.Equal(t, "Parse a file.", got[0].CodeVersion)
	})

	t.Run("missing description is not a mismatch", func(t *testing.T) {
		t.Parallel()

		got := conflict.Detect([]*docsynth.SymbolRecord{
			rec("lib.parse#1", docsynth.OriginCode, "parse(path)", "Parse a file."),
			rec("lib.parse#1", docsynth.OriginDoc, "parse(path)", ""),
		})

		assert.Empty(t, got)
	})

	t.Run("missing sides are high severity", func(t *testing.T) {
		t.Parallel()

		got := conflict.Detect([]*docsynth.SymbolRecord{
			rec("lib.internal#0", docsynth.OriginCode, "internal()", ""),
			rec("legacy#0", docsynth.OriginPDF, "legacy()", ""),
		})

		require.Len(t, got, 2)
		assert.Equal(t, "legacy#0", got[0].IdentityKey)
		assert.Equal(t, docsynth.MissingInCode, got[0].Type)
		assert.Equal(t, "legacy()", got[0].DocVersion)
		assert.Empty(t, got[0].CodeVersion)
		assert.Equal(t, "lib.internal#0", got[1].IdentityKey)
		assert.Equal(t, docsynth.MissingInDocs, got[1].Type)
		assert.Equal(t, docsynth.SeverityHigh, got[1].Severity)
	})

	t.Run("low confidence caps severity at medium", func(t *testing.T) {
		t.Parallel()

		doc := rec("lib.parse#1", docsynth.OriginDoc, "parse(path)", "")
		doc.LowConfidenceMatch = true

		got := conflict.Detect([]*docsynth.SymbolRecord{doc})

		require.Len(t, got, 1)
		assert.Equal(t, docsynth.MissingInCode, got[0].Type)
		assert.Equal(t, docsynth.SeverityMedium, got[0].Severity)
		assert.True(t, got[0].LowConfidence)
	})

	t.Run("prefers doc over pdf", func(t *testing.T) {
		t.Parallel()

		got := conflict.Detect([]*docsynth.SymbolRecord{
			rec("k#0", docsynth.OriginPDF, "k() -> int", ""),
			rec("k#0", docsynth.OriginCode, "k() -> str", ""),
			rec("k#0", docsynth.OriginDoc, "k() -> bool", ""),
		})

		require.Len(t, got, 1)
		assert.Equal(t, "k() -> bool", got[0].DocVersion)
	})

	t.Run("sorts by severity then identity", func(t *testing.T) {
		t.Parallel()

		got := conflict.Detect([]*docsynth.SymbolRecord{
			rec("b#0", docsynth.OriginCode, "b()", "x"),
			rec("b#0", docsynth.OriginDoc, "b()", "y"),
			rec("c#0", docsynth.OriginCode, "c()", ""),
			rec("a#0", docsynth.OriginCode, "a(x)", ""),
			rec("a#0", docsynth.OriginDoc, "a()", ""),
			rec("a2#0", docsynth.OriginDoc, "a2()", ""),
		})

		var keys []string
		for _, c := range got {
			keys = append(keys, c.IdentityKey)
		}
		assert.Equal(t, []string{"a2#0", "c#0", "a#0", "b#0"}, keys)
	})

	t.Run("never reports both mismatch types for one identity", func(t *testing.T) {
		t.Parallel()

		got := conflict.Detect([]*docsynth.SymbolRecord{
			rec("k#1", docsynth.OriginCode, "k(a: int)", "One."),
			rec("k#1", docsynth.OriginDoc, "k(a)", "Two."),
		})

		require.Len(t, got, 1)
		assert.Equal(t, docsynth.SignatureMismatch, got[0].Type)
	})
}

func TestGroupRecords(t *testing.T) {
	t.Parallel()

	groups := conflict.GroupRecords([]*docsynth.SymbolRecord{
		rec("b", docsynth.OriginCode, "", ""),
		rec("a", docsynth.OriginDoc, "", ""),
		rec("b", docsynth.OriginPDF, "", ""),
	})

	require.Len(t, groups, 2)
	assert.Equal(t, "a", groups[0].IdentityKey)
	assert.Len(t, groups[1].Code, 1)
	assert.Len(t, groups[1].Doc, 1)
}
