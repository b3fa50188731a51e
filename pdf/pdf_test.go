package pdf_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/docsynth"
	"github.com/fwojciec/docsynth/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writePDF writes a minimal PDF with one page per entry of pages. Each page
// shows its text as a single line in Helvetica.
func writePDF(t *testing.T, name string, pages []string) string {
	t.Helper()

	n := len(pages)
	fontObj := 3 + 2*n
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
	}
	var kids []string
	for i := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", 3+2*i))
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n))
	for i, text := range pages {
		escaped := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`).Replace(text)
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", escaped)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>", fontObj, 4+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func TestPageURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pdf://guide.pdf#page-3", pdf.PageURL("/docs/manuals/guide.pdf", 3))
}

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("one page record per page", func(t *testing.T) {
		t.Parallel()

		path := writePDF(t, "guide.pdf", []string{"Getting Started", "def parse(path: str) -> dict:"})
		now := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
		e := pdf.NewExtractor(path)
		e.Now = func() time.Time { return now }

		ext, err := e.Extract(context.Background())

		require.NoError(t, err)
		assert.Equal(t, docsynth.SourcePDF, ext.Source)
		require.Len(t, ext.Pages, 2)
		assert.Equal(t, "pdf://guide.pdf#page-1", ext.Pages[0].URL)
		assert.Equal(t, "pdf://guide.pdf#page-1", ext.Pages[0].CanonicalURL)
		assert.Equal(t, "Getting Started", ext.Pages[0].Title)
		assert.Equal(t, docsynth.SourcePDF, ext.Pages[0].SourceType)
		assert.Equal(t, now, ext.Pages[0].DiscoveredAt)
		assert.NotEmpty(t, ext.Pages[0].ContentHash)
		assert.Equal(t, "pdf://guide.pdf#page-2", ext.Pages[1].URL)
		assert.Contains(t, ext.Pages[1].RawText, "def parse(path: str) -> dict:")
	})

	t.Run("scans pages for signatures", func(t *testing.T) {
		t.Parallel()

		path := writePDF(t, "guide.pdf", []string{"Getting Started", "def parse(path: str) -> dict:", "def parse(path: str) -> dict:"})

		ext, err := pdf.NewExtractor(path).Extract(context.Background())

		require.NoError(t, err)
		require.Len(t, ext.Facts, 1)
		assert.Equal(t, docsynth.OriginPDF, ext.Facts[0].Origin)
		assert.Equal(t, "parse", ext.Facts[0].Name)
		assert.Equal(t, "dict", ext.Facts[0].Returns)
		assert.Equal(t, "pdf://guide.pdf#page-2", ext.Facts[0].Location)
	})

	t.Run("missing file is invalid", func(t *testing.T) {
		t.Parallel()

		_, err := pdf.NewExtractor(filepath.Join(t.TempDir(), "missing.pdf")).Extract(context.Background())

		require.Error(t, err)
		assert.Equal(t, docsynth.EINVALID, docsynth.ErrorCode(err))
	})

	t.Run("returns context error when canceled", func(t *testing.T) {
		t.Parallel()

		path := writePDF(t, "guide.pdf", []string{"Getting Started"})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := pdf.NewExtractor(path).Extract(ctx)

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestExtractor_Validate(t *testing.T) {
	t.Parallel()

	t.Run("accepts an existing file", func(t *testing.T) {
		t.Parallel()

		path := writePDF(t, "guide.pdf", []string{"Getting Started"})

		require.NoError(t, pdf.NewExtractor(path).Validate())
	})

	t.Run("rejects a missing file", func(t *testing.T) {
		t.Parallel()

		err := pdf.NewExtractor(filepath.Join(t.TempDir(), "missing.pdf")).Validate()

		require.Error(t, err)
		assert.Equal(t, docsynth.EINVALID, docsynth.ErrorCode(err))
	})

	t.Run("rejects a directory", func(t *testing.T) {
		t.Parallel()

		err := pdf.NewExtractor(t.TempDir()).Validate()

		require.Error(t, err)
		assert.Equal(t, docsynth.EINVALID, docsynth.ErrorCode(err))
	})
}
