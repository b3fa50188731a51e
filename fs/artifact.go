package fs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fwojciec/docsynth"
)

// ConflictsFile is the artifact-relative path of the conflict list.
const ConflictsFile = "conflicts.json"

var _ docsynth.ArtifactWriter = (*ArtifactWriter)(nil)

// ArtifactWriter writes a merged artifact to a directory as index.md,
// categories/<slug>.md and conflicts.json. A failed write leaves any
// previous artifact in place.
type ArtifactWriter struct {
	staging
}

// NewArtifactWriter creates an ArtifactWriter for the given directory.
func NewArtifactWriter(dir string) *ArtifactWriter {
	return &ArtifactWriter{staging{dir: dir}}
}

// Write stages every file of the artifact and commits the directory.
func (w *ArtifactWriter) Write(ctx context.Context, artifact *docsynth.MergedArtifact) (err error) {
	if err := w.abort(); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = w.abort()
		}
	}()

	if err := w.writeFile(artifact.Index.Name, []byte(artifact.Index.Content)); err != nil {
		return err
	}

	seen := make(map[string]string)
	for _, doc := range artifact.Categories {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := doc.File
		if name == "" {
			name = docsynth.CategoryFile(doc.Category)
		}
		if prev, ok := seen[name]; ok {
			return docsynth.Errorf(docsynth.EINTERNAL, "categories %q and %q share file %s", prev, doc.Category, name)
		}
		seen[name] = doc.Category
		if err := w.writeFile(name, []byte(doc.Content)); err != nil {
			return err
		}
	}

	conflicts := artifact.Conflicts
	if conflicts == nil {
		conflicts = []docsynth.ConflictAnnotation{}
	}
	data, err := json.MarshalIndent(conflicts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal conflicts: %w", err)
	}
	if err := w.writeFile(ConflictsFile, append(data, '\n')); err != nil {
		return err
	}

	return w.commit()
}
