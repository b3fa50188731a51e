package mock

import (
	"context"

	"github.com/fwojciec/docsynth"
)

var _ docsynth.ArtifactWriter = (*ArtifactWriter)(nil)

// ArtifactWriter is a mock implementation of docsynth.ArtifactWriter.
type ArtifactWriter struct {
	WriteFn func(ctx context.Context, artifact *docsynth.MergedArtifact) error
}

func (w *ArtifactWriter) Write(ctx context.Context, artifact *docsynth.MergedArtifact) error {
	return w.WriteFn(ctx, artifact)
}
