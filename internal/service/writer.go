package service

import (
	"context"
	"fmt"

	domainerrors "github.com/listenupapp/listenup-timeline/internal/errors"
	"github.com/listenupapp/listenup-timeline/internal/logger"
	"github.com/listenupapp/listenup-timeline/internal/timeline"
)

// ChapterWriter embeds a chapter list into an output file, for example the
// merged audiobook produced by the transcode step.
type ChapterWriter interface {
	WriteChapters(ctx context.Context, path string, chapters []timeline.ChapterMarker) error
}

// WriteMerged hands the merged chapters of r to w for the file at path.
func (s *TimelineService) WriteMerged(ctx context.Context, w ChapterWriter, path string, r *Result) error {
	if r == nil || len(r.Merged) == 0 {
		return domainerrors.EmptyMarkerSet("result has no merged chapters")
	}
	if err := w.WriteChapters(ctx, path, r.Merged); err != nil {
		return fmt.Errorf("write chapters to %s: %w", path, err)
	}
	s.logger.WithRun(r.RunID).Info("chapters written", logger.KeyPath, path, logger.KeyChapters, len(r.Merged))
	return nil
}
