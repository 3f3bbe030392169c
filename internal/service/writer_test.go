package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/listenup-timeline/internal/errors"
	"github.com/listenupapp/listenup-timeline/internal/timeline"
)

type recordingWriter struct {
	path     string
	chapters []timeline.ChapterMarker
	err      error
}

func (w *recordingWriter) WriteChapters(_ context.Context, path string, chapters []timeline.ChapterMarker) error {
	w.path = path
	w.chapters = chapters
	return w.err
}

func TestWriteMerged(t *testing.T) {
	svc := newTestService(t, TimelineConfig{}, nil, nil)
	result := &Result{RunID: "run_x", Merged: []timeline.ChapterMarker{{ID: "ch01", Title: "One", End: 1000}}}

	w := &recordingWriter{}
	require.NoError(t, svc.WriteMerged(context.Background(), w, "/out/book.m4b", result))
	assert.Equal(t, "/out/book.m4b", w.path)
	assert.Equal(t, result.Merged, w.chapters)

	failing := &recordingWriter{err: errors.New("read-only")}
	err := svc.WriteMerged(context.Background(), failing, "/out/book.m4b", result)
	assert.ErrorIs(t, err, failing.err)

	err = svc.WriteMerged(context.Background(), w, "/out/book.m4b", &Result{})
	assert.ErrorIs(t, err, domainerrors.ErrEmptyMarkerSet)
}
