package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/listenup-timeline/internal/errors"
	"github.com/listenupapp/listenup-timeline/internal/timeline"
)

func TestFFMetadata(t *testing.T) {
	chapters := []timeline.ChapterMarker{
		{ID: "ch01", Title: "Opening", Start: 0, End: 30_000},
		{ID: "ch02", Title: "Part 1; a=b #1 \\ end", Start: 30_000, End: 95_500},
	}

	var buf bytes.Buffer
	require.NoError(t, FFMetadata(&buf, chapters))

	want := ";FFMETADATA1\n" +
		"\n[CHAPTER]\nTIMEBASE=1/1000\nSTART=0\nEND=30000\ntitle=Opening\n" +
		"\n[CHAPTER]\nTIMEBASE=1/1000\nSTART=30000\nEND=95500\n" +
		`title=Part 1\; a\=b \#1 \\ end` + "\n"
	assert.Equal(t, want, buf.String())
}

func TestFFMetadata_EscapesNewlines(t *testing.T) {
	out := FFMetadataString([]timeline.ChapterMarker{{Title: "Line one\nLine two", End: 1}})
	assert.Contains(t, out, "title=Line one\\\nLine two\n")
}

func TestFFMetadata_NoChapters(t *testing.T) {
	assert.Equal(t, ";FFMETADATA1\n", FFMetadataString(nil))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestFFMetadata_WriteError(t *testing.T) {
	err := FFMetadata(failingWriter{}, []timeline.ChapterMarker{{Title: "x"}})
	assert.ErrorContains(t, err, "closed pipe")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, map[string]int{"chapters": 2}))

	assert.Equal(t, "{\n  \"chapters\": 2\n}\n", buf.String())
}

func TestWrite(t *testing.T) {
	chapters := []timeline.ChapterMarker{{Title: "One", End: 1000}}

	var asJSON bytes.Buffer
	require.NoError(t, Write(&asJSON, "", map[string]any{"merged": chapters}, chapters))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(asJSON.Bytes(), &decoded))
	assert.Contains(t, decoded, "merged")

	var asMeta bytes.Buffer
	require.NoError(t, Write(&asMeta, FormatFFMetadata, nil, chapters))
	assert.Contains(t, asMeta.String(), "title=One")

	err := Write(&bytes.Buffer{}, "yaml", nil, chapters)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}
