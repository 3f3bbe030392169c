package openbook

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/listenup-timeline/internal/errors"
)

func TestExtractFromHTML(t *testing.T) {
	page := `<!DOCTYPE html>
<html><head>
<script src="/app.js"></script>
<script>
  window.config = {"a": 1};
  window.bData = ` + sampleJSON + `;
  window.later = {"b": 2};
</script>
</head><body><div id="app"></div></body></html>`

	b, err := ExtractFromHTML(strings.NewReader(page))
	require.NoError(t, err)

	assert.Equal(t, "The Book", b.Title.Main)
	assert.Len(t, b.Nav.TOC, 3)
	assert.Len(t, b.Spine, 2)
}

func TestExtractFromHTML_SingleLine(t *testing.T) {
	page := `<html><body><script>window.bData={"title":"X","nav":{"toc":[]},"spine":[]};</script></body></html>`

	b, err := ExtractFromHTML(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, "X", b.Title.Main)
}

func TestExtractFromHTML_Missing(t *testing.T) {
	page := `<html><body><script>window.other = {};</script><p>window.bData = {}</p></body></html>`

	_, err := ExtractFromHTML(strings.NewReader(page))
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestParse(t *testing.T) {
	fromJSON, err := Parse([]byte("\n" + sampleJSON))
	require.NoError(t, err)
	assert.Equal(t, "The Book", fromJSON.Title.Main)

	page := "  <html><script>window.bData = " + sampleJSON + ";</script></html>"
	fromHTML, err := Parse([]byte(page))
	require.NoError(t, err)
	assert.Equal(t, fromJSON.Spine, fromHTML.Spine)

	_, err = Parse([]byte(" \n\t"))
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = Parse([]byte("not json"))
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}
