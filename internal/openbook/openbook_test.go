package openbook

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/listenup-timeline/internal/errors"
	"github.com/listenupapp/listenup-timeline/internal/timeline"
)

const (
	part1 = "{AAAAAAAA-BBBB-CCCC-9999-ABCDEF123456}Fmt425-Part01.mp3"
	part2 = "{AAAAAAAA-BBBB-CCCC-9999-ABCDEF123456}Fmt425-Part02.mp3"
)

const sampleJSON = `{
  "title": {"main": "The Book", "subtitle": "A Novel"},
  "creator": [
    {"name": "Ann Author", "role": "author"},
    {"name": "Ned Narrator", "role": "narrator"}
  ],
  "description": {"short": "Short blurb."},
  "nav": {
    "toc": [
      {"title": "Opening Credits", "path": "` + part1 + `"},
      {"title": "Chapter 1", "path": "` + part1 + `#30.5", "contents": [
        {"title": "Chapter 1 (continued)", "path": "` + part2 + `"}
      ]},
      {"title": "Chapter 2", "path": "` + part2 + `#600"}
    ]
  },
  "spine": [
    {"path": "` + part1 + `?cmpt=x", "-odread-original-path": "` + part1 + `", "audio-duration": 1200.25, "-odread-file-bytes": 19204000, "-odread-spine-position": 0},
    {"path": "` + part2 + `?cmpt=y", "-odread-original-path": "` + part2 + `", "audio-duration": 900, "-odread-file-bytes": 14400000, "-odread-spine-position": 1}
  ]
}`

func TestDecode(t *testing.T) {
	b, err := Decode(strings.NewReader(sampleJSON))
	require.NoError(t, err)
	require.NoError(t, b.Validate())

	assert.Equal(t, "The Book: A Novel", b.Title.String())
	assert.Equal(t, []string{"Ann Author"}, b.Authors())
	assert.Equal(t, []string{"Ned Narrator"}, b.Narrators())
	assert.Equal(t, "Short blurb.", b.Blurb())

	toc := b.TOC()
	require.Len(t, toc, 3)
	assert.Equal(t, "Chapter 1", toc[1].Title)
	assert.Equal(t, []timeline.TOCEntry{{Title: "Chapter 1 (continued)", Path: part2}}, toc[1].Contents)
	assert.Nil(t, toc[0].Contents)

	spine := b.SpineItems()
	require.Len(t, spine, 2)
	assert.Equal(t, timeline.SpineItem{
		OriginalPath:  part1,
		Path:          part1 + "?cmpt=x",
		AudioDuration: 1200.25,
		FileBytes:     19204000,
		SpinePosition: 0,
	}, spine[0])
}

func TestDecode_BuildsTimeline(t *testing.T) {
	b, err := Decode(strings.NewReader(sampleJSON))
	require.NoError(t, err)

	tl, err := timeline.BuildFromTOC("https://example.com/", b.TOC(), b.SpineItems())
	require.NoError(t, err)

	merged := timeline.MergeTOC(tl)
	require.Len(t, merged, 3)
	assert.Equal(t, "Chapter 1", merged[1].Title)
	assert.Equal(t, int64(30_500), merged[1].Start)
	assert.Equal(t, int64(1_200_250+600_000), merged[1].End)
	assert.Equal(t, int64(2_100_250), merged[2].End)
}

func TestDecode_TitleAsString(t *testing.T) {
	b, err := Decode(strings.NewReader(`{"title": "Plain", "nav": {"toc": []}, "spine": []}`))
	require.NoError(t, err)
	assert.Equal(t, "Plain", b.Title.String())
}

func TestDecode_InvalidJSON(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"nav": `))
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestAuthors_Fallbacks(t *testing.T) {
	editors := &Openbook{Creators: []Creator{{Name: "Ed", Role: "editor"}, {Name: "Nat", Role: "narrator"}}}
	assert.Equal(t, []string{"Ed"}, editors.Authors())

	anyone := &Openbook{Creators: []Creator{{Name: "Nat", Role: "narrator"}, {Name: "Tess", Role: "translator"}}}
	assert.Equal(t, []string{"Nat", "Tess"}, anyone.Authors())

	assert.Nil(t, (&Openbook{}).Authors())
}

func TestValidate_SpineRecords(t *testing.T) {
	b := &Openbook{
		Spine: []SpineRecord{
			{Path: "a", AudioDuration: 10},
			{Path: "b", OriginalPath: part2, AudioDuration: -1, FileBytes: -5},
		},
	}

	err := b.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, map[string]string{
		"spine[0].-odread-original-path": "is required",
		"spine[1].audio-duration":        "must be greater than or equal to 0",
		"spine[1].-odread-file-bytes":    "must be greater than or equal to 0",
	}, domainErr.Details)
}

func TestValidate_DownloadBase(t *testing.T) {
	b := &Openbook{DownloadBase: "not a url"}
	err := b.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	b.DownloadBase = "https://dewey.example.com/"
	assert.NoError(t, b.Validate())
}
