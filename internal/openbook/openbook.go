// Package openbook decodes the loan metadata document ("openbook") that carries an
// audiobook's table of contents and spine.
package openbook

import (
	"encoding/json"
	"fmt"
	"io"

	domainerrors "github.com/listenupapp/listenup-timeline/internal/errors"
	"github.com/listenupapp/listenup-timeline/internal/timeline"
	"github.com/listenupapp/listenup-timeline/internal/validation"
)

var validate = validation.New()

// Openbook is the subset of the loan metadata document used to build timelines.
// Field names follow the wire format verbatim.
type Openbook struct {
	Title        Title         `json:"title"`
	Creators     []Creator     `json:"creator,omitempty"`
	Description  Description   `json:"description"`
	Nav          Nav           `json:"nav"`
	Spine        []SpineRecord `json:"spine" validate:"dive"`
	DownloadBase string        `json:"download_base,omitempty" validate:"omitempty,url"`
}

// Title is the book title.
type Title struct {
	Main     string `json:"main"`
	Subtitle string `json:"subtitle,omitempty"`
}

// UnmarshalJSON accepts either a title object or a bare string.
func (t *Title) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Title{Main: s}
		return nil
	}
	type plain Title
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = Title(p)
	return nil
}

// Creator is an author, narrator, editor or other contributor.
type Creator struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// Description holds the full and short blurbs.
type Description struct {
	Full  string `json:"full,omitempty"`
	Short string `json:"short,omitempty"`
}

// Nav holds the navigation tree.
type Nav struct {
	TOC []TOCItem `json:"toc"`
}

// TOCItem is one navigation entry. Path is "{token}part-name[#seconds]".
type TOCItem struct {
	Title    string    `json:"title"`
	Path     string    `json:"path"`
	Contents []TOCItem `json:"contents,omitempty"`
}

// SpineRecord describes one downloadable part.
type SpineRecord struct {
	Path          string  `json:"path"`
	OriginalPath  string  `json:"-odread-original-path" validate:"required"`
	AudioDuration float64 `json:"audio-duration" validate:"gte=0"`
	FileBytes     int64   `json:"-odread-file-bytes" validate:"gte=0"`
	SpinePosition int     `json:"-odread-spine-position" validate:"gte=0"`
}

// Decode reads an openbook JSON document.
func Decode(r io.Reader) (*Openbook, error) {
	var b Openbook
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeValidation, "invalid openbook json")
	}
	return &b, nil
}

// Validate checks the spine records. Structural problems in the table of contents
// are reported by the timeline builder.
func (b *Openbook) Validate() error {
	return validate.Validate(b)
}

// TOC converts the navigation tree to timeline entries.
func (b *Openbook) TOC() []timeline.TOCEntry {
	return convertTOC(b.Nav.TOC)
}

func convertTOC(items []TOCItem) []timeline.TOCEntry {
	if len(items) == 0 {
		return nil
	}
	out := make([]timeline.TOCEntry, len(items))
	for i, item := range items {
		out[i] = timeline.TOCEntry{
			Title:    item.Title,
			Path:     item.Path,
			Contents: convertTOC(item.Contents),
		}
	}
	return out
}

// SpineItems converts the spine to timeline records.
func (b *Openbook) SpineItems() []timeline.SpineItem {
	out := make([]timeline.SpineItem, len(b.Spine))
	for i, s := range b.Spine {
		out[i] = timeline.SpineItem{
			OriginalPath:  s.OriginalPath,
			Path:          s.Path,
			AudioDuration: s.AudioDuration,
			FileBytes:     s.FileBytes,
			SpinePosition: s.SpinePosition,
		}
	}
	return out
}

// Authors returns the names of creators with the author role, falling back to
// editors and then to every creator.
func (b *Openbook) Authors() []string {
	if names := b.creatorsWithRole("author"); len(names) > 0 {
		return names
	}
	if names := b.creatorsWithRole("editor"); len(names) > 0 {
		return names
	}
	return b.creatorsWithRole("")
}

// Narrators returns the names of creators with the narrator role.
func (b *Openbook) Narrators() []string {
	return b.creatorsWithRole("narrator")
}

func (b *Openbook) creatorsWithRole(role string) []string {
	var names []string
	for _, c := range b.Creators {
		if role == "" || c.Role == role {
			names = append(names, c.Name)
		}
	}
	return names
}

// Blurb returns the full description, or the short one when there is none.
func (b *Openbook) Blurb() string {
	if b.Description.Full != "" {
		return b.Description.Full
	}
	return b.Description.Short
}

// String returns the main title and subtitle.
func (t Title) String() string {
	if t.Subtitle == "" {
		return t.Main
	}
	return fmt.Sprintf("%s: %s", t.Main, t.Subtitle)
}
