// Package timeline reconciles chapter markers of a multi-part audiobook into per-part
// and merged chapter timelines.
//
// All times are integral milliseconds. Values coming from the loan API in seconds are
// converted when they are parsed.
package timeline

import (
	"fmt"
	"iter"
	"math"
	"slices"
)

// ChapterMarker is one chapter boundary.
type ChapterMarker struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	PartID string `json:"partId,omitempty"`
	Start  int64  `json:"startMs"`
	End    int64  `json:"endMs"`
}

// Duration returns End - Start.
func (m ChapterMarker) Duration() int64 {
	return m.End - m.Start
}

// TOCEntry is one table of contents entry as published by the loan API.
type TOCEntry struct {
	Title    string
	Path     string
	Contents []TOCEntry
}

// SpineItem is the authoritative record for one part.
type SpineItem struct {
	OriginalPath  string
	Path          string
	AudioDuration float64 // seconds
	FileBytes     int64
	SpinePosition int
}

// RawMarker is a marker read from a part's embedded marker frame.
type RawMarker struct {
	Name string
	Time string
}

// Part holds the resolved chapters and spine attributes of one part.
type Part struct {
	ID            string          `json:"id"`
	Chapters      []ChapterMarker `json:"chapters"`
	URL           string          `json:"url"`
	AudioDuration int64           `json:"audioDurationMs"`
	FileLength    int64           `json:"fileLength"`
	SpinePosition int             `json:"spinePosition"`
}

// PartTimeline maps part identifiers to parts, preserving insertion order.
type PartTimeline struct {
	order []string
	parts map[string]*Part
}

func newPartTimeline() *PartTimeline {
	return &PartTimeline{parts: make(map[string]*Part)}
}

// ensure returns the part for id, appending it to the order if unseen.
func (t *PartTimeline) ensure(id string) *Part {
	if p, ok := t.parts[id]; ok {
		return p
	}
	p := &Part{ID: id}
	t.parts[id] = p
	t.order = append(t.order, id)
	return p
}

// Len returns the number of parts.
func (t *PartTimeline) Len() int {
	return len(t.order)
}

// IDs returns the part identifiers in insertion order.
func (t *PartTimeline) IDs() []string {
	return slices.Clone(t.order)
}

// Get returns a copy of the part with the given identifier.
func (t *PartTimeline) Get(id string) (Part, bool) {
	p, ok := t.parts[id]
	if !ok {
		return Part{}, false
	}
	return p.clone(), true
}

// All iterates parts in insertion order.
func (t *PartTimeline) All() iter.Seq2[string, Part] {
	return func(yield func(string, Part) bool) {
		for _, id := range t.order {
			if !yield(id, t.parts[id].clone()) {
				return
			}
		}
	}
}

// Parts returns copies of all parts in insertion order.
func (t *PartTimeline) Parts() []Part {
	out := make([]Part, 0, len(t.order))
	for _, p := range t.All() {
		out = append(out, p)
	}
	return out
}

// TotalDuration is the sum of the declared part durations.
func (t *PartTimeline) TotalDuration() int64 {
	var total int64
	for _, id := range t.order {
		total += t.parts[id].AudioDuration
	}
	return total
}

func (p *Part) clone() Part {
	c := *p
	c.Chapters = slices.Clone(p.Chapters)
	return c
}

// MarkerPart is one localized part built from embedded markers.
type MarkerPart struct {
	Index    int             `json:"index"`
	Duration int64           `json:"durationMs"`
	Chapters []ChapterMarker `json:"chapters"`
}

// resolveEnds sets each marker's End to the next marker's Start and the last
// marker's End to duration.
func resolveEnds(chapters []ChapterMarker, duration int64) {
	for i := range chapters {
		if i < len(chapters)-1 {
			chapters[i].End = chapters[i+1].Start
		} else {
			chapters[i].End = duration
		}
	}
}

func markerID(i int) string {
	return fmt.Sprintf("ch%02d", i+1)
}

// SecondsToMillis converts fractional seconds to milliseconds, rounding to nearest.
func SecondsToMillis(seconds float64) int64 {
	return int64(math.Round(seconds * 1000))
}
