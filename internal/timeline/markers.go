package timeline

import (
	"fmt"
	"strings"

	domainerrors "github.com/listenupapp/listenup-timeline/internal/errors"
)

// BuildFromMarkers builds the chapter list of one localized part from its embedded
// markers. index is 1-based; decodedDuration is the measured length of the part in
// milliseconds and bounds the last chapter.
func BuildFromMarkers(index int, markers []RawMarker, decodedDuration int64) (MarkerPart, error) {
	if len(markers) == 0 {
		return MarkerPart{}, domainerrors.EmptyMarkerSetf("part %d has no chapter markers", index).
			WithDetails(map[string]int{"part": index})
	}

	partID := PartLabel(index)
	chapters := make([]ChapterMarker, len(markers))
	for i, raw := range markers {
		start, err := ParseTimestamp(raw.Time)
		if err != nil {
			return MarkerPart{}, domainerrors.InvalidTimestampf("part %d marker %q: invalid timestamp %q", index, raw.Name, raw.Time).
				WithDetails(map[string]any{"part": index, "marker": raw.Name, "timestamp": raw.Time}).
				WithCause(err)
		}
		chapters[i] = ChapterMarker{
			ID:     markerID(i),
			Title:  strings.TrimSpace(raw.Name),
			PartID: partID,
			Start:  start,
		}
	}
	resolveEnds(chapters, decodedDuration)

	return MarkerPart{
		Index:    index,
		Duration: decodedDuration,
		Chapters: chapters,
	}, nil
}

// PartLabel is the part identifier given to markers of the 1-based part index.
func PartLabel(index int) string {
	return fmt.Sprintf("part%02d", index)
}
