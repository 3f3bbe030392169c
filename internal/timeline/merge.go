package timeline

// MergeTOC lays the parts of an API-sourced timeline end to end and returns the
// chapter list of the concatenated audio.
//
// Chapters are keyed by title. The first occurrence of a title creates the merged
// chapter; every occurrence, in any later part, moves that chapter's end to its
// own end. A title recurring in a non-adjacent part therefore stretches the first
// chapter across everything in between. Merged chapters carry no PartID.
func MergeTOC(t *PartTimeline) []ChapterMarker {
	if t == nil {
		return nil
	}

	var merged []ChapterMarker
	byTitle := make(map[string]int)
	var offset int64

	for _, id := range t.order {
		p := t.parts[id]
		for _, m := range p.Chapters {
			i, seen := byTitle[m.Title]
			if !seen {
				i = len(merged)
				byTitle[m.Title] = i
				merged = append(merged, ChapterMarker{
					ID:    markerID(i),
					Title: m.Title,
					Start: offset + m.Start,
					End:   offset + m.Start,
				})
			}
			merged[i].End = offset + m.End
		}
		offset += p.AudioDuration
	}

	return merged
}

// MergeMarkers lays localized parts end to end, offsetting each part's chapters by
// the decoded durations of the parts before it. Parts without chapters only
// advance the offset. Marker ids are renumbered across the book and PartID is
// cleared.
func MergeMarkers(parts []MarkerPart) []ChapterMarker {
	var merged []ChapterMarker
	var offset int64

	for _, p := range parts {
		for _, m := range p.Chapters {
			merged = append(merged, ChapterMarker{
				ID:    markerID(len(merged)),
				Title: m.Title,
				Start: offset + m.Start,
				End:   offset + m.End,
			})
		}
		offset += p.Duration
	}

	return merged
}
