package timeline

import (
	"net/url"

	domainerrors "github.com/listenupapp/listenup-timeline/internal/errors"
)

// BuildFromTOC builds the per-part timeline from the loan API table of contents and
// spine. Parts keep the order in which the TOC first references them.
//
// Nested TOC entries are labeled with their top-level entry's title, so that the
// timestamped duplicates the API synthesizes for one chapter collapse during
// adjacent de-duplication.
func BuildFromTOC(baseURL string, toc []TOCEntry, spine []SpineItem) (*PartTimeline, error) {
	if len(toc) == 0 {
		return nil, domainerrors.EmptyMarkerSet("table of contents is empty")
	}
	if len(spine) == 0 {
		return nil, domainerrors.EmptyMarkerSet("spine is empty")
	}

	raw, err := flattenTOC(toc)
	if err != nil {
		return nil, err
	}

	tl := newPartTimeline()
	for _, m := range raw {
		p := tl.ensure(m.PartID)
		if n := len(p.Chapters); n > 0 && p.Chapters[n-1].Title == m.Title {
			continue
		}
		p.Chapters = append(p.Chapters, m)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeValidation, "invalid base url %q", baseURL)
	}

	joined := make(map[string]bool, len(spine))
	for _, s := range spine {
		id := CanonicalPartID(s.OriginalPath)
		p, ok := tl.parts[id]
		if !ok {
			return nil, domainerrors.UnknownPartf("spine part %q is not referenced by the table of contents", s.OriginalPath).
				WithDetails(map[string]string{"part": s.OriginalPath})
		}
		ref, err := url.Parse(s.Path)
		if err != nil {
			return nil, domainerrors.Wrapf(err, domainerrors.CodeValidation, "invalid spine path %q", s.Path)
		}
		p.URL = base.ResolveReference(ref).String()
		p.AudioDuration = SecondsToMillis(s.AudioDuration)
		p.FileLength = s.FileBytes
		p.SpinePosition = s.SpinePosition
		joined[id] = true
	}

	for _, id := range tl.order {
		if !joined[id] {
			return nil, domainerrors.MissingSpineDataf("part %q has no spine record", id).
				WithDetails(map[string]string{"part": id})
		}
		p := tl.parts[id]
		resolveEnds(p.Chapters, p.AudioDuration)
		for i := range p.Chapters {
			p.Chapters[i].ID = markerID(i)
		}
	}

	return tl, nil
}

// flattenTOC parses every entry in document order: an entry, then its contents.
func flattenTOC(toc []TOCEntry) ([]ChapterMarker, error) {
	var out []ChapterMarker
	var walk func(title string, entries []TOCEntry) error
	walk = func(title string, entries []TOCEntry) error {
		for _, e := range entries {
			m, err := ParseIdentifier(title, e.Path)
			if err != nil {
				return err
			}
			out = append(out, m)
			if err := walk(title, e.Contents); err != nil {
				return err
			}
		}
		return nil
	}

	for _, item := range toc {
		m, err := ParseIdentifier(item.Title, item.Path)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
		if err := walk(item.Title, item.Contents); err != nil {
			return nil, err
		}
	}
	return out, nil
}
