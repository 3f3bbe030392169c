package mediamarkers

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	domainerrors "github.com/listenupapp/listenup-timeline/internal/errors"
	"github.com/listenupapp/listenup-timeline/internal/timeline"
)

type markerElement struct {
	Name string `xml:"Name"`
	Time string `xml:"Time"`
}

// ParseXML decodes every <Marker> element in the marker frame text, in document
// order. Text that fails to decode is retried once with everything outside
// printable ASCII removed. Blank text yields no markers.
func ParseXML(text string) ([]timeline.RawMarker, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	markers, err := decodeMarkers(text)
	if err == nil {
		return markers, nil
	}

	stripped := stripToASCII(text)
	if stripped == text {
		return nil, domainerrors.Wrap(err, domainerrors.CodeValidation, "invalid marker xml")
	}
	markers, retryErr := decodeMarkers(stripped)
	if retryErr != nil {
		return nil, domainerrors.Wrap(errors.Join(err, retryErr), domainerrors.CodeValidation, "invalid marker xml")
	}
	return markers, nil
}

func decodeMarkers(text string) ([]timeline.RawMarker, error) {
	d := xml.NewDecoder(strings.NewReader(text))
	// The frame text is already decoded.
	d.CharsetReader = func(_ string, in io.Reader) (io.Reader, error) { return in, nil }

	var markers []timeline.RawMarker
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return markers, nil
		}
		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Marker" {
			continue
		}
		var m markerElement
		if err := d.DecodeElement(&m, &start); err != nil {
			return nil, err
		}
		markers = append(markers, timeline.RawMarker{
			Name: strings.TrimSpace(m.Name),
			Time: strings.TrimSpace(m.Time),
		})
	}
}

func stripToASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\t' || c == '\n' || c == '\r' || (c >= 0x20 && c < 0x7F) {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ReadMarkers reads and decodes the markers of the MP3 at path.
func ReadMarkers(path string) ([]timeline.RawMarker, error) {
	text, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseXML(text)
}
