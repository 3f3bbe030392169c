package timeline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	domainerrors "github.com/listenupapp/listenup-timeline/internal/errors"
)

// partPathRe matches "{<token>}<suffix>[#<seconds>]".
// e.g. {AAAAAAAA-BBBB-CCCC-9999-ABCDEF123456}Fmt425-Part03.mp3#3000
var partPathRe = regexp.MustCompile(`^(\{[^{}#]+\}[^#]+)(?:#(\d+(?:\.\d+)?))?$`)

// partTokenRe splits a part id into its brace token and suffix.
var partTokenRe = regexp.MustCompile(`^\{([^{}#]+)\}(.*)$`)

// ParseIdentifier parses a TOC chapter path into an unresolved marker.
// PartID is everything before the fragment, see CanonicalPartID. Start is the
// fragment in seconds converted to milliseconds, or 0 when absent. Fragments are
// unsigned decimals with a leading digit, so "#.5" and "#-3" are malformed.
func ParseIdentifier(title, path string) (ChapterMarker, error) {
	m := partPathRe.FindStringSubmatch(path)
	if m == nil {
		return ChapterMarker{}, malformedIdentifier(path)
	}

	var start int64
	if m[2] != "" {
		seconds, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return ChapterMarker{}, malformedIdentifier(path).WithCause(err)
		}
		start = SecondsToMillis(seconds)
	}

	return ChapterMarker{
		Title:  title,
		PartID: CanonicalPartID(m[1]),
		Start:  start,
	}, nil
}

// CanonicalPartID returns the part id with a UUID brace token in upper-case
// canonical form. Any other token is opaque and returned unchanged.
func CanonicalPartID(partID string) string {
	m := partTokenRe.FindStringSubmatch(partID)
	if m == nil {
		return partID
	}
	u, err := uuid.Parse(m[1])
	if err != nil {
		return partID
	}
	return "{" + strings.ToUpper(u.String()) + "}" + m[2]
}

func malformedIdentifier(path string) *domainerrors.Error {
	return domainerrors.MalformedIdentifierf("unexpected path format: %s", path).
		WithDetails(map[string]string{"path": path})
}
