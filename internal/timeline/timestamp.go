package timeline

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	domainerrors "github.com/listenupapp/listenup-timeline/internal/errors"
)

// Marker timestamps come in two shapes. Both carry a fractional seconds field.
var (
	mmssRe   = regexp.MustCompile(`^(\d+):(\d+)\.(\d+)$`)
	hhmmssRe = regexp.MustCompile(`^(\d+):(\d+):(\d+)\.(\d+)$`)
)

// strictLayouts are tried in order. time.Parse accepts the fractional field after
// the seconds even though the layouts omit it.
var strictLayouts = []struct {
	shape  *regexp.Regexp
	layout string
}{
	{mmssRe, "4:05"},
	{hhmmssRe, "15:04:05"},
}

// ParseTimestamp parses a marker timestamp ("MM:SS.mmm" or "HH:MM:SS.mmm") into
// milliseconds.
//
// Strictly parsed values must be in clock range. Values that fail only the range
// check, such as "60:15.00", are summed field by field instead.
func ParseTimestamp(s string) (int64, error) {
	s = strings.TrimSpace(s)

	for _, sl := range strictLayouts {
		if !sl.shape.MatchString(s) {
			continue
		}
		if ms, err := parseStrict(sl.layout, s); err == nil {
			return ms, nil
		}
	}

	if ms, ok := parseTimestampFields(s); ok {
		return ms, nil
	}

	return 0, domainerrors.InvalidTimestampf("invalid marker timestamp: %q", s).
		WithDetails(map[string]string{"timestamp": s})
}

// parseStrict parses s as a clock time, rejecting out of range fields.
func parseStrict(layout, s string) (int64, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, err
	}
	return int64(t.Hour())*3_600_000 +
		int64(t.Minute())*60_000 +
		int64(t.Second())*1_000 +
		int64(t.Nanosecond()/int(time.Millisecond)), nil
}

// parseTimestampFields sums the fields of either shape without range validation.
func parseTimestampFields(s string) (int64, bool) {
	var hours, minutes, seconds, frac string
	if m := hhmmssRe.FindStringSubmatch(s); m != nil {
		hours, minutes, seconds, frac = m[1], m[2], m[3], m[4]
	} else if m := mmssRe.FindStringSubmatch(s); m != nil {
		hours, minutes, seconds, frac = "0", m[1], m[2], m[3]
	} else {
		return 0, false
	}

	h, err := strconv.ParseInt(hours, 10, 64)
	if err != nil {
		return 0, false
	}
	m, err := strconv.ParseInt(minutes, 10, 64)
	if err != nil {
		return 0, false
	}
	sec, err := strconv.ParseInt(seconds, 10, 64)
	if err != nil {
		return 0, false
	}

	total := fractionToMillis(frac)
	for _, f := range []struct{ v, unit int64 }{{h, 3_600_000}, {m, 60_000}, {sec, 1_000}} {
		if f.v > (math.MaxInt64-total)/f.unit {
			return 0, false
		}
		total += f.v * f.unit
	}
	return total, true
}

// fractionToMillis reads a decimal fraction of a second as milliseconds,
// so ".5", ".50" and ".500" are all 500.
func fractionToMillis(digits string) int64 {
	if len(digits) > 3 {
		digits = digits[:3]
	}
	for len(digits) < 3 {
		digits += "0"
	}
	ms, _ := strconv.ParseInt(digits, 10, 64)
	return ms
}
