// Package chapters inspects chapter lists for placeholder names and timing
// anomalies.
package chapters

import (
	"regexp"
	"strings"

	"github.com/listenupapp/listenup-timeline/internal/timeline"
)

var genericPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^chapter\s+\d+$`),
	regexp.MustCompile(`(?i)^chapter\s+(one|two|three|four|five|six|seven|eight|nine|ten)$`),
	regexp.MustCompile(`(?i)^track\s+\d+$`),
	regexp.MustCompile(`(?i)^part\s+\d+$`),
	regexp.MustCompile(`(?i)^part\s+(one|two|three|four|five|six|seven|eight|nine|ten)$`),
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`^\d+\.\s*$`),
	regexp.MustCompile(`^\d+\s*-\s*$`),
}

// genericThreshold is the share of placeholder names above which a list is
// considered mostly generic.
const genericThreshold = 0.5

// IsGenericName returns true if the chapter name is a placeholder.
func IsGenericName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return true
	}

	for _, pattern := range genericPatterns {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}

// Analysis summarises a chapter list.
type Analysis struct {
	Total          int     `json:"total"`
	GenericCount   int     `json:"genericCount"`
	GenericPercent float64 `json:"genericPercent"`
	MostlyGeneric  bool    `json:"mostlyGeneric"`
	// Overlaps counts chapters starting before the previous one ends, which
	// happens when a recurring title is extended across later parts.
	Overlaps   int   `json:"overlaps"`
	Gaps       int   `json:"gaps"`
	ShortestMs int64 `json:"shortestMs"`
	LongestMs  int64 `json:"longestMs"`
}

// Analyze returns statistics about the chapter names and bounds, in list order.
func Analyze(chapters []timeline.ChapterMarker) Analysis {
	if len(chapters) == 0 {
		return Analysis{}
	}

	a := Analysis{Total: len(chapters), ShortestMs: -1}
	for i, ch := range chapters {
		if IsGenericName(ch.Title) {
			a.GenericCount++
		}

		length := ch.End - ch.Start
		if a.ShortestMs < 0 || length < a.ShortestMs {
			a.ShortestMs = length
		}
		a.LongestMs = max(a.LongestMs, length)

		if i == 0 {
			continue
		}
		prev := chapters[i-1]
		switch {
		case ch.Start < prev.End:
			a.Overlaps++
		case ch.Start > prev.End:
			a.Gaps++
		}
	}

	a.GenericPercent = float64(a.GenericCount) / float64(a.Total)
	a.MostlyGeneric = a.GenericPercent > genericThreshold
	return a
}
