// Package export renders timelines for the transcode step and for inspection.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	domainerrors "github.com/listenupapp/listenup-timeline/internal/errors"
	"github.com/listenupapp/listenup-timeline/internal/timeline"
)

const ffmetadataHeader = ";FFMETADATA1"

// Format names accepted by Write.
const (
	FormatJSON       = "json"
	FormatFFMetadata = "ffmetadata"
)

var ffmetadataEscaper = strings.NewReplacer(
	`\`, `\\`,
	"=", `\=`,
	";", `\;`,
	"#", `\#`,
	"\n", "\\\n",
)

// FFMetadata writes chapters as an ffmpeg metadata document with millisecond
// chapter bounds.
func FFMetadata(w io.Writer, chapters []timeline.ChapterMarker) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, ffmetadataHeader)
	for _, ch := range chapters {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "[CHAPTER]")
		fmt.Fprintln(bw, "TIMEBASE=1/1000")
		fmt.Fprintf(bw, "START=%d\n", ch.Start)
		fmt.Fprintf(bw, "END=%d\n", ch.End)
		fmt.Fprintf(bw, "title=%s\n", ffmetadataEscaper.Replace(ch.Title))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write ffmetadata: %w", err)
	}
	return nil
}

// FFMetadataString renders chapters with FFMetadata.
func FFMetadataString(chapters []timeline.ChapterMarker) string {
	var b strings.Builder
	_ = FFMetadata(&b, chapters)
	return b.String()
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// Write renders the report in the named format. The ffmetadata format only
// carries the merged chapters.
func Write(w io.Writer, format string, report any, chapters []timeline.ChapterMarker) error {
	switch format {
	case "", FormatJSON:
		return JSON(w, report)
	case FormatFFMetadata:
		return FFMetadata(w, chapters)
	default:
		return domainerrors.Validation(fmt.Sprintf("unknown output format %q", format)).
			WithDetails(map[string]string{"format": format})
	}
}
