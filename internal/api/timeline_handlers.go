package api

import (
	"bytes"
	"context"
	"mime"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/listenup-timeline/internal/chapters"
	"github.com/listenupapp/listenup-timeline/internal/export"
	"github.com/listenupapp/listenup-timeline/internal/openbook"
	"github.com/listenupapp/listenup-timeline/internal/service"
	"github.com/listenupapp/listenup-timeline/internal/timeline"
)

func (s *Server) registerTimelineRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:  "buildOpenbookTimeline",
		Method:       http.MethodPost,
		Path:         "/api/v1/timelines/openbook",
		Summary:      "Build timeline from openbook",
		Description:  "Builds per-part and merged chapters from an openbook JSON document or a loan page embedding one",
		Tags:         []string{"Timelines"},
		MaxBodyBytes: MaxBodyBytes,
	}, s.handleOpenbookTimeline)

	huma.Register(s.api, huma.Operation{
		OperationID:  "buildMarkersTimeline",
		Method:       http.MethodPost,
		Path:         "/api/v1/timelines/markers",
		Summary:      "Build timeline from part markers",
		Description:  "Builds merged chapters from each part's embedded marker XML and decoded duration",
		Tags:         []string{"Timelines"},
		MaxBodyBytes: MaxBodyBytes,
	}, s.handleMarkersTimeline)
}

// === DTOs ===

// OpenbookTimelineInput carries an openbook JSON document or an HTML loan page.
type OpenbookTimelineInput struct {
	ContentType string `header:"Content-Type"`
	BaseURL     string `query:"baseUrl" doc:"Base URL for part downloads, overriding the openbook's own"`
	FFMetadata  bool   `query:"ffmetadata" doc:"Include an ffmetadata rendering of the merged chapters"`
	RawBody     []byte
}

// MarkerPartRequest is one part's extracted markers.
type MarkerPartRequest struct {
	Label      string `json:"label,omitempty" maxLength:"256" doc:"Display label for the part"`
	MarkersXML string `json:"markersXml,omitempty" doc:"Text of the part's marker frame; empty when the part has none"`
	DurationMs int64  `json:"durationMs" minimum:"0" doc:"Decoded duration of the part in milliseconds"`
}

// MarkersTimelineRequest is the request body for the markers timeline.
type MarkersTimelineRequest struct {
	Parts []MarkerPartRequest `json:"parts" minItems:"1" maxItems:"500" doc:"Parts in playback order"`
}

// MarkersTimelineInput wraps the markers request for Huma.
type MarkersTimelineInput struct {
	FFMetadata bool `query:"ffmetadata" doc:"Include an ffmetadata rendering of the merged chapters"`
	Body       MarkersTimelineRequest
}

// TimelineResponse contains a timeline run in API responses.
type TimelineResponse struct {
	RunID           string                   `json:"runId" doc:"Identifier of this run, also present in server logs"`
	Source          string                   `json:"source" enum:"openbook,markers" doc:"Input the timeline was built from"`
	Title           string                   `json:"title,omitempty" doc:"Book title"`
	Authors         []string                 `json:"authors,omitempty" doc:"Author names"`
	Narrators       []string                 `json:"narrators,omitempty" doc:"Narrator names"`
	Parts           []service.PartReport     `json:"parts" doc:"Per-part chapters in playback order"`
	Merged          []timeline.ChapterMarker `json:"merged" doc:"Chapters on the book-wide timeline"`
	TotalDurationMs int64                    `json:"totalDurationMs" doc:"Sum of part durations"`
	Analysis        chapters.Analysis        `json:"analysis" doc:"Placeholder names and timing anomalies in the merged chapters"`
	FFMetadata      string                   `json:"ffmetadata,omitempty" doc:"ffmetadata document for the merged chapters"`
}

// TimelineOutput wraps the timeline response for Huma.
type TimelineOutput struct {
	Body TimelineResponse
}

func (s *Server) handleOpenbookTimeline(ctx context.Context, input *OpenbookTimelineInput) (*TimelineOutput, error) {
	var (
		book *openbook.Openbook
		err  error
	)
	if isHTML(input.ContentType) {
		book, err = openbook.ExtractFromHTML(bytes.NewReader(input.RawBody))
	} else {
		book, err = openbook.Parse(input.RawBody)
	}
	if err != nil {
		return nil, err
	}
	if input.BaseURL != "" {
		book.DownloadBase = input.BaseURL
	}

	result, err := s.timeline.FromOpenbook(ctx, book)
	if err != nil {
		return nil, err
	}
	return toTimelineOutput(result, input.FFMetadata), nil
}

func (s *Server) handleMarkersTimeline(ctx context.Context, input *MarkersTimelineInput) (*TimelineOutput, error) {
	parts := make([]service.PartInput, len(input.Body.Parts))
	for i, p := range input.Body.Parts {
		parts[i] = service.PartInput{
			Label:      p.Label,
			MarkersXML: p.MarkersXML,
			DurationMs: p.DurationMs,
		}
	}

	result, err := s.timeline.FromMarkerParts(ctx, parts)
	if err != nil {
		return nil, err
	}
	return toTimelineOutput(result, input.FFMetadata), nil
}

func toTimelineOutput(r *service.Result, withFFMetadata bool) *TimelineOutput {
	resp := TimelineResponse{
		RunID:           r.RunID,
		Source:          r.Source,
		Title:           r.Title,
		Authors:         r.Authors,
		Narrators:       r.Narrators,
		Parts:           r.Parts,
		Merged:          r.Merged,
		TotalDurationMs: r.TotalDurationMs,
		Analysis:        r.Analysis,
	}
	if withFFMetadata {
		resp.FFMetadata = export.FFMetadataString(r.Merged)
	}
	return &TimelineOutput{Body: resp}
}

// isHTML reports whether the request declares a loan page. Other bodies are
// sniffed by openbook.Parse.
func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "text/html"
}
