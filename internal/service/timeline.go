// Package service orchestrates timeline runs over the core builders, marker
// readers and duration probers.
package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/listenupapp/listenup-timeline/internal/chapters"
	domainerrors "github.com/listenupapp/listenup-timeline/internal/errors"
	"github.com/listenupapp/listenup-timeline/internal/id"
	"github.com/listenupapp/listenup-timeline/internal/logger"
	"github.com/listenupapp/listenup-timeline/internal/mediamarkers"
	"github.com/listenupapp/listenup-timeline/internal/openbook"
	"github.com/listenupapp/listenup-timeline/internal/probe"
	"github.com/listenupapp/listenup-timeline/internal/timeline"
)

// Sources of a timeline result.
const (
	SourceOpenbook = "openbook"
	SourceMarkers  = "markers"
)

// TimelineConfig configures the timeline service.
type TimelineConfig struct {
	SkipPartsWithoutMarkers bool
	BaseURL                 string
	MaxConcurrent           int
	ProbeTimeout            time.Duration
}

// TimelineService builds per-part and merged chapter timelines.
type TimelineService struct {
	prober    probe.Prober
	logger    *logger.Logger
	cfg       TimelineConfig
	readFrame func(path string) (string, error)
}

// NewTimelineService creates a new timeline service.
func NewTimelineService(prober probe.Prober, log *logger.Logger, cfg TimelineConfig) *TimelineService {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	return &TimelineService{
		prober:    prober,
		logger:    log,
		cfg:       cfg,
		readFrame: mediamarkers.ReadFile,
	}
}

// PartReport describes one part of a processed book.
type PartReport struct {
	ID            string                   `json:"id"`
	Index         int                      `json:"index"`
	Path          string                   `json:"path,omitempty"`
	URL           string                   `json:"url,omitempty"`
	DurationMs    int64                    `json:"durationMs"`
	FileLength    int64                    `json:"fileLength,omitempty"`
	SpinePosition int                      `json:"spinePosition"`
	Chapters      []timeline.ChapterMarker `json:"chapters"`
	Skipped       bool                     `json:"skipped,omitempty"`
}

// Result is the outcome of one timeline run.
type Result struct {
	RunID           string                   `json:"runId"`
	Source          string                   `json:"source"`
	Title           string                   `json:"title,omitempty"`
	Authors         []string                 `json:"authors,omitempty"`
	Narrators       []string                 `json:"narrators,omitempty"`
	Parts           []PartReport             `json:"parts"`
	Merged          []timeline.ChapterMarker `json:"merged"`
	TotalDurationMs int64                    `json:"totalDurationMs"`
	Analysis        chapters.Analysis        `json:"analysis"`
}

// PartInput is an already extracted part: its marker frame text and decoded duration.
type PartInput struct {
	Label      string
	MarkersXML string
	DurationMs int64
}

// FromOpenbook builds the timeline of a book from its loan metadata. The
// openbook's download base resolves part URLs, falling back to the configured base.
func (s *TimelineService) FromOpenbook(ctx context.Context, book *openbook.Openbook) (*Result, error) {
	if book == nil {
		return nil, domainerrors.Validation("openbook is required")
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runID, err := id.NewRunID()
	if err != nil {
		return nil, err
	}
	log := s.logger.WithRun(runID)

	base := book.DownloadBase
	if base == "" {
		base = s.cfg.BaseURL
	}

	tl, err := timeline.BuildFromTOC(base, book.TOC(), book.SpineItems())
	if err != nil {
		log.Warn("building timeline from openbook failed", "error", err)
		return nil, err
	}
	merged := timeline.MergeTOC(tl)

	result := &Result{
		RunID:           runID,
		Source:          SourceOpenbook,
		Title:           book.Title.String(),
		Authors:         book.Authors(),
		Narrators:       book.Narrators(),
		Parts:           make([]PartReport, 0, tl.Len()),
		Merged:          merged,
		TotalDurationMs: tl.TotalDuration(),
		Analysis:        chapters.Analyze(merged),
	}
	i := 0
	for partID, p := range tl.All() {
		i++
		result.Parts = append(result.Parts, PartReport{
			ID:            partID,
			Index:         i,
			URL:           p.URL,
			DurationMs:    p.AudioDuration,
			FileLength:    p.FileLength,
			SpinePosition: p.SpinePosition,
			Chapters:      p.Chapters,
		})
	}

	logBuilt(log, result)
	return result, nil
}

// partData is what one part contributes before assembly.
type partData struct {
	path       string
	text       string
	durationMs int64
}

// FromParts reads the marker frame and probes the decoded duration of each part
// file. Parts are read concurrently, bounded by MaxConcurrent, and assembled in
// the given order.
func (s *TimelineService) FromParts(ctx context.Context, paths []string) (*Result, error) {
	if len(paths) == 0 {
		return nil, domainerrors.Validation("at least one part is required")
	}

	runID, err := id.NewRunID()
	if err != nil {
		return nil, err
	}
	log := s.logger.WithRun(runID)

	data := make([]partData, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrent)

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			text, err := s.readFrame(path)
			if err != nil && !domainerrors.Is(err, domainerrors.ErrEmptyMarkerSet) {
				return err
			}

			duration, err := s.probe(gctx, path)
			if err != nil {
				return fmt.Errorf("part %d: %w", i+1, err)
			}

			data[i] = partData{path: path, text: text, durationMs: duration.Milliseconds()}
			log.WithPart(i+1, path).Debug("part read", logger.KeyDurationMs, data[i].durationMs)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s.assemble(runID, log, data)
}

// FromMarkerParts assembles parts whose marker text and durations were
// extracted elsewhere.
func (s *TimelineService) FromMarkerParts(ctx context.Context, inputs []PartInput) (*Result, error) {
	if len(inputs) == 0 {
		return nil, domainerrors.Validation("at least one part is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runID, err := id.NewRunID()
	if err != nil {
		return nil, err
	}
	log := s.logger.WithRun(runID)

	data := make([]partData, len(inputs))
	for i, in := range inputs {
		if in.DurationMs < 0 {
			return nil, domainerrors.ValidationWithDetails("part duration must not be negative",
				map[string]int{"part": i + 1})
		}
		data[i] = partData{path: in.Label, text: in.MarkersXML, durationMs: in.DurationMs}
	}

	return s.assemble(runID, log, data)
}

func (s *TimelineService) probe(ctx context.Context, path string) (time.Duration, error) {
	if s.cfg.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ProbeTimeout)
		defer cancel()
	}
	return s.prober.Duration(ctx, path)
}

// assemble builds each part's chapters and merges them. Parts without markers
// still advance the offset of later parts when they are skipped.
func (s *TimelineService) assemble(runID string, log *logger.Logger, data []partData) (*Result, error) {
	parts := make([]timeline.MarkerPart, 0, len(data))
	result := &Result{
		RunID:  runID,
		Source: SourceMarkers,
		Parts:  make([]PartReport, 0, len(data)),
	}

	for i, d := range data {
		index := i + 1
		partLog := log.WithPart(index, d.path)

		markers, err := mediamarkers.ParseXML(d.text)
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", index, err)
		}

		part, err := timeline.BuildFromMarkers(index, markers, d.durationMs)
		skipped := false
		if err != nil {
			if !domainerrors.Is(err, domainerrors.ErrEmptyMarkerSet) || !s.cfg.SkipPartsWithoutMarkers {
				return nil, err
			}
			partLog.Warn("part has no chapter markers, skipping")
			part = timeline.MarkerPart{Index: index, Duration: d.durationMs}
			skipped = true
		}

		parts = append(parts, part)
		result.Parts = append(result.Parts, PartReport{
			ID:         timeline.PartLabel(index),
			Index:      index,
			Path:       d.path,
			DurationMs: d.durationMs,
			Chapters:   part.Chapters,
			Skipped:    skipped,
		})
		result.TotalDurationMs += d.durationMs
	}

	result.Merged = timeline.MergeMarkers(parts)
	if len(result.Merged) == 0 {
		return nil, domainerrors.EmptyMarkerSet("no part carries chapter markers")
	}
	result.Analysis = chapters.Analyze(result.Merged)

	logBuilt(log, result)
	return result, nil
}

func logBuilt(log *logger.Logger, r *Result) {
	log.Info("timeline built",
		"source", r.Source,
		"parts", len(r.Parts),
		logger.KeyChapters, len(r.Merged),
		logger.KeyDurationMs, r.TotalDurationMs,
	)
	if r.Analysis.MostlyGeneric {
		log.Warn("most chapter titles are placeholders",
			"generic", r.Analysis.GenericCount,
			logger.KeyChapters, r.Analysis.Total,
		)
	}
}
