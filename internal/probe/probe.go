// Package probe measures the decoded duration of audio parts.
package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/simonhull/audiometa"
)

// Prober measures the playable duration of an audio file.
type Prober interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// Func adapts a function to the Prober interface.
type Func func(ctx context.Context, path string) (time.Duration, error)

// Duration calls f.
func (f Func) Duration(ctx context.Context, path string) (time.Duration, error) {
	return f(ctx, path)
}

// ErrNoDuration is returned when a file parses but reports no duration.
var ErrNoDuration = errors.New("no duration reported")

// AudiometaProber reads durations with the audiometa parser, without spawning a process.
type AudiometaProber struct{}

// NewAudiometaProber creates an audiometa-backed prober.
func NewAudiometaProber() *AudiometaProber {
	return &AudiometaProber{}
}

// Duration opens path and returns the audio duration audiometa computes from the
// stream headers.
func (p *AudiometaProber) Duration(ctx context.Context, path string) (time.Duration, error) {
	file, err := audiometa.OpenContext(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("audiometa %s: %w", path, err)
	}
	defer file.Close()

	if file.Audio.Duration <= 0 {
		return 0, fmt.Errorf("audiometa %s: %w", path, ErrNoDuration)
	}
	return file.Audio.Duration, nil
}

// Chain tries each prober in order and returns the first duration found.
type Chain []Prober

// Duration returns the first successful measurement, or all errors joined.
func (c Chain) Duration(ctx context.Context, path string) (time.Duration, error) {
	if len(c) == 0 {
		return 0, fmt.Errorf("probe %s: no probers configured", path)
	}

	var errs []error
	for _, p := range c {
		d, err := p.Duration(ctx, path)
		if err == nil {
			return d, nil
		}
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		errs = append(errs, err)
	}
	return 0, errors.Join(errs...)
}
