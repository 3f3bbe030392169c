package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// FFprobeProber reads durations from ffprobe's container report.
type FFprobeProber struct {
	binary string
	run    func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewFFprobeProber creates a prober that runs the given ffprobe binary.
// An empty binary means "ffprobe" from PATH.
func NewFFprobeProber(binary string) *FFprobeProber {
	if binary == "" {
		binary = "ffprobe"
	}
	return &FFprobeProber{binary: binary, run: runCommand}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration runs ffprobe on path and parses format.duration.
func (p *FFprobeProber) Duration(ctx context.Context, path string) (time.Duration, error) {
	output, err := p.run(ctx, p.binary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var out ffprobeOutput
	if err := json.Unmarshal(output, &out); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if out.Format.Duration == "" {
		return 0, fmt.Errorf("ffprobe %s: %w", path, ErrNoDuration)
	}

	seconds, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: invalid duration %q: %w", path, out.Format.Duration, err)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("ffprobe %s: %w", path, ErrNoDuration)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
