package media

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Probe queries media metadata through ffprobe.
type Probe struct {
	binary string
}

// NewProbe constructs a probe around the given ffprobe binary.
func NewProbe(binary string) *Probe {
	if binary == "" {
		binary = "ffprobe"
	}
	return &Probe{binary: binary}
}

// Duration returns the total playback length of a media file in seconds.
// When the tool fails or reports nothing parseable, 0 is returned along with
// the underlying error; callers treat 0 as "unknown duration".
func (p *Probe) Duration(ctx context.Context, path string) (float64, error) {
	if path == "" {
		return 0, fmt.Errorf("media path required")
	}
	cmd := commandContext(
		ctx,
		p.binary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("probe duration: %w", err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("negative duration %f", seconds)
	}
	return seconds, nil
}
