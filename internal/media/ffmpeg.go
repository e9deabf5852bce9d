package media

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

var commandContext = exec.CommandContext

// TransformRequest describes one cover+audio to video invocation.
type TransformRequest struct {
	CoverPath    string
	AudioPath    string
	OutputPath   string
	Graph        Graph
	FPS          int
	Preset       string
	CRF          int
	AudioBitrate string
}

// FFmpeg wraps the ffmpeg command-line tool.
type FFmpeg struct {
	binary string
}

// NewFFmpeg constructs a client around the given ffmpeg binary.
func NewFFmpeg(binary string) *FFmpeg {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{binary: binary}
}

// Version reports the tool's availability and its version banner line.
func (f *FFmpeg) Version(ctx context.Context) (string, error) {
	output, err := commandContext(ctx, f.binary, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("ffmpeg version: %w", err)
	}
	line, _, _ := strings.Cut(string(output), "\n")
	return strings.TrimSpace(line), nil
}

// Transform runs the encode as a subordinate process. Progress events stream
// on stdout as key=value lines while the encoded output goes to the target
// file; each recognized elapsed timestamp is delivered to the progress
// callback. The call blocks until the process exits.
func (f *FFmpeg) Transform(ctx context.Context, req TransformRequest, progress func(elapsed time.Duration)) error {
	if req.CoverPath == "" || req.AudioPath == "" {
		return errors.New("cover and audio paths required")
	}
	if req.OutputPath == "" {
		return errors.New("output path required")
	}

	args := []string{
		"-y",
		"-i", req.CoverPath,
		"-i", req.AudioPath,
		"-filter_complex", req.Graph.String(),
		"-map", "[v]",
		"-map", "1:a",
		"-c:v", "libx264",
		"-preset", req.Preset,
		"-crf", strconv.Itoa(req.CRF),
		"-c:a", "aac",
		"-b:a", req.AudioBitrate,
		"-r", strconv.Itoa(req.FPS),
		"-pix_fmt", "yuv420p",
		"-shortest",
		"-progress", "pipe:1",
		"-nostats",
		"-hide_banner",
		req.OutputPath,
	}

	cmd := commandContext(ctx, f.binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	diagnostics := newTailBuffer(4096)
	cmd.Stderr = diagnostics
	// Orphaned child processes can hold the stdout pipe open after the
	// context kills ffmpeg; force the pipe closed so the progress loop and
	// Wait return instead of hanging on them.
	cmd.WaitDelay = 2 * time.Second

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		elapsed, ok := ParseProgressLine(scanner.Text())
		if !ok {
			continue
		}
		if progress != nil {
			progress(elapsed)
		}
	}
	// Scanner errors surface through Wait; the pipe closes when the process
	// exits either way.

	if err := cmd.Wait(); err != nil {
		if detail := diagnostics.String(); detail != "" {
			return fmt.Errorf("ffmpeg transform: %w: %s", err, detail)
		}
		return fmt.Errorf("ffmpeg transform: %w", err)
	}
	return nil
}

// tailBuffer keeps the last max bytes written to it, so failure diagnostics
// carry the end of the stderr stream where ffmpeg reports its actual error.
type tailBuffer struct {
	max  int
	data []byte
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	if len(b.data) > b.max {
		b.data = b.data[len(b.data)-b.max:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	return strings.TrimSpace(string(b.data))
}
