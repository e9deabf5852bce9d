package media_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"wavecast/internal/media"
	"wavecast/internal/testsupport"
)

// fakeEncoderScript emits a handful of progress lines on stdout, writes the
// requested output file (last argument), and exits 0.
const fakeEncoderScript = `#!/bin/sh
for arg; do out="$arg"; done
echo "frame=1"
echo "out_time_ms=1000000"
echo "out_time_ms=2000000"
echo "progress=end"
echo "encoded" > "$out"
exit 0
`

const failingEncoderScript = `#!/bin/sh
echo "Invalid data found when processing input" >&2
exit 1
`

func transformRequest(t *testing.T, dir string) media.TransformRequest {
	t.Helper()
	cover := filepath.Join(dir, "cover.jpg")
	audio := filepath.Join(dir, "audio.mp3")
	testsupport.WriteFile(t, cover, []byte("jpg"))
	testsupport.WriteFile(t, audio, []byte("mp3"))
	return media.TransformRequest{
		CoverPath:    cover,
		AudioPath:    audio,
		OutputPath:   filepath.Join(dir, "out.mp4"),
		Graph:        media.WaveformVideoGraph(defaultSpec()),
		FPS:          30,
		Preset:       "fast",
		CRF:          23,
		AudioBitrate: "192k",
	}
}

func TestTransformStreamsProgressAndSucceeds(t *testing.T) {
	dir := t.TempDir()
	binary := testsupport.StubBinary(t, filepath.Join(dir, "bin"), "ffmpeg", fakeEncoderScript)

	req := transformRequest(t, dir)
	client := media.NewFFmpeg(binary)

	var elapsed []time.Duration
	err := client.Transform(context.Background(), req, func(d time.Duration) {
		elapsed = append(elapsed, d)
	})
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if len(elapsed) != 2 || elapsed[0] != time.Second || elapsed[1] != 2*time.Second {
		t.Fatalf("unexpected progress timestamps: %v", elapsed)
	}
	if _, err := os.Stat(req.OutputPath); err != nil {
		t.Fatalf("output file missing: %v", err)
	}
}

func TestTransformFailureCarriesStderr(t *testing.T) {
	dir := t.TempDir()
	binary := testsupport.StubBinary(t, filepath.Join(dir, "bin"), "ffmpeg", failingEncoderScript)

	err := media.NewFFmpeg(binary).Transform(context.Background(), transformRequest(t, dir), nil)
	if err == nil {
		t.Fatal("expected transform failure")
	}
	if !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("error missing stderr diagnostics: %v", err)
	}
}

func TestTransformMissingBinary(t *testing.T) {
	dir := t.TempDir()
	err := media.NewFFmpeg(filepath.Join(dir, "missing-ffmpeg")).Transform(context.Background(), transformRequest(t, dir), nil)
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestTransformValidatesRequest(t *testing.T) {
	client := media.NewFFmpeg("ffmpeg")
	if err := client.Transform(context.Background(), media.TransformRequest{}, nil); err == nil {
		t.Fatal("expected error for empty request")
	}
}

func TestTransformHonorsContextCancellation(t *testing.T) {
	dir := t.TempDir()
	binary := testsupport.StubBinary(t, filepath.Join(dir, "bin"), "ffmpeg", "#!/bin/sh\nsleep 30\n")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := media.NewFFmpeg(binary).Transform(ctx, transformRequest(t, dir), nil)
	if err == nil {
		t.Fatal("expected error after context deadline")
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("transform did not stop promptly after cancellation")
	}
}

func TestVersion(t *testing.T) {
	dir := t.TempDir()
	binary := testsupport.StubBinary(t, filepath.Join(dir, "bin"), "ffmpeg",
		"#!/bin/sh\necho 'ffmpeg version 7.1 Copyright (c) 2000-2024'\necho 'built with gcc'\n")

	version, err := media.NewFFmpeg(binary).Version(context.Background())
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if version != "ffmpeg version 7.1 Copyright (c) 2000-2024" {
		t.Fatalf("unexpected version line: %q", version)
	}
}

func TestVersionMissingBinary(t *testing.T) {
	if _, err := media.NewFFmpeg(filepath.Join(t.TempDir(), "nope")).Version(context.Background()); err == nil {
		t.Fatal("expected error for missing binary")
	}
}
