package media_test

import (
	"context"
	"path/filepath"
	"testing"

	"wavecast/internal/media"
	"wavecast/internal/testsupport"
)

func TestProbeDuration(t *testing.T) {
	dir := t.TempDir()
	binary := testsupport.StubBinary(t, filepath.Join(dir, "bin"), "ffprobe", "#!/bin/sh\necho '184.32'\n")
	audio := filepath.Join(dir, "audio.mp3")
	testsupport.WriteFile(t, audio, []byte("mp3"))

	seconds, err := media.NewProbe(binary).Duration(context.Background(), audio)
	if err != nil {
		t.Fatalf("Duration failed: %v", err)
	}
	if seconds != 184.32 {
		t.Fatalf("duration = %f, want 184.32", seconds)
	}
}

func TestProbeDurationUnparseable(t *testing.T) {
	dir := t.TempDir()
	binary := testsupport.StubBinary(t, filepath.Join(dir, "bin"), "ffprobe", "#!/bin/sh\necho 'N/A'\n")

	seconds, err := media.NewProbe(binary).Duration(context.Background(), filepath.Join(dir, "x.mp3"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if seconds != 0 {
		t.Fatalf("duration = %f, want 0", seconds)
	}
}

func TestProbeDurationToolFailure(t *testing.T) {
	dir := t.TempDir()
	binary := testsupport.StubBinary(t, filepath.Join(dir, "bin"), "ffprobe", "#!/bin/sh\nexit 1\n")

	seconds, err := media.NewProbe(binary).Duration(context.Background(), filepath.Join(dir, "x.mp3"))
	if err == nil {
		t.Fatal("expected tool failure")
	}
	if seconds != 0 {
		t.Fatalf("duration = %f, want 0", seconds)
	}
}

func TestProbeDurationRequiresPath(t *testing.T) {
	if _, err := media.NewProbe("ffprobe").Duration(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
