package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wavecast/internal/config"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Progress.BandFloor != 20 || cfg.Progress.BandCeiling != 90 {
		t.Fatalf("unexpected default band: %d..%d", cfg.Progress.BandFloor, cfg.Progress.BandCeiling)
	}
	if cfg.Video.Width != 1080 || cfg.Video.Height != 1920 || cfg.Video.FPS != 30 {
		t.Fatalf("unexpected default video format: %+v", cfg.Video)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Workers.Count != 2 {
		t.Fatalf("expected default worker count, got %d", cfg.Workers.Count)
	}
}

func TestLoadOverridesAndExpandsPaths(t *testing.T) {
	dir := t.TempDir()
	content := `
[paths]
upload_dir = "` + filepath.Join(dir, "in") + `"
output_dir = "` + filepath.Join(dir, "out") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"
api_bind = "127.0.0.1:0"

[progress]
band_floor = 10
band_ceiling = 95

[workers]
count = 4
`
	path := filepath.Join(dir, "wavecast.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Workers.Count != 4 {
		t.Fatalf("worker count = %d, want 4", cfg.Workers.Count)
	}
	if cfg.Progress.BandFloor != 10 || cfg.Progress.BandCeiling != 95 {
		t.Fatalf("unexpected band: %+v", cfg.Progress)
	}
	if !filepath.IsAbs(cfg.Paths.UploadDir) {
		t.Fatalf("upload dir not absolute: %q", cfg.Paths.UploadDir)
	}
	// Untouched sections retain defaults.
	if cfg.Video.WaveformColor != "0x00CED1" {
		t.Fatalf("waveform color = %q", cfg.Video.WaveformColor)
	}
}

func TestLoadRejectsInvertedBand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(path, []byte("[progress]\nband_floor = 90\nband_ceiling = 20\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for inverted band")
	} else if !strings.Contains(err.Error(), "band_floor") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	expanded, err := config.ExpandPath("~/wavecast-test")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if expanded != filepath.Join(home, "wavecast-test") {
		t.Fatalf("expanded = %q", expanded)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.UploadDir = filepath.Join(dir, "uploads")
	cfg.Paths.OutputDir = filepath.Join(dir, "output")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, d := range []string{cfg.Paths.UploadDir, cfg.Paths.OutputDir, cfg.Paths.LogDir} {
		info, err := os.Stat(d)
		if err != nil || !info.IsDir() {
			t.Fatalf("directory %q missing: %v", d, err)
		}
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[video]") {
		t.Fatal("sample config missing [video] section")
	}
}
