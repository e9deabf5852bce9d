package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	UploadDir    string `toml:"upload_dir"`
	OutputDir    string `toml:"output_dir"`
	LogDir       string `toml:"log_dir"`
	DefaultCover string `toml:"default_cover"`
	APIBind      string `toml:"api_bind"`
}

// Video contains the fixed output format and waveform rendering parameters.
type Video struct {
	Width          int    `toml:"width"`
	Height         int    `toml:"height"`
	FPS            int    `toml:"fps"`
	WaveformColor  string `toml:"waveform_color"`
	WaveformHeight int    `toml:"waveform_height"`
	WaveformY      int    `toml:"waveform_y"`
	Preset         string `toml:"preset"`
	CRF            int    `toml:"crf"`
	AudioBitrate   string `toml:"audio_bitrate"`
}

// Progress contains the completion band reserved for the encode phase.
// Percentages outside the band cover setup and teardown.
type Progress struct {
	BandFloor   int `toml:"band_floor"`
	BandCeiling int `toml:"band_ceiling"`
}

// Workers contains worker pool sizing and per-job deadlines.
type Workers struct {
	Count             int `toml:"count"`
	QueueCapacity     int `toml:"queue_capacity"`
	JobTimeoutSeconds int `toml:"job_timeout_seconds"`
}

// Uploads contains limits applied to incoming multipart payloads.
type Uploads struct {
	MaxUploadMiB int `toml:"max_upload_mib"`
}

// Retention contains the eviction policy for terminal tasks and their files.
type Retention struct {
	TaskRetentionHours   int `toml:"task_retention_hours"`
	SweepIntervalSeconds int `toml:"sweep_interval_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Tools contains the external media tool binaries.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg_binary"`
	FFprobe string `toml:"ffprobe_binary"`
}

// Config encapsulates all configuration values for wavecast.
//
// Configuration sections by subsystem:
//   - Paths: upload/output/log directories, default cover, API bind address
//   - Video: output resolution, frame rate, codec tuning, waveform rendering
//   - Progress: completion band reserved for the encode phase
//   - Workers: pool size, backlog capacity, job timeout
//   - Uploads: multipart size limit
//   - Retention: terminal task eviction policy
//   - Logging: log format and level
//   - Tools: ffmpeg/ffprobe binary overrides
type Config struct {
	Paths     Paths     `toml:"paths"`
	Video     Video     `toml:"video"`
	Progress  Progress  `toml:"progress"`
	Workers   Workers   `toml:"workers"`
	Uploads   Uploads   `toml:"uploads"`
	Retention Retention `toml:"retention"`
	Logging   Logging   `toml:"logging"`
	Tools     Tools     `toml:"tools"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/wavecast/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("wavecast.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the daemon writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.UploadDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name.
func (c *Config) FFmpegBinary() string {
	if binary := strings.TrimSpace(c.Tools.FFmpeg); binary != "" {
		return binary
	}
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for duration probing.
func (c *Config) FFprobeBinary() string {
	if binary := strings.TrimSpace(c.Tools.FFprobe); binary != "" {
		return binary
	}
	return "ffprobe"
}

// JobTimeout returns the per-job deadline for the transform process.
func (c *Config) JobTimeout() time.Duration {
	return time.Duration(c.Workers.JobTimeoutSeconds) * time.Second
}

// TaskRetention returns how long terminal tasks and their files are kept.
func (c *Config) TaskRetention() time.Duration {
	return time.Duration(c.Retention.TaskRetentionHours) * time.Hour
}

// SweepInterval returns the eviction sweep cadence.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Retention.SweepIntervalSeconds) * time.Second
}

// MaxUploadBytes returns the multipart request body limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Uploads.MaxUploadMiB) << 20
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
