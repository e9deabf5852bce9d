package config

import (
	"fmt"
	"strings"
)

// normalize cleans string fields and expands path values so the rest of the
// codebase never deals with "~" or relative directories.
func (c *Config) normalize() error {
	pathFields := []struct {
		name  string
		value *string
	}{
		{"paths.upload_dir", &c.Paths.UploadDir},
		{"paths.output_dir", &c.Paths.OutputDir},
		{"paths.log_dir", &c.Paths.LogDir},
	}
	for _, field := range pathFields {
		trimmed := strings.TrimSpace(*field.value)
		if trimmed == "" {
			return fmt.Errorf("%s must not be empty", field.name)
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("expand %s: %w", field.name, err)
		}
		*field.value = expanded
	}

	// The default cover is optional; submissions without a cover fail when it
	// is unset and no upload is provided.
	if trimmed := strings.TrimSpace(c.Paths.DefaultCover); trimmed != "" {
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("expand paths.default_cover: %w", err)
		}
		c.Paths.DefaultCover = expanded
	} else {
		c.Paths.DefaultCover = ""
	}

	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Video.WaveformColor = strings.TrimSpace(c.Video.WaveformColor)
	c.Video.Preset = strings.TrimSpace(c.Video.Preset)
	c.Video.AudioBitrate = strings.TrimSpace(c.Video.AudioBitrate)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)

	return nil
}
