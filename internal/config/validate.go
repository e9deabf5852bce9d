package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateProgress(); err != nil {
		return err
	}
	if err := c.validateWorkers(); err != nil {
		return err
	}
	if err := c.validateRetention(); err != nil {
		return err
	}
	if err := c.validateUploads(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.APIBind == "" {
		return errors.New("paths.api_bind must be set")
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		return errors.New("video.width and video.height must be positive")
	}
	if c.Video.FPS <= 0 {
		return errors.New("video.fps must be positive")
	}
	if c.Video.WaveformHeight <= 0 {
		return errors.New("video.waveform_height must be positive")
	}
	if c.Video.WaveformY < 0 || c.Video.WaveformY >= c.Video.Height {
		return fmt.Errorf("video.waveform_y must be within [0, %d)", c.Video.Height)
	}
	if c.Video.CRF < 0 || c.Video.CRF > 51 {
		return errors.New("video.crf must be between 0 and 51")
	}
	if c.Video.WaveformColor == "" {
		return errors.New("video.waveform_color must be set")
	}
	return nil
}

func (c *Config) validateProgress() error {
	if c.Progress.BandFloor < 0 || c.Progress.BandCeiling > 100 {
		return errors.New("progress band must lie within [0, 100]")
	}
	if c.Progress.BandFloor >= c.Progress.BandCeiling {
		return errors.New("progress.band_floor must be below progress.band_ceiling")
	}
	return nil
}

func (c *Config) validateWorkers() error {
	if c.Workers.Count <= 0 {
		return errors.New("workers.count must be positive")
	}
	if c.Workers.QueueCapacity < 0 {
		return errors.New("workers.queue_capacity must not be negative")
	}
	if c.Workers.JobTimeoutSeconds <= 0 {
		return errors.New("workers.job_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateRetention() error {
	if c.Retention.TaskRetentionHours <= 0 {
		return errors.New("retention.task_retention_hours must be positive")
	}
	if c.Retention.SweepIntervalSeconds <= 0 {
		return errors.New("retention.sweep_interval_seconds must be positive")
	}
	return nil
}

func (c *Config) validateUploads() error {
	if c.Uploads.MaxUploadMiB <= 0 {
		return errors.New("uploads.max_upload_mib must be positive")
	}
	return nil
}
