package config

const (
	defaultUploadDir            = "~/.local/share/wavecast/uploads"
	defaultOutputDir            = "~/.local/share/wavecast/output"
	defaultLogDir               = "~/.local/share/wavecast/logs"
	defaultAPIBind              = "127.0.0.1:7905"
	defaultWidth                = 1080
	defaultHeight               = 1920
	defaultFPS                  = 30
	defaultWaveformColor        = "0x00CED1"
	defaultWaveformHeight       = 150
	defaultWaveformY            = 1400
	defaultPreset               = "fast"
	defaultCRF                  = 23
	defaultAudioBitrate         = "192k"
	defaultBandFloor            = 20
	defaultBandCeiling          = 90
	defaultWorkerCount          = 2
	defaultQueueCapacity        = 8
	defaultJobTimeoutSeconds    = 1800
	defaultMaxUploadMiB         = 512
	defaultTaskRetentionHours   = 24
	defaultSweepIntervalSeconds = 300
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			UploadDir: defaultUploadDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			APIBind:   defaultAPIBind,
		},
		Video: Video{
			Width:          defaultWidth,
			Height:         defaultHeight,
			FPS:            defaultFPS,
			WaveformColor:  defaultWaveformColor,
			WaveformHeight: defaultWaveformHeight,
			WaveformY:      defaultWaveformY,
			Preset:         defaultPreset,
			CRF:            defaultCRF,
			AudioBitrate:   defaultAudioBitrate,
		},
		Progress: Progress{
			BandFloor:   defaultBandFloor,
			BandCeiling: defaultBandCeiling,
		},
		Workers: Workers{
			Count:             defaultWorkerCount,
			QueueCapacity:     defaultQueueCapacity,
			JobTimeoutSeconds: defaultJobTimeoutSeconds,
		},
		Uploads: Uploads{
			MaxUploadMiB: defaultMaxUploadMiB,
		},
		Retention: Retention{
			TaskRetentionHours:   defaultTaskRetentionHours,
			SweepIntervalSeconds: defaultSweepIntervalSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Tools: Tools{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
		},
	}
}
