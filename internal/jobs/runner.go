package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"wavecast/internal/config"
	"wavecast/internal/logging"
	"wavecast/internal/media"
	"wavecast/internal/taskstore"
)

// Encoder renders one cover+audio pair into a video file while streaming
// elapsed-time progress events.
type Encoder interface {
	Transform(ctx context.Context, req media.TransformRequest, progress func(elapsed time.Duration)) error
}

// DurationProber measures the playable length of an audio file in seconds.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Runner drives a single task from queued to a terminal status.
type Runner struct {
	cfg     *config.Config
	store   *taskstore.Store
	encoder Encoder
	prober  DurationProber
	logger  *slog.Logger
}

// NewRunner wires a runner against the given store and media tools.
func NewRunner(cfg *config.Config, store *taskstore.Store, encoder Encoder, prober DurationProber, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:     cfg,
		store:   store,
		encoder: encoder,
		prober:  prober,
		logger:  logging.NewComponentLogger(logger, "runner"),
	}
}

// Run executes the transform for task and records the outcome in the store.
// The encode is bounded by the configured job timeout; hitting the deadline
// kills the encoder process and fails the task.
func (r *Runner) Run(ctx context.Context, task *taskstore.Task) error {
	if task == nil {
		return errors.New("task required")
	}
	logger := r.logger.With(logging.String(logging.FieldTaskID, task.ID))

	// Store writes must survive the job deadline so a timed-out encode can
	// still be marked failed.
	storeCtx := context.WithoutCancel(ctx)

	jobCtx := ctx
	cancel := func() {}
	timeout := r.cfg.JobTimeout()
	if timeout > 0 {
		jobCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	if err := r.store.SetProcessing(storeCtx, task.ID, 10); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	logger.Info("transform started", logging.String("audio", task.AudioFile))

	band := media.Band{
		Floor:   r.cfg.Progress.BandFloor,
		Ceiling: r.cfg.Progress.BandCeiling,
	}

	totalSeconds, err := r.prober.Duration(jobCtx, task.AudioFile)
	if err != nil {
		// Encoding still works without a known duration; progress just
		// holds at the band floor until completion.
		logger.Warn("audio duration probe failed", logging.Error(err))
		totalSeconds = 0
	}

	if err := r.store.UpdateProgress(storeCtx, task.ID, band.Floor); err != nil {
		logger.Warn("progress update failed", logging.Error(err))
	}

	req := media.TransformRequest{
		CoverPath:  task.CoverFile,
		AudioPath:  task.AudioFile,
		OutputPath: task.OutputFile,
		Graph: media.WaveformVideoGraph(media.TransformSpec{
			Width:          r.cfg.Video.Width,
			Height:         r.cfg.Video.Height,
			FPS:            r.cfg.Video.FPS,
			WaveformColor:  r.cfg.Video.WaveformColor,
			WaveformHeight: r.cfg.Video.WaveformHeight,
			WaveformY:      r.cfg.Video.WaveformY,
		}),
		FPS:          r.cfg.Video.FPS,
		Preset:       r.cfg.Video.Preset,
		CRF:          r.cfg.Video.CRF,
		AudioBitrate: r.cfg.Video.AudioBitrate,
	}

	started := time.Now()
	encodeErr := r.encoder.Transform(jobCtx, req, func(elapsed time.Duration) {
		percent := band.Map(elapsed, totalSeconds)
		if err := r.store.UpdateProgress(storeCtx, task.ID, percent); err != nil {
			logger.Warn("progress update failed", logging.Error(err))
		}
	})
	if encodeErr != nil {
		message := encodeErr.Error()
		if errors.Is(jobCtx.Err(), context.DeadlineExceeded) {
			message = fmt.Sprintf("transform timed out after %s", timeout)
		}
		if err := r.store.MarkFailed(storeCtx, task.ID, message); err != nil {
			logger.Error("failed to record transform failure", logging.Error(err))
		}
		logger.Error("transform failed",
			logging.Error(encodeErr),
			logging.Duration("elapsed", time.Since(started)),
		)
		return encodeErr
	}

	if err := r.store.MarkCompleted(storeCtx, task.ID, task.OutputFile); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	logger.Info("transform completed",
		logging.String("output", task.OutputFile),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}
