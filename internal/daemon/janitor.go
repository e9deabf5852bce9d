package daemon

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"wavecast/internal/config"
	"wavecast/internal/logging"
	"wavecast/internal/taskstore"
)

// Janitor evicts terminal tasks past their retention window and removes the
// files namespaced by their ids.
type Janitor struct {
	cfg    *config.Config
	store  *taskstore.Store
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewJanitor builds a janitor over the given store.
func NewJanitor(cfg *config.Config, store *taskstore.Store, logger *slog.Logger) *Janitor {
	return &Janitor{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "janitor"),
	}
}

// Start launches the sweep loop.
func (j *Janitor) Start(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	go j.run(runCtx)
}

// Stop terminates the sweep loop and waits for it to settle.
func (j *Janitor) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	j.wg.Wait()
}

func (j *Janitor) run(ctx context.Context) {
	defer j.wg.Done()
	ticker := time.NewTicker(j.cfg.SweepInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep evicts terminal tasks older than the retention window and deletes
// their upload and output files.
func (j *Janitor) Sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-j.cfg.TaskRetention())
	evicted, err := j.store.EvictTerminalBefore(ctx, cutoff)
	if err != nil {
		j.logger.Error("retention sweep failed", logging.Error(err))
		return
	}
	if len(evicted) == 0 {
		return
	}
	for _, task := range evicted {
		j.removeTaskFiles(task.ID)
		j.logger.Info("task evicted",
			logging.String(logging.FieldTaskID, task.ID),
			logging.String("status", string(task.Status)),
		)
	}
}

// removeTaskFiles deletes every file carrying the task's id prefix in the
// upload and output directories. Shared assets like the default cover are
// never id-prefixed and survive sweeps.
func (j *Janitor) removeTaskFiles(id string) {
	for _, dir := range []string{j.cfg.Paths.UploadDir, j.cfg.Paths.OutputDir} {
		matches, err := filepath.Glob(filepath.Join(dir, id+"_*"))
		if err != nil {
			continue
		}
		for _, match := range matches {
			if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
				j.logger.Warn("failed to remove task file",
					logging.String(logging.FieldTaskID, id),
					logging.String("path", match),
					logging.Error(err),
				)
			}
		}
	}
}
