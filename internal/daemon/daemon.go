package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"wavecast/internal/config"
	"wavecast/internal/jobs"
	"wavecast/internal/logging"
	"wavecast/internal/server"
	"wavecast/internal/taskstore"
)

// Daemon coordinates the background services and enforces single-instance
// execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *taskstore.Store
	pool   *jobs.Pool
	api    *server.Server

	janitor *Janitor

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *taskstore.Store, pool *jobs.Pool, api *server.Server, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || pool == nil || api == nil {
		return nil, errors.New("daemon requires config, store, pool, and api server")
	}
	lockPath := filepath.Join(cfg.Paths.LogDir, "wavecastd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		pool:     pool,
		api:      api,
		janitor:  NewJanitor(cfg, store, logger),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the pool, API server, and
// janitor.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another wavecast daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.pool.Start(runCtx); err != nil {
		d.releaseLock()
		cancel()
		d.cancel = nil
		return fmt.Errorf("start worker pool: %w", err)
	}
	if err := d.api.Start(runCtx); err != nil {
		d.pool.Stop()
		d.releaseLock()
		cancel()
		d.cancel = nil
		return fmt.Errorf("start api server: %w", err)
	}
	d.janitor.Start(runCtx)

	d.running.Store(true)
	d.logger.Info("wavecast daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.api.Addr()),
	)
	return nil
}

// Stop shuts the services down and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.Stop()
	d.pool.Stop()
	d.janitor.Stop()
	d.releaseLock()
	d.running.Store(false)
	d.logger.Info("wavecast daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr reports the API listen address while running.
func (d *Daemon) Addr() string {
	return d.api.Addr()
}

// LockPath returns the path of the single-instance lock file.
func (d *Daemon) LockPath() string {
	return d.lockPath
}

func (d *Daemon) releaseLock() {
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
}
