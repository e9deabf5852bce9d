package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"wavecast/internal/api"
	"wavecast/internal/config"
	"wavecast/internal/jobs"
	"wavecast/internal/logging"
	"wavecast/internal/media"
	"wavecast/internal/server"
	"wavecast/internal/taskstore"
	"wavecast/internal/testsupport"
)

type instantEncoder struct{}

func (instantEncoder) Transform(ctx context.Context, req media.TransformRequest, progress func(time.Duration)) error {
	progress(60 * time.Second)
	return os.WriteFile(req.OutputPath, []byte("mp4-bytes"), 0o644)
}

type fixedProber struct{}

func (fixedProber) Duration(ctx context.Context, path string) (float64, error) {
	return 60, nil
}

type stubVersioner struct{}

func (stubVersioner) Version(ctx context.Context) (string, error) {
	return "ffmpeg version 7.1", nil
}

func newDaemon(t *testing.T, cfg *config.Config, store *taskstore.Store) *Daemon {
	t.Helper()
	logger := logging.NewNop()
	runner := jobs.NewRunner(cfg, store, instantEncoder{}, fixedProber{}, logger)
	pool := jobs.NewPool(cfg.Workers.Count, cfg.Workers.QueueCapacity, runner, logger)
	srv := server.New(cfg, store, pool, stubVersioner{}, logger)
	d, err := New(cfg, store, pool, srv, logger)
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	return d
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDefaultCover())
	store := testsupport.MustOpenStore(t, cfg)
	d := newDaemon(t, cfg, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("start daemon: %v", err)
	}
	defer d.Stop()

	if d.Addr() == "" {
		t.Fatal("expected bound api address")
	}
	if _, err := os.Stat(d.LockPath()); err != nil {
		t.Fatalf("lock file missing: %v", err)
	}

	d.Stop()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("restart after stop: %v", err)
	}
}

func TestDaemonSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDefaultCover())
	store := testsupport.MustOpenStore(t, cfg)
	first := newDaemon(t, cfg, store)

	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("start first daemon: %v", err)
	}
	defer first.Stop()

	second := newDaemon(t, cfg, store)
	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("expected second instance to be rejected")
	}
}

func TestDaemonEndToEnd(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDefaultCover())
	store := testsupport.MustOpenStore(t, cfg)
	d := newDaemon(t, cfg, store)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("start daemon: %v", err)
	}
	defer d.Stop()

	audioPath := filepath.Join(t.TempDir(), "episode.mp3")
	testsupport.WriteFile(t, audioPath, []byte("audio-bytes"))

	client := api.NewClient("http://" + d.Addr())
	upload, err := client.Submit(ctx, audioPath, "")
	if err != nil {
		t.Fatalf("submit upload: %v", err)
	}

	final, err := client.WaitForCompletion(ctx, upload.TaskID, 10*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("wait for completion: %v", err)
	}
	if final.Status != "completed" || final.Progress != 100 {
		t.Fatalf("unexpected final status %+v", final)
	}

	downloaded, err := client.Download(ctx, upload.TaskID, t.TempDir())
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	data, err := os.ReadFile(downloaded)
	if err != nil || string(data) != "mp4-bytes" {
		t.Fatalf("downloaded contents = %q, err = %v", data, err)
	}
}
