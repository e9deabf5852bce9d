package jobs

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"wavecast/internal/config"
	"wavecast/internal/logging"
	"wavecast/internal/media"
	"wavecast/internal/taskstore"
	"wavecast/internal/testsupport"
)

type fakeEncoder struct {
	mu       sync.Mutex
	requests []media.TransformRequest
	emit     []time.Duration
	err      error
	block    bool
}

func (f *fakeEncoder) Transform(ctx context.Context, req media.TransformRequest, progress func(time.Duration)) error {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	for _, elapsed := range f.emit {
		progress(elapsed)
	}
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

func (f *fakeEncoder) lastRequest(t *testing.T) media.TransformRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("encoder never invoked")
	}
	return f.requests[len(f.requests)-1]
}

type fakeProber struct {
	seconds float64
	err     error
}

func (f *fakeProber) Duration(ctx context.Context, path string) (float64, error) {
	return f.seconds, f.err
}

func newQueuedTask(t *testing.T, cfg *config.Config, store *taskstore.Store) *taskstore.Task {
	t.Helper()
	id := taskstore.NewID()
	task, err := store.Create(context.Background(),
		id,
		filepath.Join(cfg.Paths.UploadDir, id+"_episode.mp3"),
		filepath.Join(cfg.Paths.UploadDir, id+"_cover.png"),
		filepath.Join(cfg.Paths.OutputDir, id+"_video.mp4"),
	)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func TestRunnerCompletesTask(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	encoder := &fakeEncoder{emit: []time.Duration{30 * time.Second, 60 * time.Second}}
	prober := &fakeProber{seconds: 60}
	runner := NewRunner(cfg, store, encoder, prober, logging.NewNop())

	task := newQueuedTask(t, cfg, store)
	if err := runner.Run(context.Background(), task); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	stored, err := store.GetByID(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if stored.Status != taskstore.StatusCompleted {
		t.Fatalf("status = %s, want completed", stored.Status)
	}
	if stored.Progress != 100 {
		t.Fatalf("progress = %d, want 100", stored.Progress)
	}
	if stored.OutputFile != task.OutputFile {
		t.Fatalf("output file = %q", stored.OutputFile)
	}

	req := encoder.lastRequest(t)
	if req.AudioPath != task.AudioFile || req.CoverPath != task.CoverFile {
		t.Fatalf("unexpected request inputs %+v", req)
	}
	if !strings.Contains(req.Graph.String(), "showwaves") {
		t.Fatalf("expected waveform graph, got %q", req.Graph.String())
	}
	if req.Preset != cfg.Video.Preset || req.CRF != cfg.Video.CRF {
		t.Fatalf("codec settings not propagated: %+v", req)
	}
}

func TestRunnerMapsProgressIntoBand(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	// Half the audio encoded, then the encoder dies: progress must sit at
	// the middle of the configured band.
	encoder := &fakeEncoder{
		emit: []time.Duration{30 * time.Second},
		err:  errors.New("encoder exited"),
	}
	runner := NewRunner(cfg, store, encoder, &fakeProber{seconds: 60}, logging.NewNop())

	task := newQueuedTask(t, cfg, store)
	if err := runner.Run(context.Background(), task); err == nil {
		t.Fatal("expected Run to report the encoder failure")
	}

	stored, err := store.GetByID(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	band := media.Band{Floor: cfg.Progress.BandFloor, Ceiling: cfg.Progress.BandCeiling}
	want := band.Map(30*time.Second, 60)
	if stored.Progress != want {
		t.Fatalf("progress = %d, want %d", stored.Progress, want)
	}
	if stored.Status != taskstore.StatusFailed {
		t.Fatalf("status = %s, want failed", stored.Status)
	}
	if stored.ErrorMsg != "encoder exited" {
		t.Fatalf("error message = %q", stored.ErrorMsg)
	}
}

func TestRunnerProbeFailureStillEncodes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	encoder := &fakeEncoder{emit: []time.Duration{45 * time.Second}}
	prober := &fakeProber{err: errors.New("ffprobe unavailable")}
	runner := NewRunner(cfg, store, encoder, prober, logging.NewNop())

	task := newQueuedTask(t, cfg, store)
	if err := runner.Run(context.Background(), task); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	stored, err := store.GetByID(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if stored.Status != taskstore.StatusCompleted {
		t.Fatalf("status = %s, want completed", stored.Status)
	}
}

func TestRunnerTimeoutFailsTask(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithJobTimeout(1))
	store := testsupport.MustOpenStore(t, cfg)
	encoder := &fakeEncoder{block: true}
	runner := NewRunner(cfg, store, encoder, &fakeProber{seconds: 60}, logging.NewNop())

	task := newQueuedTask(t, cfg, store)
	if err := runner.Run(context.Background(), task); err == nil {
		t.Fatal("expected Run to report the timeout")
	}

	stored, err := store.GetByID(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if stored.Status != taskstore.StatusFailed {
		t.Fatalf("status = %s, want failed", stored.Status)
	}
	if !strings.Contains(stored.ErrorMsg, "timed out") {
		t.Fatalf("error message = %q, want timeout mention", stored.ErrorMsg)
	}
}

func TestRunnerRejectsNilTask(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	runner := NewRunner(cfg, store, &fakeEncoder{}, &fakeProber{}, logging.NewNop())
	if err := runner.Run(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil task")
	}
}
