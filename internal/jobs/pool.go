package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"wavecast/internal/logging"
	"wavecast/internal/taskstore"
)

// ErrSaturated reports that the pool's backlog is full and the submission
// was rejected without queuing.
var ErrSaturated = errors.New("worker pool saturated")

// Executor runs one task to a terminal status.
type Executor interface {
	Run(ctx context.Context, task *taskstore.Task) error
}

// Pool executes tasks on a fixed number of workers fed from a bounded
// backlog. Submissions never block: when the backlog is full the caller
// gets ErrSaturated and decides how to shed load.
type Pool struct {
	executor Executor
	logger   *slog.Logger
	backlog  chan *taskstore.Task

	mu      sync.Mutex
	workers int
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewPool sizes a pool with the given worker count and backlog capacity.
func NewPool(workers, capacity int, executor Executor, logger *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	// A zero-capacity channel would make Submit race against workers
	// parking on the receive; always buffer at least one task.
	if capacity < 1 {
		capacity = 1
	}
	return &Pool{
		executor: executor,
		logger:   logging.NewComponentLogger(logger, "pool"),
		backlog:  make(chan *taskstore.Task, capacity),
		workers:  workers,
	}
}

// Start launches the workers.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return errors.New("pool already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true
	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go p.runWorker(runCtx, i)
	}
	return nil
}

// Stop terminates the workers and waits for in-flight tasks to finish.
// Backlogged tasks that never started stay queued in the store.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	p.running = false
	p.cancel = nil
	p.mu.Unlock()

	cancel()
	p.wg.Wait()
}

// Submit hands a task to the pool without blocking.
func (p *Pool) Submit(task *taskstore.Task) error {
	if task == nil {
		return errors.New("task required")
	}
	p.mu.Lock()
	running := p.running
	p.mu.Unlock()
	if !running {
		return errors.New("pool not running")
	}
	select {
	case p.backlog <- task:
		return nil
	default:
		return ErrSaturated
	}
}

// Backlog reports how many submissions are waiting for a worker.
func (p *Pool) Backlog() int {
	return len(p.backlog)
}

func (p *Pool) runWorker(ctx context.Context, index int) {
	defer p.wg.Done()
	logger := p.logger.With(logging.Int("worker", index))
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-p.backlog:
			if err := p.executor.Run(ctx, task); err != nil {
				// Only the pool's own shutdown retires a worker; a
				// cancellation scoped to one task does not.
				if ctx.Err() != nil {
					return
				}
				logger.Error("task execution failed",
					logging.String(logging.FieldTaskID, task.ID),
					logging.Error(err),
				)
			}
		}
	}
}
