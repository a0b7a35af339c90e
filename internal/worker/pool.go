package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/baharkarakas/betzone-api/internal/metrics"
)

var ErrStopped = errors.New("worker pool stopped")

// Task runs on one of the pool's workers. The context is the pool's, and is
// cancelled when Stop gives up waiting.
type Task func(ctx context.Context)

type Pool struct {
	wg     sync.WaitGroup
	jobs   chan Task
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	stopped bool
}

func NewPool(n int, log *zap.Logger) *Pool {
	if n < 1 {
		n = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{jobs: make(chan Task, 1024), log: log, ctx: ctx, cancel: cancel}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
				p.run(job)
			}
		}()
	}
	return p
}

func (p *Pool) run(job Task) {
	defer func() {
		if rec := recover(); rec != nil {
			p.log.Error("worker task panicked", zap.Any("err", rec))
		}
	}()
	job(p.ctx)
}

// Submit queues f. It does not block: a full queue drops the task.
func (p *Pool) Submit(f Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}
	select {
	case p.jobs <- f:
		metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
		return nil
	default:
		p.log.Warn("worker queue full, dropping task")
		return errors.New("worker queue full")
	}
}

// Stop drains the queue, waiting until ctx is done; after that running
// tasks see their context cancelled.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.jobs)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() { p.wg.Wait(); close(done) }()
	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return ctx.Err()
	}
}
