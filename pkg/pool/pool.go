// Package pool runs independent parse() invocations across a bounded set
// of worker goroutines, per spec.md §5 ("independent... may run on a
// worker pool").
package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"cxxindex/pkg/logger"
	"cxxindex/pkg/metrics"
)

// ErrPoolClosed is returned by Submit once Close has been called.
var ErrPoolClosed = errors.New("task pool is closed")

// Task is one unit of work: a bounded parse invocation, given its
// caller's context and a pool-assigned task id for log correlation.
type Task func(ctx context.Context, taskID uint64)

// TaskPool runs a bounded number of concurrent Tasks. Tasks queued while
// every worker is busy wait in an internal channel; a task whose context
// is already cancelled by the time a worker picks it up is skipped
// without running. Queue depth and active-worker counts are reported to
// rec so a caller running many translation units can watch the pool
// saturate through the same Prometheus registry the indexer reports
// through.
type TaskPool struct {
	log            logger.Logger
	rec            *metrics.Recorder
	maxConcurrency int
	tasks          chan Task
	wg             sync.WaitGroup
	mu             sync.Mutex
	closed         bool
	taskID         uint64
	queued         int64
	active         int64
}

// NewTaskPool starts maxConcurrency worker goroutines, clamped to at
// least 1. log receives per-worker and per-task lifecycle diagnostics.
// rec may be nil when the caller doesn't care about pool metrics.
func NewTaskPool(maxConcurrency int, log logger.Logger, rec *metrics.Recorder) *TaskPool {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	p := &TaskPool{
		maxConcurrency: maxConcurrency,
		tasks:          make(chan Task, maxConcurrency*2),
		log:            log,
		rec:            rec,
	}
	p.startWorkers()
	return p
}

func (p *TaskPool) startWorkers() {
	for i := 0; i < p.maxConcurrency; i++ {
		go func(workerID int) {
			p.log.Debug("pool: worker %d started", workerID)
			for task := range p.tasks {
				atomic.AddInt64(&p.queued, -1)
				p.rec.SetPoolQueueDepth(int(atomic.LoadInt64(&p.queued)))

				taskID := atomic.AddUint64(&p.taskID, 1)
				p.log.Debug("pool: worker %d starting task %d", workerID, taskID)

				active := atomic.AddInt64(&p.active, 1)
				p.rec.SetPoolActiveWorkers(int(active))
				start := time.Now()
				task(context.Background(), taskID)
				p.rec.ObservePoolTaskDuration(time.Since(start).Seconds())
				p.rec.SetPoolActiveWorkers(int(atomic.AddInt64(&p.active, -1)))

				p.log.Debug("pool: worker %d finished task %d", workerID, taskID)
				p.wg.Done()
			}
			p.log.Debug("pool: worker %d exited", workerID)
		}(i)
	}
}

// Submit enqueues task. It returns ErrPoolClosed if Close has already
// been called. The task itself is skipped, not run, if ctx is already
// cancelled by the time a worker dequeues it — the caller is responsible
// for noticing its own cancellation inside task if it does run.
func (p *TaskPool) Submit(ctx context.Context, task Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolClosed
	}

	wrapped := func(poolCtx context.Context, taskID uint64) {
		select {
		case <-ctx.Done():
			p.log.Info("pool: task %d cancelled before execution: %v", taskID, ctx.Err())
			return
		default:
			task(ctx, taskID)
		}
	}

	p.wg.Add(1)
	p.tasks <- wrapped
	p.rec.SetPoolQueueDepth(int(atomic.AddInt64(&p.queued, 1)))
	return nil
}

// Wait blocks until every submitted task has run or been skipped.
func (p *TaskPool) Wait() {
	p.wg.Wait()
}

// Close stops accepting new tasks and shuts down the worker goroutines
// once the queue drains. Close is idempotent.
func (p *TaskPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		close(p.tasks)
		p.closed = true
		p.log.Info("pool: closed, total tasks processed: %d", p.taskID)
	}
}
