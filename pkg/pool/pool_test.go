package pool

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"cxxindex/pkg/logger"
	"cxxindex/pkg/metrics"
)

func TestTaskPoolNormalExecution(t *testing.T) {
	p := NewTaskPool(2, logger.NewNop(), nil)
	defer p.Close()

	var counter int32
	const taskCount = 5
	for i := 0; i < taskCount; i++ {
		if err := p.Submit(context.Background(), func(ctx context.Context, taskID uint64) {
			atomic.AddInt32(&counter, 1)
		}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}
	p.Wait()

	if got := atomic.LoadInt32(&counter); got != taskCount {
		t.Errorf("expected %d tasks executed, got %d", taskCount, got)
	}
}

func TestTaskPoolCancelBeforeExecution(t *testing.T) {
	p := NewTaskPool(1, logger.NewNop(), nil)
	defer p.Close()

	if err := p.Submit(context.Background(), func(ctx context.Context, taskID uint64) {
		time.Sleep(100 * time.Millisecond)
	}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Submit(ctx, func(ctx context.Context, taskID uint64) {
		t.Error("cancelled task was executed")
	}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	p.Wait()
}

func TestTaskPoolTaskCancelDuringExecution(t *testing.T) {
	p := NewTaskPool(2, logger.NewNop(), nil)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	var started sync.WaitGroup
	started.Add(1)
	var cancelled bool

	if err := p.Submit(ctx, func(ctx context.Context, taskID uint64) {
		started.Done()
		select {
		case <-time.After(time.Second):
			t.Error("task was not cancelled")
		case <-ctx.Done():
			cancelled = ctx.Err() == context.Canceled
		}
	}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	started.Wait()
	cancel()
	p.Wait()

	if !cancelled {
		t.Error("expected task to observe cancellation")
	}
}

func TestTaskPoolSubmitAfterClose(t *testing.T) {
	p := NewTaskPool(2, logger.NewNop(), nil)
	p.Close()

	err := p.Submit(context.Background(), func(ctx context.Context, taskID uint64) {})
	if err != ErrPoolClosed {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}
}

func TestTaskPoolMaxConcurrency(t *testing.T) {
	const maxConcurrency = 3
	p := NewTaskPool(maxConcurrency, logger.NewNop(), nil)
	defer p.Close()

	var current, maxSeen int32
	const taskCount = 10
	var wg sync.WaitGroup
	wg.Add(taskCount)

	for i := 0; i < taskCount; i++ {
		if err := p.Submit(context.Background(), func(ctx context.Context, taskID uint64) {
			defer wg.Done()
			c := atomic.AddInt32(&current, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if c <= m || atomic.CompareAndSwapInt32(&maxSeen, m, c) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&current, -1)
		}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	wg.Wait()

	if maxSeen != maxConcurrency {
		t.Errorf("expected max concurrency %d, got %d", maxConcurrency, maxSeen)
	}
}

func TestTaskPoolReportsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)
	p := NewTaskPool(1, logger.NewNop(), rec)
	defer p.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, p.Submit(context.Background(), func(ctx context.Context, taskID uint64) {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
	}))
	wg.Wait()
	p.Wait()

	// Task pool metrics settle back to zero once every task has drained.
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP cxxindex_pool_active_workers Number of task pool workers currently executing a task.
# TYPE cxxindex_pool_active_workers gauge
cxxindex_pool_active_workers 0
# HELP cxxindex_pool_queue_depth Number of tasks submitted to the pool but not yet picked up by a worker.
# TYPE cxxindex_pool_queue_depth gauge
cxxindex_pool_queue_depth 0
`), "cxxindex_pool_active_workers", "cxxindex_pool_queue_depth"))
}
