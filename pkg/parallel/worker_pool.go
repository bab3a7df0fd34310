// Package parallel runs CPU-bound catalog work, such as building the
// neighbour graph, on a fixed pool of goroutines.
package parallel

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/dd0wney/scout/pkg/logging"
)

// WorkerPool manages a pool of worker goroutines
type WorkerPool struct {
	workers   int
	taskQueue chan func()
	wg        sync.WaitGroup
	once      sync.Once
	mu        sync.RWMutex // Protects taskQueue from concurrent close during send
	closed    bool         // Protected by mu
	logger    logging.Logger
	panics    atomic.Int64
}

// ErrTooManyWorkers is returned when the worker count exceeds the maximum allowed.
var ErrTooManyWorkers = fmt.Errorf("worker count exceeds maximum")

// MaxWorkers is the maximum number of workers allowed in a pool.
const MaxWorkers = math.MaxInt / 2

// NewWorkerPool creates a new worker pool with specified number of workers.
// A non-positive count uses one worker per CPU. Returns an error if the
// worker count exceeds MaxWorkers.
func NewWorkerPool(workers int, logger logging.Logger) (*WorkerPool, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// Prevent overflow in buffer size calculation
	if workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyWorkers, workers, MaxWorkers)
	}

	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func(), workers*2), // Buffer for 2x workers
		logger:    logging.OrNop(logger),
	}

	pool.start()
	return pool, nil
}

// start initializes the worker goroutines
func (wp *WorkerPool) start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// worker processes tasks from the queue
func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		wp.run(task)
	}
}

func (wp *WorkerPool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			wp.panics.Add(1)
			wp.logger.Error("worker task panicked",
				logging.Component("parallel"),
				logging.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	task()
}

// Workers returns the pool size.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// Panics returns how many tasks panicked.
func (wp *WorkerPool) Panics() int64 {
	return wp.panics.Load()
}

// Submit adds a task to the worker pool
// Returns false if the pool is closed, true if task was submitted
func (wp *WorkerPool) Submit(task func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return false
	}

	// Safe to send because we hold the lock and pool is not closed
	wp.taskQueue <- task
	return true
}

// Close shuts down the worker pool after queued tasks finish
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}

// ForEach calls fn for every index in [0, n) on a pool of the given size
// and waits for all calls. It stops handing out indices once ctx is done or
// a call fails, and returns the first failure.
func ForEach(ctx context.Context, n, workers int, logger logging.Logger, fn func(i int) error) error {
	pool, err := NewWorkerPool(workers, logger)
	if err != nil {
		return err
	}

	var (
		firstErr error
		errOnce  sync.Once
		failed   atomic.Bool
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			failed.Store(true)
		})
	}

	for i := 0; i < n; i++ {
		if failed.Load() {
			break
		}
		if err := ctx.Err(); err != nil {
			fail(err)
			break
		}
		pool.Submit(func() {
			if failed.Load() {
				return
			}
			if err := fn(i); err != nil {
				fail(fmt.Errorf("item %d: %w", i, err))
			}
		})
	}
	pool.Close()

	if firstErr == nil && pool.Panics() > 0 {
		return fmt.Errorf("parallel: %d tasks panicked", pool.Panics())
	}
	return firstErr
}
