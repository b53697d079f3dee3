package taskpool

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Swind/go-task-pool/core"
	"github.com/panjf2000/ants/v2"
)

// Job is a unit of work accepted by WorkerPool.Submit. *Task[T] and JobFunc
// implement it.
type Job interface {
	submitTo(p *WorkerPool) error
}

// JobFunc adapts a plain function to Job. A non-nil return value is
// recorded as a fault in logs and metrics.
type JobFunc func() error

func (f JobFunc) submitTo(p *WorkerPool) error {
	if f == nil {
		return core.ErrNilJob
	}
	return p.enqueue(core.WorkItem{ID: core.GenerateTaskID(), Run: f})
}

// WorkerPool owns a fixed set of worker goroutines draining one FIFO queue.
type WorkerPool struct {
	name    string
	size    int
	queue   *core.WorkQueue
	workers *ants.Pool
	wg      sync.WaitGroup

	disposed atomic.Bool

	logger       core.Logger
	panicHandler core.PanicHandler
	metrics      core.Metrics
}

// NewWorkerPool creates a pool with size workers and default handlers.
func NewWorkerPool(size int) (*WorkerPool, error) {
	return NewWorkerPoolWithConfig(DefaultConfig(size))
}

// NewWorkerPoolWithConfig creates a pool and starts all of its workers.
func NewWorkerPoolWithConfig(cfg Config) (*WorkerPool, error) {
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("%w: got %d", core.ErrInvalidPoolSize, cfg.Size)
	}
	cfg = cfg.withDefaults()

	p := &WorkerPool{
		name:         cfg.Name,
		size:         cfg.Size,
		queue:        core.NewWorkQueue(),
		logger:       cfg.Logger,
		panicHandler: cfg.PanicHandler,
		metrics:      cfg.Metrics,
	}

	// Each ants worker hosts one worker loop for the lifetime of the pool.
	workers, err := ants.NewPool(cfg.Size,
		ants.WithPreAlloc(true),
		ants.WithNonblocking(true),
		ants.WithDisablePurge(true),
		ants.WithPanicHandler(func(r any) {
			p.logger.Error("worker loop crashed", core.F("pool", p.name), core.F("panic", fmt.Sprint(r)))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create worker pool %q: %w", cfg.Name, err)
	}
	p.workers = workers

	for i := 0; i < cfg.Size; i++ {
		id := i
		p.wg.Add(1)
		if err := workers.Submit(func() { p.workerLoop(id) }); err != nil {
			p.wg.Done()
			p.queue.Close()
			p.wg.Wait()
			workers.Release()
			return nil, fmt.Errorf("start worker %d of pool %q: %w", id, cfg.Name, err)
		}
	}

	p.logger.Info("worker pool started", core.F("pool", p.name), core.F("workers", p.size))
	return p, nil
}

// Submit appends job to the queue and returns without waiting for it to
// run. It fails with core.ErrInvalidArgument for a nil job and with
// core.ErrInvalidState once Close has been called.
func (p *WorkerPool) Submit(job Job) error {
	if job == nil {
		return p.reject(core.ErrNilJob)
	}
	if p.disposed.Load() {
		return p.reject(core.ErrPoolClosed)
	}
	if err := job.submitTo(p); err != nil {
		return p.reject(err)
	}
	return nil
}

func (p *WorkerPool) reject(err error) error {
	reason := "invalid argument"
	if errors.Is(err, core.ErrInvalidState) {
		reason = "invalid state"
	}
	p.metrics.RecordTaskRejected(p.name, reason)
	p.logger.Warn("submission rejected", core.F("pool", p.name), core.F("error", err))
	return err
}

func (p *WorkerPool) enqueue(item core.WorkItem) error {
	if err := p.queue.Push(item); err != nil {
		return err
	}
	p.metrics.RecordQueueDepth(p.name, p.queue.Len())
	return nil
}

// enqueueAccepted admits follow-up work of an already accepted job, which
// is still allowed while the pool drains.
func (p *WorkerPool) enqueueAccepted(item core.WorkItem) error {
	if err := p.queue.PushAccepted(item); err != nil {
		return err
	}
	p.metrics.RecordQueueDepth(p.name, p.queue.Len())
	return nil
}

// workerLoop is the main loop for each worker
func (p *WorkerPool) workerLoop(id int) {
	defer p.wg.Done()

	for {
		item, ok := p.queue.Pop()
		if !ok {
			return
		}
		p.runItem(id, item)
	}
}

func (p *WorkerPool) runItem(workerID int, item core.WorkItem) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			p.metrics.RecordTaskPanic(p.name, r)
			p.panicHandler.HandlePanic(p.name, workerID, r, debug.Stack())
		}
		p.metrics.RecordTaskDuration(p.name, time.Since(start))
		p.queue.Done()
	}()

	if err := item.Run(); err != nil {
		p.metrics.RecordTaskFault(p.name)
		p.logger.Debug("job faulted",
			core.F("pool", p.name),
			core.F("worker", workerID),
			core.F("task", item.ID.String()),
			core.F("error", err),
		)
	}
}

// Close stops accepting submissions, waits for queued and running work to
// finish and joins every worker. Close is not idempotent: every call after
// the first returns core.ErrInvalidState.
//
// Close must not be called from inside a job running on the same pool.
func (p *WorkerPool) Close() error {
	if !p.disposed.CompareAndSwap(false, true) {
		return core.ErrPoolClosed
	}

	p.logger.Info("worker pool draining", core.F("pool", p.name), core.F("queued", p.queue.Len()))
	p.queue.Close()
	p.wg.Wait()
	p.workers.Release()
	p.metrics.RecordQueueDepth(p.name, 0)
	p.logger.Info("worker pool closed", core.F("pool", p.name))
	return nil
}

// Size returns the configured number of workers.
func (p *WorkerPool) Size() int {
	return p.size
}

// Name returns the pool name used in logs and metrics.
func (p *WorkerPool) Name() string {
	return p.name
}

// IsClosed reports whether Close has been called.
func (p *WorkerPool) IsClosed() bool {
	return p.disposed.Load()
}

// Stats returns a point-in-time snapshot of the pool.
func (p *WorkerPool) Stats() core.PoolStats {
	return core.PoolStats{
		Name:    p.name,
		Workers: p.size,
		Queued:  p.queue.Len(),
		Active:  p.queue.Active(),
		Closed:  p.disposed.Load(),
	}
}

// Go creates a task for fn and submits it to p.
func Go[T any](p *WorkerPool, fn func() (T, error)) (*Task[T], error) {
	t := NewTask(fn)
	if err := p.Submit(t); err != nil {
		return nil, err
	}
	return t, nil
}
