package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/book-of-knowledge/internal/common"
)

type ProcessorQueue struct {
	proc     Processor
	logger   *slog.Logger
	workers  int
	timeout  time.Duration
	onResult func(Result)

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

var _ Queue = (*ProcessorQueue)(nil)

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithOnResult registers fn to be called from the worker after every job.
// fn must be safe for concurrent use.
func WithOnResult(fn func(Result)) Option {
	return func(q *ProcessorQueue) { q.onResult = fn }
}

func NewProcessorQueue(proc Processor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 5 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(workerID int, job Job) {
	start := time.Now()
	ctx := common.WithRequestID(context.Background(), job.TraceID)
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	out, err := q.proc.ProcessFile(ctx, job.Path, job.Force)
	cancel()

	if err != nil {
		q.logger.Error("processing failed", "worker_id", workerID, "path", job.Path, "trace_id", job.TraceID, "error", err)
	} else {
		q.logger.Info("processed file successfully", "worker_id", workerID, "path", job.Path, "skipped", out.Skipped)
	}
	if q.onResult != nil {
		q.onResult(Result{Job: job, Outcome: out, Err: err, WorkerID: workerID, Elapsed: time.Since(start)})
	}
}

// Enqueue blocks while the queue is full until ctx is done.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	if job.TraceID == "" {
		job.TraceID = uuid.NewString()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", job.Path)
		return ErrQueueClosed
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queued file for processing", "path", job.Path, "force", job.Force)
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "path", job.Path)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
