// Package async runs document processing on a bounded pool of workers.
package async

import (
	"context"
	"errors"
	"time"

	"github.com/joseph-ayodele/book-of-knowledge/internal/pipeline"
)

// ErrQueueClosed is returned by Enqueue after Shutdown has started.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one document to process.
type Job struct {
	Path        string
	Force       bool // reprocess even if deduplicated
	SubmittedAt time.Time
	TraceID     string
}

// Result reports how a Job finished.
type Result struct {
	Job      Job
	Outcome  pipeline.Outcome
	Err      error
	WorkerID int
	Elapsed  time.Duration
}

// Processor is the per-document work a queue runs.
type Processor interface {
	ProcessFile(ctx context.Context, path string, force bool) (pipeline.Outcome, error)
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
