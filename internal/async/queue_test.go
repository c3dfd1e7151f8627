package async

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/book-of-knowledge/internal/common"
	"github.com/joseph-ayodele/book-of-knowledge/internal/pipeline"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeProcessor struct {
	mu      sync.Mutex
	seen    []string
	traceID []string
	block   chan struct{}
	fail    map[string]bool
}

func (f *fakeProcessor) ProcessFile(ctx context.Context, path string, force bool) (pipeline.Outcome, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return pipeline.Outcome{}, ctx.Err()
		}
	}
	f.mu.Lock()
	f.seen = append(f.seen, path)
	f.traceID = append(f.traceID, common.RequestIDFromContext(ctx))
	f.mu.Unlock()
	if f.fail[path] {
		return pipeline.Outcome{SourcePath: path}, errors.New("boom")
	}
	return pipeline.Outcome{SourcePath: path, Skipped: !force}, nil
}

func TestQueueProcessesAllJobs(t *testing.T) {
	proc := &fakeProcessor{fail: map[string]bool{"bad.pdf": true}}
	var mu sync.Mutex
	results := map[string]Result{}
	q := NewProcessorQueue(proc, discard,
		WithWorkers(3),
		WithQueueSize(2),
		WithOnResult(func(r Result) {
			mu.Lock()
			results[r.Job.Path] = r
			mu.Unlock()
		}),
	)

	paths := []string{"a.pdf", "b.pdf", "bad.pdf", "c.txt", "d.png"}
	for _, p := range paths {
		require.NoError(t, q.Enqueue(context.Background(), Job{Path: p, Force: p == "a.pdf"}))
	}
	q.Shutdown(context.Background())

	require.Len(t, results, len(paths))
	assert.Error(t, results["bad.pdf"].Err)
	assert.NoError(t, results["a.pdf"].Err)
	assert.False(t, results["a.pdf"].Outcome.Skipped)
	assert.True(t, results["b.pdf"].Outcome.Skipped)
	assert.NotEmpty(t, results["c.txt"].Job.TraceID)
	assert.False(t, results["d.png"].Job.SubmittedAt.IsZero())

	for _, id := range proc.traceID {
		assert.NotEmpty(t, id)
	}
}

func TestEnqueueAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(&fakeProcessor{}, discard, WithWorkers(1))
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())
	assert.ErrorIs(t, q.Enqueue(context.Background(), Job{Path: "a.pdf"}), ErrQueueClosed)
}

func TestEnqueueBackpressureHonoursContext(t *testing.T) {
	proc := &fakeProcessor{block: make(chan struct{})}
	q := NewProcessorQueue(proc, discard, WithWorkers(1), WithQueueSize(1))

	// one job held by the worker, one in the buffer
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "1"}))
	require.Eventually(t, func() bool { return len(q.ch) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "2"}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := q.Enqueue(ctx, Job{Path: "3"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(proc.block)
	q.Shutdown(context.Background())
	assert.ElementsMatch(t, []string{"1", "2"}, proc.seen)
}

func TestProcessTimeoutApplies(t *testing.T) {
	proc := &fakeProcessor{block: make(chan struct{})}
	var got Result
	q := NewProcessorQueue(proc, discard,
		WithWorkers(1),
		WithProcessTimeout(20*time.Millisecond),
		WithOnResult(func(r Result) { got = r }),
	)
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "slow.pdf"}))
	q.Shutdown(context.Background())
	assert.ErrorIs(t, got.Err, context.DeadlineExceeded)
}

func TestShutdownInterruptedByContext(t *testing.T) {
	proc := &fakeProcessor{block: make(chan struct{})}
	q := NewProcessorQueue(proc, discard, WithWorkers(1))
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "a"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	q.Shutdown(ctx)
	assert.Less(t, time.Since(start), time.Second)
	close(proc.block)
}
