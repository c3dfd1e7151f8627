package pipeline

import (
	"context"

	"github.com/joseph-ayodele/book-of-knowledge/internal/ingest"
)

// FileProcessor is anything that turns one path into an Outcome.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string, force bool) (Outcome, error)
}

// Confined only processes paths inside Roots. It guards the network surfaces;
// the watcher and CLI use the Processor directly.
type Confined struct {
	Next  FileProcessor
	Roots []string
}

func Confine(next FileProcessor, roots []string) *Confined {
	return &Confined{Next: next, Roots: append([]string(nil), roots...)}
}

func (c *Confined) ProcessFile(ctx context.Context, path string, force bool) (Outcome, error) {
	resolved, err := ingest.ResolveWithin(path, c.Roots)
	if err != nil {
		return Outcome{SourcePath: path}, err
	}
	return c.Next.ProcessFile(ctx, resolved, force)
}
