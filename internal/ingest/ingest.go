// Package ingest discovers drawing files on disk, hashes them and registers
// them with the document store.
package ingest

import (
	"context"
	"time"

	"github.com/joseph-ayodele/book-of-knowledge/internal/entity"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath   string
	DocumentID   string
	Deduplicated bool
	Hash         []byte
	HashHex      string
	FileExt      string
	Format       string
	Size         int64
	UploadedAt   time.Time
	// Document is the stored row when the ingestor has a store.
	Document *entity.Document
	Err      string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Ingestor is the behavior the pipeline depends on.
type Ingestor interface {
	// IngestPath a single path.
	IngestPath(ctx context.Context, path string) (IngestionResult, error)
	// IngestDirectory ingests all matching files under root.
	IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error)
}
