// Package pipeline runs one document from disk to a stored field record.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/book-of-knowledge/constants"
	"github.com/joseph-ayodele/book-of-knowledge/internal/entity"
	"github.com/joseph-ayodele/book-of-knowledge/internal/extract"
	"github.com/joseph-ayodele/book-of-knowledge/internal/fields"
	"github.com/joseph-ayodele/book-of-knowledge/internal/ingest"
	"github.com/joseph-ayodele/book-of-knowledge/internal/metrics"
	"github.com/joseph-ayodele/book-of-knowledge/internal/repository"
)

// Config holds thresholds and behavior flags for the processor.
type Config struct {
	// DumpDir receives per-document page dumps when WriteDumps is set.
	DumpDir    string
	WriteDumps bool
	// ReviewSignal flags documents whose text signal falls below it. Default 0.3.
	ReviewSignal float32
}

// Outcome is what ProcessFile reports for one document.
type Outcome struct {
	DocumentID  uuid.UUID
	SourcePath  string
	Record      fields.Record
	Pages       []string
	Method      string
	Signal      float32
	NeedsReview bool
	Skipped     bool
	DumpPath    string
	Duration    time.Duration
}

// Processor coordinates text extraction then field extraction. Docs and Jobs
// may be nil, in which case nothing is stored and nothing is deduplicated.
type Processor struct {
	Logger   *slog.Logger
	Cfg      Config
	Ingestor ingest.Ingestor
	Docs     repository.DocumentRepository
	Jobs     repository.ExtractJobRepository
	Text     extract.TextExtractor
	Fields   extract.FieldExtractor
}

func NewProcessor(
	logger *slog.Logger,
	cfg Config,
	ing ingest.Ingestor,
	docs repository.DocumentRepository,
	jobs repository.ExtractJobRepository,
	tx extract.TextExtractor,
	fe extract.FieldExtractor,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ReviewSignal <= 0 {
		cfg.ReviewSignal = 0.3
	}
	if cfg.DumpDir == "" {
		cfg.DumpDir = "./results"
	}
	return &Processor{Logger: logger, Cfg: cfg, Ingestor: ing, Docs: docs, Jobs: jobs, Text: tx, Fields: fe}
}

// ProcessFile hashes path, skips it when an identical document was already
// extracted (unless force), and otherwise extracts text and fields and stores them.
func (p *Processor) ProcessFile(ctx context.Context, path string, force bool) (Outcome, error) {
	start := time.Now()

	in, err := p.Ingestor.IngestPath(ctx, path)
	if err != nil {
		p.Logger.Error("processor.ingest.failed", "path", path, "err", err)
		metrics.RecordDocument(constants.JobStatusFailed)
		return Outcome{SourcePath: path}, fmt.Errorf("ingest %s: %w", path, err)
	}
	out := Outcome{SourcePath: in.SourcePath}
	if in.Document != nil {
		out.DocumentID = in.Document.ID
	}

	if doc := in.Document; doc != nil && doc.Extracted() && !force {
		if err := json.Unmarshal(doc.RecordJSON, &out.Record); err != nil {
			return out, fmt.Errorf("decode stored record: %w", err)
		}
		out.Skipped = true
		out.Method = doc.Method
		out.Signal = doc.Signal
		out.NeedsReview = doc.NeedsReview
		p.recordSkip(ctx, doc.ID, in.Format)
		out.Duration = time.Since(start)
		metrics.RecordDocument(constants.JobStatusSkipped)
		p.Logger.Info("processor.skipped", "document_id", doc.ID, "path", in.SourcePath)
		return out, nil
	}

	jobID := p.startJob(ctx, out.DocumentID, in.Format)

	text, err := p.runText(ctx, in.SourcePath)
	if err != nil {
		p.fail(ctx, jobID, err)
		return out, err
	}
	out.Pages = text.Pages
	out.Method = text.Method
	out.Signal = text.Signal
	out.DumpPath = p.dump(in.SourcePath, text.Pages)

	fr, err := p.runFields(ctx, text.Text)
	if err != nil {
		p.fail(ctx, jobID, err)
		return out, err
	}
	out.Record = fr.Record
	out.NeedsReview = p.needsReview(text, fr.Record)

	if p.Docs != nil && out.DocumentID != uuid.Nil {
		err := p.Docs.SaveExtraction(ctx, out.DocumentID, extractionOf(text, fr, out.NeedsReview))
		if err != nil {
			p.fail(ctx, jobID, err)
			return out, err
		}
	}
	if p.Jobs != nil && jobID != uuid.Nil {
		if err := p.Jobs.FinishJob(ctx, jobID, constants.JobStatusFieldsOK, text.Method); err != nil {
			p.Logger.Warn("processor.job.finish_failed", "job_id", jobID, "err", err)
		}
	}

	out.Duration = time.Since(start)
	metrics.RecordDocument(constants.JobStatusFieldsOK)
	metrics.ObserveStage(metrics.StageTotal, out.Duration)
	p.Logger.Info("processor.ok",
		"document_id", out.DocumentID,
		"path", in.SourcePath,
		"method", out.Method,
		"needs_review", out.NeedsReview,
		"elapsed_ms", out.Duration.Milliseconds(),
	)
	return out, nil
}

func (p *Processor) needsReview(text extract.TextExtractionResult, rec fields.Record) bool {
	if text.Signal < p.Cfg.ReviewSignal {
		return true
	}
	return rec.Get(constants.JobNumber).IsAbsent()
}

func (p *Processor) startJob(ctx context.Context, docID uuid.UUID, format string) uuid.UUID {
	if p.Jobs == nil || docID == uuid.Nil {
		return uuid.Nil
	}
	job, err := p.Jobs.StartJob(ctx, docID, format)
	if err != nil {
		p.Logger.Warn("processor.job.start_failed", "document_id", docID, "err", err)
		return uuid.Nil
	}
	return job.ID
}

func (p *Processor) recordSkip(ctx context.Context, docID uuid.UUID, format string) {
	jobID := p.startJob(ctx, docID, format)
	if jobID == uuid.Nil {
		return
	}
	if err := p.Jobs.FinishJob(ctx, jobID, constants.JobStatusSkipped, ""); err != nil {
		p.Logger.Warn("processor.job.finish_failed", "job_id", jobID, "err", err)
	}
}

func (p *Processor) fail(ctx context.Context, jobID uuid.UUID, cause error) {
	metrics.RecordDocument(constants.JobStatusFailed)
	if p.Jobs == nil || jobID == uuid.Nil {
		return
	}
	// the caller's context may already be done; the failure should still land
	ctx = context.WithoutCancel(ctx)
	if err := p.Jobs.FinishFailure(ctx, jobID, cause.Error()); err != nil {
		p.Logger.Warn("processor.job.finish_failed", "job_id", jobID, "err", err)
	}
}

func extractionOf(text extract.TextExtractionResult, fr extract.FieldsResult, review bool) entity.Extraction {
	return entity.Extraction{
		Text:        text.Text,
		RecordJSON:  fr.JSON,
		Method:      text.Method,
		Signal:      text.Signal,
		NeedsReview: review,
		ExtractedAt: time.Now(),
	}
}
