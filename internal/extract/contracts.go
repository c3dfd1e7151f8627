package extract

import (
	"context"
	"time"

	"github.com/joseph-ayodele/book-of-knowledge/internal/fields"
)

// TextExtractor is Stage 1: file -> text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Pages      []string
	SourceType string // "PDF" | "IMAGE" | "TXT"
	Method     string // passes joined with "+", e.g. "pdf-text+pdf-ocr"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Signal     float32
}

// FieldExtractor is Stage 2: text -> field record.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, text string) (FieldsResult, error)
}

type FieldsResult struct {
	Record   fields.Record
	JSON     []byte // validated against the record schema
	Duration time.Duration
}
