// Package view renders records, outcomes and documents as plain maps for the
// JSON and protobuf Struct surfaces.
package view

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/book-of-knowledge/internal/entity"
	"github.com/joseph-ayodele/book-of-knowledge/internal/fields"
	"github.com/joseph-ayodele/book-of-knowledge/internal/pipeline"
)

// Record returns rec as a JSON-shaped map: every field present, absent ones nil.
func Record(rec fields.Record) (map[string]any, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return rawRecord(data)
}

func rawRecord(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Outcome renders one ProcessFile result.
func Outcome(out pipeline.Outcome) (map[string]any, error) {
	rec, err := Record(out.Record)
	if err != nil {
		return nil, err
	}
	m := map[string]any{
		"source_path":  out.SourcePath,
		"skipped":      out.Skipped,
		"needs_review": out.NeedsReview,
		"method":       out.Method,
		"signal":       float64(out.Signal),
		"pages":        len(out.Pages),
		"duration_ms":  out.Duration.Milliseconds(),
		"record":       rec,
	}
	if out.DocumentID != uuid.Nil {
		m["document_id"] = out.DocumentID.String()
	}
	return m, nil
}

// Document renders a stored document without its text.
func Document(d entity.Document) (map[string]any, error) {
	m := map[string]any{
		"id":           d.ID.String(),
		"source_path":  d.SourcePath,
		"filename":     d.Filename,
		"file_ext":     d.FileExt,
		"content_hash": d.HashHex(),
		"method":       d.Method,
		"signal":       float64(d.Signal),
		"needs_review": d.NeedsReview,
		"uploaded_at":  d.UploadedAt.UTC().Format(time.RFC3339),
		"record":       nil,
		"extracted_at": nil,
	}
	if d.ExtractedAt != nil {
		m["extracted_at"] = d.ExtractedAt.UTC().Format(time.RFC3339)
	}
	if len(d.RecordJSON) > 0 {
		rec, err := rawRecord(d.RecordJSON)
		if err != nil {
			return nil, err
		}
		m["record"] = rec
	}
	return m, nil
}

// Documents renders a list of documents.
func Documents(docs []entity.Document) ([]any, error) {
	out := make([]any, 0, len(docs))
	for _, d := range docs {
		m, err := Document(d)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
