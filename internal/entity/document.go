package entity

import (
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Document is one ingested source file and its latest extraction.
type Document struct {
	ID          uuid.UUID       `json:"id"`
	SourcePath  string          `json:"source_path"`
	Filename    string          `json:"filename"`
	FileExt     string          `json:"file_ext"`
	FileSize    int64           `json:"file_size"`
	ContentHash []byte          `json:"-"`
	Text        string          `json:"-"`
	RecordJSON  json.RawMessage `json:"record,omitempty"`
	Method      string          `json:"method,omitempty"`
	Signal      float32         `json:"signal"`
	NeedsReview bool            `json:"needs_review"`
	UploadedAt  time.Time       `json:"uploaded_at"`
	ExtractedAt *time.Time      `json:"extracted_at,omitempty"`
}

// HashHex is the hex form of ContentHash, as stored and displayed.
func (d Document) HashHex() string { return hex.EncodeToString(d.ContentHash) }

// Extracted reports whether a record has been stored for d.
func (d Document) Extracted() bool { return d.ExtractedAt != nil && len(d.RecordJSON) > 0 }

// FileMeta is what ingestion knows about a file before extraction.
type FileMeta struct {
	SourcePath  string
	Filename    string
	FileExt     string
	FileSize    int64
	ContentHash []byte
	UploadedAt  time.Time
}

// Extraction is the stored outcome of one successful run.
type Extraction struct {
	Text        string
	RecordJSON  json.RawMessage
	Method      string
	Signal      float32
	NeedsReview bool
	ExtractedAt time.Time
}
