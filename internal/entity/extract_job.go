package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/book-of-knowledge/constants"
)

// ExtractJob represents an extract job for data transfer between layers.
type ExtractJob struct {
	ID           uuid.UUID           `json:"id"`
	DocumentID   uuid.UUID           `json:"document_id"`
	Format       string              `json:"format"`
	Status       constants.JobStatus `json:"status"`
	Method       *string             `json:"method,omitempty"`
	StartedAt    time.Time           `json:"started_at"`
	FinishedAt   *time.Time          `json:"finished_at,omitempty"`
	ErrorMessage *string             `json:"error_message,omitempty"`
}
