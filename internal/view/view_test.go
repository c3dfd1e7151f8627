package view

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/book-of-knowledge/internal/entity"
	"github.com/joseph-ayodele/book-of-knowledge/internal/fields"
	"github.com/joseph-ayodele/book-of-knowledge/internal/pipeline"
)

func TestRecordHasEveryField(t *testing.T) {
	m, err := Record(fields.NewBuilder(nil).Build("SITE CLASS D"))
	require.NoError(t, err)
	assert.Len(t, m, 10)
	assert.Equal(t, "D", m["site_class"])
	assert.Nil(t, m["job_number"])
	assert.Equal(t, "Unknown", m["location"])
}

func TestOutcome(t *testing.T) {
	m, err := Outcome(pipeline.Outcome{SourcePath: "/a.pdf", Skipped: true, Duration: 1500 * time.Millisecond})
	require.NoError(t, err)
	assert.NotContains(t, m, "document_id")
	assert.Equal(t, int64(1500), m["duration_ms"])
	assert.Equal(t, true, m["skipped"])

	id := uuid.New()
	m, err = Outcome(pipeline.Outcome{DocumentID: id})
	require.NoError(t, err)
	assert.Equal(t, id.String(), m["document_id"])
}

func TestDocument(t *testing.T) {
	rec, err := json.Marshal(fields.NewBuilder(nil).Build("RISK CATEGORY II"))
	require.NoError(t, err)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	pending, err := Document(entity.Document{ID: uuid.New(), ContentHash: []byte{0xab}, UploadedAt: at})
	require.NoError(t, err)
	assert.Nil(t, pending["record"])
	assert.Nil(t, pending["extracted_at"])
	assert.Equal(t, "ab", pending["content_hash"])
	assert.Equal(t, "2024-05-01T10:00:00Z", pending["uploaded_at"])

	docs, err := Documents([]entity.Document{{ID: uuid.New(), RecordJSON: rec, ExtractedAt: &at}})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	done := docs[0].(map[string]any)
	assert.Equal(t, "II", done["record"].(map[string]any)["risk_category"])
	assert.Equal(t, "2024-05-01T10:00:00Z", done["extracted_at"])
}
