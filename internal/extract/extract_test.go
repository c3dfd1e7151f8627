package extract

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/book-of-knowledge/constants"
	"github.com/joseph-ayodele/book-of-knowledge/internal/ocr"
)

func TestEngineAdapter(t *testing.T) {
	var fe FieldExtractor = NewEngineAdapter(nil)

	res, err := fe.ExtractFields(context.Background(), "Project Number 22.00.092.02\nSITE CLASS D")
	require.NoError(t, err)
	assert.Equal(t, "22.00.092.02", res.Record.Get(constants.JobNumber).String())

	var raw map[string]any
	require.NoError(t, json.Unmarshal(res.JSON, &raw))
	assert.Equal(t, "D", raw["site_class"])
	assert.Len(t, raw, len(constants.AllFields()))
}

func TestEngineAdapterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngineAdapter(nil).ExtractFields(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOCRAdapterTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.txt")
	require.NoError(t, os.WriteFile(path, []byte("RISK CATEGORY II"), 0o600))

	var te TextExtractor = NewOCRAdapter(ocr.NewExtractor(ocr.DefaultConfig(), nil))
	res, err := te.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "RISK CATEGORY II", res.Text)
	assert.Equal(t, constants.TXT, res.SourceType)
	assert.Equal(t, "txt", res.Method)
}
