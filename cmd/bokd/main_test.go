package main

import (
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/book-of-knowledge/internal/async"
	"github.com/joseph-ayodele/book-of-knowledge/internal/fields"
	"github.com/joseph-ayodele/book-of-knowledge/internal/pipeline"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestCSVSinkAppendsProcessedOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "fields.csv")
	sink := csvSink(path, discard)
	require.NotNil(t, sink)

	rec := fields.NewBuilder(nil).Build("B&P Job Number: 22.00.092.02")
	sink(async.Result{Job: async.Job{Path: "/in/a.pdf"}, Outcome: pipeline.Outcome{Record: rec}})
	sink(async.Result{Job: async.Job{Path: "/in/b.pdf"}, Outcome: pipeline.Outcome{Skipped: true, Record: rec}})
	sink(async.Result{Job: async.Job{Path: "/in/c.pdf"}, Err: errors.New("boom")})

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"a.pdf", "22.00.092.02"}, rows[1][:2])
}

func TestCSVSinkDisabled(t *testing.T) {
	assert.Nil(t, csvSink("", discard))
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	assert.Equal(t, slog.LevelDebug, levelFromEnv())
	t.Setenv("LOG_LEVEL", "")
	assert.Equal(t, slog.LevelInfo, levelFromEnv())
}
