package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/book-of-knowledge/internal/entity"
	"github.com/joseph-ayodele/book-of-knowledge/internal/fields"
	"github.com/joseph-ayodele/book-of-knowledge/internal/repository"
)

func sampleRecord(t *testing.T) fields.Record {
	t.Helper()
	var rec fields.Record
	require.NoError(t, json.Unmarshal([]byte(`{
		"job_number": "22.00.092.02",
		"materials": ["STEEL", "WOOD"],
		"risk_category": "II"
	}`), &rec))
	return rec
}

func TestRowCells(t *testing.T) {
	cells := Row{SourceFile: "S-001.pdf", Record: sampleRecord(t)}.Cells()
	require.Len(t, cells, len(Headers()))
	assert.Equal(t, []string{
		"S-001.pdf", "22.00.092.02", "Null", "STEEL, WOOD", "Null", "II",
		"Null", "Null", "Null", "Unknown", "Unknown", AllDataPlaceholder,
	}, cells)

	custom := Row{AllData: "inline"}.Cells()
	assert.Equal(t, "inline", custom[len(custom)-1])
}

func readSheet(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{sheet}, f.GetSheetList())
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, []Row{{SourceFile: "S-001.pdf", Record: sampleRecord(t)}}))

	rows := readSheet(t, buf.Bytes())
	require.Len(t, rows, 2)
	assert.Equal(t, Headers(), rows[0])
	assert.Equal(t, "S-001.pdf", rows[1][0])
	assert.Equal(t, "22.00.092.02", rows[1][1])
	assert.Equal(t, "Null", rows[1][2])
}

func TestSaveXLSXCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "fields.xlsx")
	require.NoError(t, SaveXLSX(path, nil))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, readSheet(t, data), 1)
}

func TestExportDocumentsXLSX(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := repository.Open(ctx, repository.Config{Driver: repository.DriverSQLite, DSN: ":memory:"}, logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))
	docs := repository.NewDocumentRepository(db, logger)

	extracted, _, err := docs.UpsertDocument(ctx, entity.FileMeta{SourcePath: "/d/S-001.pdf", Filename: "S-001.pdf", FileExt: "pdf", ContentHash: []byte{1}})
	require.NoError(t, err)
	recJSON, err := json.Marshal(sampleRecord(t))
	require.NoError(t, err)
	require.NoError(t, docs.SaveExtraction(ctx, extracted.ID, entity.Extraction{Text: "x", RecordJSON: recJSON}))

	_, _, err = docs.UpsertDocument(ctx, entity.FileMeta{SourcePath: "/d/pending.pdf", Filename: "pending.pdf", FileExt: "pdf", ContentHash: []byte{2}})
	require.NoError(t, err)

	data, err := NewService(docs, logger).ExportDocumentsXLSX(ctx, repository.ListOptions{})
	require.NoError(t, err)
	rows := readSheet(t, data)
	require.Len(t, rows, 2)
	assert.Equal(t, "S-001.pdf", rows[1][0])
	assert.Equal(t, "STEEL, WOOD", rows[1][3])
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestAppendCSVWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.csv")
	row := Row{SourceFile: "a.pdf", Record: sampleRecord(t)}

	require.NoError(t, AppendCSV(path, []Row{row}))
	require.NoError(t, AppendCSV(path, []Row{row}))

	recs := readCSV(t, path)
	require.Len(t, recs, 3)
	assert.Equal(t, Headers(), recs[0])
	assert.Equal(t, "STEEL, WOOD", recs[2][3])
}

func TestClearCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.csv")
	require.NoError(t, AppendCSV(path, []Row{{SourceFile: "a.pdf"}}))
	require.NoError(t, ClearCSV(path))
	recs := readCSV(t, path)
	require.Len(t, recs, 1)
	assert.Equal(t, Headers(), recs[0])
}

func TestClearDumps(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.TXT", "keep.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755))

	n, err := ClearDumps(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	left, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, left, 2)

	n, err = ClearDumps(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Zero(t, n)
}
