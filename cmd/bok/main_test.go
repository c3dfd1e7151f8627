package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const drawing = `RIVERSIDE MEDICAL OFFICE BUILDING
1200 PEACHTREE STREET NE
ATLANTA, GA 30309
B&P Job Number: 22.00.092.02
GENERAL NOTES
DESIGN CRITERIA: 2018 International Building Code, ASCE 7-16
RISK CATEGORY II
SITE CLASS ..... D
ULTIMATE WIND SPEED = 115 MPH`

// run executes the root command with fresh flag values and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	configPath, logLevel = "", "warn"
	fieldsPretty, fieldsTrace = false, false
	textDumpDir, textPages = "", false
	chunkOut, chunkMax, chunkOverlap = "", 1200, 150
	flipTargetsFile, flipLines = "", nil
	batchOutDir, batchXLSX, batchCSV = "", "", ""
	batchClear, batchForce, batchNoStore, batchIncludeHidden = false, false, false, false
	batchWorkers = 0

	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
		assert.NotEmpty(t, c.Short, c.Name())
		assert.Contains(t, c.Long, "Examples:", c.Name())
	}
	for _, want := range []string{"fields", "text", "batch", "chunk", "flip"} {
		assert.True(t, names[want], want)
	}
}

func TestFieldsFromStdin(t *testing.T) {
	out, err := run(t, drawing, "fields", "-")
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "22.00.092.02", rec["job_number"])
	assert.Equal(t, "II", rec["risk_category"])
	assert.Equal(t, "D", rec["site_class"])
	assert.Nil(t, rec["seismic_design_category"])
}

func TestFieldsFromFilePretty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	writeFile(t, path, drawing)

	out, err := run(t, "", "fields", "--pretty", path)
	require.NoError(t, err)
	assert.Contains(t, out, "\n  \"job_number\": \"22.00.092.02\"")
}

func TestFieldsMissingFile(t *testing.T) {
	_, err := run(t, "", "fields", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestTextWritesDump(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "S-001.txt")
	writeFile(t, src, drawing)
	dumps := filepath.Join(dir, "results")

	out, err := run(t, "", "text", "--pages", "--dump-dir", dumps, src)
	require.NoError(t, err)
	assert.Contains(t, out, "FILE: S-001.txt")
	assert.Contains(t, out, "PAGE 1")

	dump, err := os.ReadFile(filepath.Join(dumps, "S-001.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(dump), "RISK CATEGORY II")
}

func TestChunkToStdout(t *testing.T) {
	dump := filepath.Join(t.TempDir(), "S-001.txt")
	writeFile(t, dump, "FILE: S-001.pdf\nPAGES: 2\n\n"+
		"==================== PAGE 1 ====================\nGENERAL NOTES\nAll work per code.\n\n"+
		"==================== PAGE 2 ====================\nWind speed 115 mph.\n")

	out, err := run(t, "", "chunk", "--out", "-", dump)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	var last map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &last))
	assert.EqualValues(t, 2, last["page"])
	assert.Equal(t, "Wind speed 115 mph.", last["text"])
}

func TestChunkDefaultOutput(t *testing.T) {
	dump := filepath.Join(t.TempDir(), "S-001.txt")
	writeFile(t, dump, "plain text without markers")

	out, err := run(t, "", "chunk", dump)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 1 chunks")

	data, err := os.ReadFile(dump + ".chunks.jsonl")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"page":1`)
}

func TestFlip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "dump.txt")
	writeFile(t, src, "SGNIWARD\r\nkeep me\nESEHT\n")
	targets := filepath.Join(dir, "targets.txt")
	writeFile(t, targets, "SGNIWARD\n\n")

	out, err := run(t, "", "flip", "--targets", targets, "--line", "ESEHT", src)
	require.NoError(t, err)
	assert.Contains(t, out, "Flipped 2 line(s)")

	fixed, err := os.ReadFile(filepath.Join(dir, "dump_fixed.txt"))
	require.NoError(t, err)
	assert.Equal(t, "DRAWINGS\r\nkeep me\nTHESE\n", string(fixed))

	backup, err := os.ReadFile(src + ".bak")
	require.NoError(t, err)
	assert.Equal(t, "SGNIWARD\r\nkeep me\nESEHT\n", string(backup))
}

func TestFlipRequiresTargets(t *testing.T) {
	src := filepath.Join(t.TempDir(), "dump.txt")
	writeFile(t, src, "x\n")
	_, err := run(t, "", "flip", src)
	require.Error(t, err)
}

func TestBatchWithoutStore(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	writeFile(t, filepath.Join(in, "a.txt"), drawing)
	writeFile(t, filepath.Join(in, "b.txt"), "nothing useful here")
	writeFile(t, filepath.Join(in, ".hidden", "c.txt"), drawing)
	outDir := filepath.Join(dir, "out")
	xlsxPath := filepath.Join(outDir, "fields.xlsx")
	csvPath := filepath.Join(outDir, "fields.csv")

	out, err := run(t, "", "batch", "--no-store", "--workers", "2",
		"--out-dir", outDir, "--xlsx", xlsxPath, "--csv", csvPath, in)
	require.NoError(t, err)
	assert.Contains(t, out, "Processed 2, skipped 0, failed 0")

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Source_File", records[0][0])
	assert.Equal(t, []string{"a.txt", "22.00.092.02"}, records[1][:2])
	assert.Equal(t, []string{"b.txt", "Null"}, records[2][:2])

	wb, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer wb.Close()
	v, err := wb.GetCellValue("Fields", "B2")
	require.NoError(t, err)
	assert.Equal(t, "22.00.092.02", v)

	_, err = os.Stat(filepath.Join(outDir, "results", "a.txt"))
	assert.NoError(t, err)
}

func TestBatchSkipsStoredDocuments(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_URL", filepath.Join(dir, "bok.db"))
	in := filepath.Join(dir, "in")
	writeFile(t, filepath.Join(in, "a.txt"), drawing)
	outDir := filepath.Join(dir, "out")

	out, err := run(t, "", "batch", "--out-dir", outDir, in)
	require.NoError(t, err)
	assert.Contains(t, out, "Processed 1, skipped 0, failed 0")

	out, err = run(t, "", "batch", "--out-dir", outDir, in)
	require.NoError(t, err)
	assert.Contains(t, out, "Processed 0, skipped 1, failed 0")

	out, err = run(t, "", "batch", "--force", "--out-dir", outDir, in)
	require.NoError(t, err)
	assert.Contains(t, out, "Processed 1, skipped 0, failed 0")
}

func TestBatchEmptyDirectory(t *testing.T) {
	out, err := run(t, "", "batch", "--no-store", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No documents found")
}

func TestParseLevel(t *testing.T) {
	_, err := parseLevel("loud")
	assert.Error(t, err)
	lvl, err := parseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", lvl.String())
}
