package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/book-of-knowledge/internal/fields"
	"github.com/joseph-ayodele/book-of-knowledge/internal/repository"
)

const sheet = "Fields"

// WriteXLSX writes rows as a single-sheet workbook.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range Headers() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row.Cells() {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	for i, c := range columns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, name, name, c.width)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

// SaveXLSX writes rows to path, creating parent directories.
func SaveXLSX(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, rows); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Service produces exports from stored documents.
type Service struct {
	docs   repository.DocumentRepository
	logger *slog.Logger
}

func NewService(docs repository.DocumentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{docs: docs, logger: logger}
}

// ExportDocumentsXLSX returns a workbook with every extracted document matching opts.
// Documents without a stored record are skipped.
func (s *Service) ExportDocumentsXLSX(ctx context.Context, opts repository.ListOptions) ([]byte, error) {
	start := time.Now()

	docs, err := s.docs.ListDocuments(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	rows := make([]Row, 0, len(docs))
	for _, d := range docs {
		if !d.Extracted() {
			continue
		}
		var rec fields.Record
		if err := json.Unmarshal(d.RecordJSON, &rec); err != nil {
			s.logger.Warn("export.record.invalid", "document_id", d.ID, "error", err)
			continue
		}
		rows = append(rows, Row{SourceFile: d.Filename, Record: rec})
	}

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, rows); err != nil {
		return nil, err
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
