package repository

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/book-of-knowledge/internal/common"
	"github.com/joseph-ayodele/book-of-knowledge/internal/entity"
	"github.com/joseph-ayodele/book-of-knowledge/internal/fields"
)

type DocumentRepository interface {
	// UpsertDocument inserts a file by content hash, or refreshes its path if the
	// hash is already known. existed reports which case happened.
	UpsertDocument(ctx context.Context, meta entity.FileMeta) (doc *entity.Document, existed bool, err error)
	// SaveExtraction stores the text and record for an existing document.
	SaveExtraction(ctx context.Context, id uuid.UUID, ex entity.Extraction) error
	GetByHash(ctx context.Context, hash []byte) (*entity.Document, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	ListDocuments(ctx context.Context, opts ListOptions) ([]entity.Document, error)
}

// ListOptions pages through documents newest first.
type ListOptions struct {
	Limit       int
	Offset      int
	NeedsReview *bool
}

const defaultListLimit = 100

type documentRepo struct {
	db  *DB
	log *slog.Logger
}

func NewDocumentRepository(db *DB, log *slog.Logger) DocumentRepository {
	if log == nil {
		log = db.logger
	}
	return &documentRepo{db: db, log: log}
}

const documentColumns = `id, source_path, filename, file_ext, file_size, content_hash, text,
	record_json, method, signal, needs_review, uploaded_at, extracted_at`

func (r *documentRepo) UpsertDocument(ctx context.Context, meta entity.FileMeta) (*entity.Document, bool, error) {
	if len(meta.ContentHash) == 0 {
		return nil, false, common.NewAppError("INVALID_ARGUMENT", "content hash is required", common.ErrInvalidInput)
	}
	uploaded := meta.UploadedAt
	if uploaded.IsZero() {
		uploaded = time.Now()
	}
	proposed := uuid.New()
	q := r.db.rebind(`INSERT INTO documents (id, source_path, filename, file_ext, file_size, content_hash, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (content_hash) DO UPDATE SET source_path = excluded.source_path, filename = excluded.filename`)
	_, err := r.db.sql.ExecContext(ctx, q,
		proposed.String(), meta.SourcePath, meta.Filename, meta.FileExt, meta.FileSize,
		hex.EncodeToString(meta.ContentHash), formatTS(uploaded))
	if err != nil {
		r.log.Error("document upsert failed", "path", meta.SourcePath, "err", err)
		return nil, false, fmt.Errorf("%w: upsert document: %w", common.ErrDatabase, err)
	}

	doc, err := r.GetByHash(ctx, meta.ContentHash)
	if err != nil {
		return nil, false, err
	}
	existed := doc.ID != proposed
	r.log.Info("document upserted", "document_id", doc.ID, "path", meta.SourcePath, "existed", existed)
	return doc, existed, nil
}

func (r *documentRepo) SaveExtraction(ctx context.Context, id uuid.UUID, ex entity.Extraction) error {
	var record any
	if len(ex.RecordJSON) > 0 {
		if err := fields.ValidateRecordJSON(ex.RecordJSON); err != nil {
			r.log.Warn("document record rejected", "document_id", id, "err", err)
			return err
		}
		record = string(ex.RecordJSON)
	}
	at := ex.ExtractedAt
	if at.IsZero() {
		at = time.Now()
	}
	q := r.db.rebind(`UPDATE documents
		SET text = ?, record_json = ?, method = ?, signal = ?, needs_review = ?, extracted_at = ?
		WHERE id = ?`)
	res, err := r.db.sql.ExecContext(ctx, q,
		ex.Text, record, ex.Method, float64(ex.Signal), ex.NeedsReview, formatTS(at), id.String())
	if err != nil {
		r.log.Error("document save failed", "document_id", id, "err", err)
		return fmt.Errorf("%w: save extraction: %w", common.ErrDatabase, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.NewAppError("NOT_FOUND", "document "+id.String()+" not found", common.ErrNotFound)
	}
	r.log.Info("document extraction saved", "document_id", id, "method", ex.Method, "needs_review", ex.NeedsReview)
	return nil
}

func (r *documentRepo) GetByHash(ctx context.Context, hash []byte) (*entity.Document, error) {
	q := r.db.rebind(`SELECT ` + documentColumns + ` FROM documents WHERE content_hash = ?`)
	doc, err := scanDocument(r.db.sql.QueryRowContext(ctx, q, hex.EncodeToString(hash)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("NOT_FOUND", "no document with hash "+hex.EncodeToString(hash), common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get document: %w", common.ErrDatabase, err)
	}
	return doc, nil
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	q := r.db.rebind(`SELECT ` + documentColumns + ` FROM documents WHERE id = ?`)
	doc, err := scanDocument(r.db.sql.QueryRowContext(ctx, q, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("NOT_FOUND", "document "+id.String()+" not found", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get document: %w", common.ErrDatabase, err)
	}
	return doc, nil
}

func (r *documentRepo) ListDocuments(ctx context.Context, opts ListOptions) ([]entity.Document, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset := max(opts.Offset, 0)

	q := `SELECT ` + documentColumns + ` FROM documents`
	args := []any{}
	if opts.NeedsReview != nil {
		q += ` WHERE needs_review = ?`
		args = append(args, *opts.NeedsReview)
	}
	q += ` ORDER BY uploaded_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.sql.QueryContext(ctx, r.db.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []entity.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan document: %w", common.ErrDatabase, err)
		}
		out = append(out, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list documents: %w", common.ErrDatabase, err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(s rowScanner) (*entity.Document, error) {
	var (
		d                  entity.Document
		id, hash, uploaded string
		record, extracted  sql.NullString
		signal             float64
	)
	if err := s.Scan(&id, &d.SourcePath, &d.Filename, &d.FileExt, &d.FileSize, &hash, &d.Text,
		&record, &d.Method, &signal, &d.NeedsReview, &uploaded, &extracted); err != nil {
		return nil, err
	}
	var err error
	if d.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if d.ContentHash, err = hex.DecodeString(hash); err != nil {
		return nil, err
	}
	if d.UploadedAt, err = parseTS(uploaded); err != nil {
		return nil, err
	}
	if d.ExtractedAt, err = nullTS(extracted); err != nil {
		return nil, err
	}
	if record.Valid {
		d.RecordJSON = []byte(record.String)
	}
	d.Signal = float32(signal)
	return &d, nil
}
