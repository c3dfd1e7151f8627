package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/book-of-knowledge/constants"
	"github.com/joseph-ayodele/book-of-knowledge/internal/common"
	"github.com/joseph-ayodele/book-of-knowledge/internal/entity"
	"github.com/joseph-ayodele/book-of-knowledge/internal/repository"
)

// FSIngestor reads from the local filesystem. Without a document repository it
// only hashes files.
type FSIngestor struct {
	Docs        repository.DocumentRepository
	AllowedExts map[string]struct{} // lowercased sans '.'; nil -> default set
	Logger      *slog.Logger
}

var _ Ingestor = (*FSIngestor)(nil)

func NewFSIngestor(docs repository.DocumentRepository, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{Docs: docs, Logger: logger}
}

func (i *FSIngestor) allowed(ext string) bool {
	if i.AllowedExts == nil {
		return AllowedExt(ext)
	}
	return allowedIn(ext, i.AllowedExts)
}

func (i *FSIngestor) logger() *slog.Logger {
	if i.Logger == nil {
		return slog.Default()
	}
	return i.Logger
}

func (i *FSIngestor) IngestPath(ctx context.Context, path string) (IngestionResult, error) {
	var out IngestionResult
	log := i.logger()

	abs, err := filepath.Abs(path)
	if err != nil {
		log.Error("ingest.abs.failed", "path", path, "error", err)
		return out, err
	}

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if !i.allowed(ext) {
		log.Warn("ingest.unsupported", "path", abs, "ext", ext)
		return out, fmt.Errorf("%w: %q", common.ErrUnsupportedFile, ext)
	}

	sum, size, err := HashFile(abs)
	if err != nil {
		log.Error("ingest.hash.failed", "path", abs, "error", err)
		return out, err
	}

	out = IngestionResult{
		SourcePath: abs,
		Hash:       sum,
		HashHex:    hex.EncodeToString(sum),
		FileExt:    ext,
		Format:     constants.MapExtToFormat(ext),
		Size:       size,
		UploadedAt: time.Now().UTC(),
	}
	if i.Docs == nil {
		return out, nil
	}

	doc, existed, err := i.Docs.UpsertDocument(ctx, entity.FileMeta{
		SourcePath:  abs,
		Filename:    filepath.Base(abs),
		FileExt:     ext,
		FileSize:    size,
		ContentHash: sum,
		UploadedAt:  out.UploadedAt,
	})
	if err != nil {
		return out, err
	}
	out.DocumentID = doc.ID.String()
	out.Deduplicated = existed
	out.UploadedAt = doc.UploadedAt
	out.Document = doc
	log.Debug("ingest.ok", "path", abs, "document_id", out.DocumentID, "dedup", existed)
	return out, nil
}

// IngestDirectory walks root, skips hidden if requested,
// and calls IngestPath for each file. Returns per-file results + aggregate stats.
func (i *FSIngestor) IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, common.NewAppError("INVALID_ARGUMENT", "root_path is required", common.ErrInvalidInput)
	}

	var results []IngestionResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		if !i.allowed(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		r, err := i.IngestPath(ctx, path)
		if err != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: err.Error()})
			stats.Failed++
			return nil
		}

		results = append(results, r)
		stats.Succeeded++
		if r.Deduplicated {
			stats.Deduplicated++
		}
		return nil
	})

	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	i.logger().Info("ingest.directory.ok", "root", root,
		"matched", stats.Matched, "succeeded", stats.Succeeded, "failed", stats.Failed)
	return results, stats, nil
}

// HashFile returns the sha256 digest and size of the file at path.
func HashFile(path string) ([]byte, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, common.NewAppError("NOT_FOUND", "file not found: "+path, common.ErrNotFound)
		}
		return nil, 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return nil, 0, fmt.Errorf("hash %s: %w", path, err)
	}
	return h.Sum(nil), n, nil
}

// Discover lists the files under root that IngestDirectory would pick up, in
// walk order, without hashing or storing them.
func (i *FSIngestor) Discover(ctx context.Context, root string, skipHidden bool) ([]string, error) {
	if strings.TrimSpace(root) == "" {
		return nil, common.NewAppError("INVALID_ARGUMENT", "root_path is required", common.ErrInvalidInput)
	}
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			i.logger().Warn("ingest.walk.failed", "path", path, "error", walkErr)
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && i.allowed(filepath.Ext(path)) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return out, fmt.Errorf("walk: %w", err)
	}
	return out, nil
}
