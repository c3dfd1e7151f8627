// Package httpapi exposes the extraction engine and document store over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/book-of-knowledge/internal/common"
	"github.com/joseph-ayodele/book-of-knowledge/internal/export"
	"github.com/joseph-ayodele/book-of-knowledge/internal/extract"
	"github.com/joseph-ayodele/book-of-knowledge/internal/metrics"
	"github.com/joseph-ayodele/book-of-knowledge/internal/pipeline"
	"github.com/joseph-ayodele/book-of-knowledge/internal/repository"
	"github.com/joseph-ayodele/book-of-knowledge/internal/view"
)

// maxBodyBytes bounds request bodies; drawing text sets run to a few hundred KB.
const maxBodyBytes = 8 << 20

// FileProcessor is the pipeline entry point behind POST /v1/files.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string, force bool) (pipeline.Outcome, error)
}

// HealthChecker reports store health for /healthz.
type HealthChecker interface {
	HealthCheck(ctx context.Context, timeout time.Duration) error
}

// Server holds the HTTP handlers. Any dependency except Fields may be nil; the
// routes that need it then answer 501.
type Server struct {
	Fields    extract.FieldExtractor
	Processor FileProcessor
	Docs      repository.DocumentRepository
	Exporter  *export.Service
	Health    HealthChecker
	Logger    *slog.Logger
}

// Router returns the chi router with middleware and every route mounted.
func (s *Server) Router() http.Handler {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.Logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogger(s.Logger))
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", metrics.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Post("/extract", s.extractText)
		r.Post("/files", s.processFile)
		r.Get("/documents", s.listDocuments)
		r.Get("/documents/{id}", s.getDocument)
		r.Get("/export.xlsx", s.exportXLSX)
	})
	return r
}

type extractRequest struct {
	Text *string `json:"text"`
}

func (s *Server) extractText(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Text == nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "text is required")
		return
	}
	res, err := s.Fields.ExtractFields(r.Context(), *req.Text)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	rec, err := view.Record(res.Record)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"record": rec, "duration_ms": res.Duration.Milliseconds()})
}

type fileRequest struct {
	Path  string `json:"path"`
	Force bool   `json:"force"`
}

func (s *Server) processFile(w http.ResponseWriter, r *http.Request) {
	if s.Processor == nil {
		writeError(w, http.StatusNotImplemented, "not_implemented", "file processing is not configured")
		return
	}
	var req fileRequest
	if !decode(w, r, &req) {
		return
	}
	path := strings.TrimSpace(req.Path)
	if path == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "path is required")
		return
	}
	out, err := s.Processor.ProcessFile(r.Context(), path, req.Force)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	m, err := view.Outcome(out)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) listOptions(w http.ResponseWriter, r *http.Request) (repository.ListOptions, bool) {
	var opts repository.ListOptions
	q := r.URL.Query()
	for key, dst := range map[string]*int{"limit": &opts.Limit, "offset": &opts.Offset} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "validation_failed", key+" must be a non-negative integer")
			return opts, false
		}
		*dst = n
	}
	if raw := q.Get("needs_review"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "needs_review must be a boolean")
			return opts, false
		}
		opts.NeedsReview = &b
	}
	return opts, true
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	if s.Docs == nil {
		writeError(w, http.StatusNotImplemented, "not_implemented", "document store is not configured")
		return
	}
	opts, ok := s.listOptions(w, r)
	if !ok {
		return
	}
	docs, err := s.Docs.ListDocuments(r.Context(), opts)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	list, err := view.Documents(docs)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": list})
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	if s.Docs == nil {
		writeError(w, http.StatusNotImplemented, "not_implemented", "document store is not configured")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "id must be a UUID")
		return
	}
	doc, err := s.Docs.GetByID(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	m, err := view.Document(*doc)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) exportXLSX(w http.ResponseWriter, r *http.Request) {
	if s.Exporter == nil {
		writeError(w, http.StatusNotImplemented, "not_implemented", "export is not configured")
		return
	}
	opts, ok := s.listOptions(w, r)
	if !ok {
		return
	}
	data, err := s.Exporter.ExportDocumentsXLSX(r.Context(), opts)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="fields.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.Health != nil {
		if err := s.Health.HealthCheck(r.Context(), 2*time.Second); err != nil {
			s.Logger.Warn("healthz.failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleError maps application sentinels onto HTTP statuses. Internal errors
// are logged and not echoed to the client.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrUnsupportedFile):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, common.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, common.ErrNoText):
		writeError(w, http.StatusUnprocessableEntity, "no_text", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", "processing timed out")
	default:
		common.LoggerFromContext(r.Context(), s.Logger).Error("http.request.failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message})
}
