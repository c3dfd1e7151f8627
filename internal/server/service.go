package server

import (
	"context"
	"log/slog"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/book-of-knowledge/internal/common"
	"github.com/joseph-ayodele/book-of-knowledge/internal/extract"
	"github.com/joseph-ayodele/book-of-knowledge/internal/pipeline"
	"github.com/joseph-ayodele/book-of-knowledge/internal/repository"
	"github.com/joseph-ayodele/book-of-knowledge/internal/view"
)

// FileProcessor is the pipeline entry point the service drives.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string, force bool) (pipeline.Outcome, error)
}

type FieldsService struct {
	fields    extract.FieldExtractor
	processor FileProcessor
	docs      repository.DocumentRepository
	logger    *slog.Logger
}

var _ FieldExtractorServer = (*FieldsService)(nil)

func NewFieldsService(fe extract.FieldExtractor, proc FileProcessor, docs repository.DocumentRepository, logger *slog.Logger) *FieldsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FieldsService{fields: fe, processor: proc, docs: docs, logger: logger}
}

func (s *FieldsService) ExtractText(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	log := common.LoggerFromContext(ctx, s.logger)
	text, ok := stringField(req, "text")
	if !ok {
		log.Error("extract request missing text")
		return nil, status.Error(codes.InvalidArgument, "text is required")
	}

	res, err := s.fields.ExtractFields(ctx, text)
	if err != nil {
		log.Error("extract text failed", "error", err)
		return nil, common.ToStatus(err)
	}
	rec, err := view.Record(res.Record)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return toStruct(map[string]any{
		"record":      rec,
		"duration_ms": res.Duration.Milliseconds(),
	})
}

func (s *FieldsService) ProcessFile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	log := common.LoggerFromContext(ctx, s.logger)
	if s.processor == nil {
		return nil, status.Error(codes.Unimplemented, "file processing is not configured")
	}
	path, _ := stringField(req, "path")
	path = strings.TrimSpace(path)
	if path == "" {
		log.Error("process request missing path")
		return nil, status.Error(codes.InvalidArgument, "path is required")
	}
	force := req.GetFields()["force"].GetBoolValue()

	log.Info("starting file processing", "path", path, "force", force)
	out, err := s.processor.ProcessFile(ctx, path, force)
	if err != nil {
		log.Error("pipeline.failed", "path", path, "err", err)
		return nil, common.ToStatus(err)
	}
	m, err := view.Outcome(out)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return toStruct(m)
}

func (s *FieldsService) ListDocuments(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	log := common.LoggerFromContext(ctx, s.logger)
	if s.docs == nil {
		return nil, status.Error(codes.Unimplemented, "document store is not configured")
	}
	f := req.GetFields()
	opts := repository.ListOptions{
		Limit:  int(f["limit"].GetNumberValue()),
		Offset: int(f["offset"].GetNumberValue()),
	}
	if v, ok := f["needs_review"]; ok {
		if _, isBool := v.GetKind().(*structpb.Value_BoolValue); isBool {
			b := v.GetBoolValue()
			opts.NeedsReview = &b
		}
	}
	if opts.Limit < 0 || opts.Offset < 0 {
		return nil, status.Error(codes.InvalidArgument, "limit and offset must be non-negative")
	}

	docs, err := s.docs.ListDocuments(ctx, opts)
	if err != nil {
		log.Warn("list documents failed", "error", err)
		return nil, status.Error(codes.Internal, "list documents failed")
	}
	list, err := view.Documents(docs)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return toStruct(map[string]any{"documents": list})
}

func stringField(s *structpb.Struct, key string) (string, bool) {
	v, ok := s.GetFields()[key]
	if !ok {
		return "", false
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", false
	}
	return sv.StringValue, true
}

func toStruct(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}
