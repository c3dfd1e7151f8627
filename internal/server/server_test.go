package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/joseph-ayodele/book-of-knowledge/internal/common"
	"github.com/joseph-ayodele/book-of-knowledge/internal/extract"
	"github.com/joseph-ayodele/book-of-knowledge/internal/ingest"
	"github.com/joseph-ayodele/book-of-knowledge/internal/ocr"
	"github.com/joseph-ayodele/book-of-knowledge/internal/pipeline"
	"github.com/joseph-ayodele/book-of-knowledge/internal/repository"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func startServer(t *testing.T, svc FieldExtractorServer) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv, _ := New(svc, discard)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func newService(t *testing.T) *FieldsService {
	t.Helper()
	return newServiceWithRoots(t, nil)
}

func newServiceWithRoots(t *testing.T, roots []string) *FieldsService {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{Driver: repository.DriverSQLite, DSN: ":memory:"}, discard)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))

	docs := repository.NewDocumentRepository(db, discard)
	jobs := repository.NewExtractJobRepository(db, discard)
	fe := extract.NewEngineAdapter(nil)
	tx := extract.NewOCRAdapter(ocr.NewExtractor(ocr.DefaultConfig(), discard))
	var proc FileProcessor = pipeline.NewProcessor(discard, pipeline.Config{}, ingest.NewFSIngestor(docs, discard), docs, jobs, tx, fe)
	if roots != nil {
		proc = pipeline.Confine(proc, roots)
	}
	return NewFieldsService(fe, proc, docs, discard)
}

func TestExtractText(t *testing.T) {
	client := NewClient(startServer(t, newService(t)))

	resp, err := client.ExtractText(context.Background(), "RISK CATEGORY II\nSITE CLASS D")
	require.NoError(t, err)
	rec := resp.GetFields()["record"].GetStructValue().AsMap()
	assert.Equal(t, "II", rec["risk_category"])
	assert.Equal(t, "D", rec["site_class"])
	assert.Nil(t, rec["job_number"])
}

func TestExtractTextRequiresText(t *testing.T) {
	conn := startServer(t, newService(t))
	_, err := NewClient(conn).call(context.Background(), MethodExtractText, map[string]any{"text": 7})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestProcessFileAndList(t *testing.T) {
	client := NewClient(startServer(t, newService(t)))
	path := filepath.Join(t.TempDir(), "S-001.txt")
	require.NoError(t, os.WriteFile(path, []byte("B&P Job Number: 22.00.092.02\nSITE CLASS D"), 0o644))

	resp, err := client.ProcessFile(context.Background(), path, false)
	require.NoError(t, err)
	out := resp.AsMap()
	assert.Equal(t, false, out["skipped"])
	assert.NotEmpty(t, out["document_id"])
	assert.Equal(t, "22.00.092.02", out["record"].(map[string]any)["job_number"])

	again, err := client.ProcessFile(context.Background(), path, false)
	require.NoError(t, err)
	assert.Equal(t, true, again.AsMap()["skipped"])

	list, err := client.ListDocuments(context.Background(), 10, 0)
	require.NoError(t, err)
	docs := list.GetFields()["documents"].GetListValue().GetValues()
	require.Len(t, docs, 1)
	assert.Equal(t, "S-001.txt", docs[0].GetStructValue().AsMap()["filename"])
}

func TestProcessFileErrors(t *testing.T) {
	client := NewClient(startServer(t, newService(t)))

	_, err := client.ProcessFile(context.Background(), "  ", false)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"), false)
	assert.Equal(t, codes.NotFound, status.Code(err))

	doc := filepath.Join(t.TempDir(), "notes.doc")
	require.NoError(t, os.WriteFile(doc, []byte("x"), 0o644))
	_, err = client.ProcessFile(context.Background(), doc, false)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestProcessFileOutsideIntakeRoots(t *testing.T) {
	root := t.TempDir()
	client := NewClient(startServer(t, newServiceWithRoots(t, []string{root})))
	outside := filepath.Join(t.TempDir(), "S-002.txt")
	require.NoError(t, os.WriteFile(outside, []byte("SITE CLASS D"), 0o644))

	_, err := client.ProcessFile(context.Background(), outside, false)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	inside := filepath.Join(root, "S-001.txt")
	require.NoError(t, os.WriteFile(inside, []byte("SITE CLASS D"), 0o644))
	_, err = client.ProcessFile(context.Background(), inside, false)
	assert.NoError(t, err)
}

func TestUnconfiguredService(t *testing.T) {
	client := NewClient(startServer(t, NewFieldsService(extract.NewEngineAdapter(nil), nil, nil, discard)))
	_, err := client.ProcessFile(context.Background(), "/a.pdf", false)
	assert.Equal(t, codes.Unimplemented, status.Code(err))
	_, err = client.ListDocuments(context.Background(), 1, 0)
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestHealthServing(t *testing.T) {
	conn := startServer(t, newService(t))
	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: serviceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestUnaryLoggingPropagatesRequestID(t *testing.T) {
	var got string
	interceptor := UnaryLogging(discard)
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDHeader, "req-42"))
	_, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: MethodExtractText},
		func(ctx context.Context, _ any) (any, error) {
			got = common.RequestIDFromContext(ctx)
			return nil, nil
		})
	require.NoError(t, err)
	assert.Equal(t, "req-42", got)
}
