package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/book-of-knowledge/internal/common"
)

// RequestIDHeader is read from incoming metadata; a new ID is generated when absent.
const RequestIDHeader = "x-request-id"

// New builds a gRPC server with the FieldExtractor, health and reflection
// services registered. The health server starts SERVING.
func New(svc FieldExtractorServer, logger *slog.Logger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(UnaryLogging(logger))}, opts...)
	grpcServer := grpc.NewServer(opts...)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	// Reflection for grpcurl
	reflection.Register(grpcServer)

	RegisterFieldExtractorServer(grpcServer, svc)
	return grpcServer, hs
}

// UnaryLogging attaches a request ID and request-scoped logger to the context
// and logs every call with its status code.
func UnaryLogging(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		id := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(RequestIDHeader); len(v) > 0 {
				id = v[0]
			}
		}
		if id == "" {
			id = uuid.NewString()
		}
		log := logger.With("request_id", id, "method", info.FullMethod)
		ctx = common.WithLogger(common.WithRequestID(ctx, id), log)

		resp, err := handler(ctx, req)
		code := status.Code(err)
		log.Info("grpc.request", "code", code.String(), "elapsed_ms", time.Since(start).Milliseconds())
		return resp, err
	}
}
