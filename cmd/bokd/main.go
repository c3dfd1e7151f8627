// Package main runs the bok daemon: a watched intake folder, a worker pool and
// the gRPC and HTTP surfaces over the result store.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/book-of-knowledge/internal/async"
	"github.com/joseph-ayodele/book-of-knowledge/internal/common"
	"github.com/joseph-ayodele/book-of-knowledge/internal/export"
	"github.com/joseph-ayodele/book-of-knowledge/internal/extract"
	"github.com/joseph-ayodele/book-of-knowledge/internal/fields"
	"github.com/joseph-ayodele/book-of-knowledge/internal/ingest"
	"github.com/joseph-ayodele/book-of-knowledge/internal/metrics"
	"github.com/joseph-ayodele/book-of-knowledge/internal/ocr"
	"github.com/joseph-ayodele/book-of-knowledge/internal/pipeline"
	"github.com/joseph-ayodele/book-of-knowledge/internal/repository"
	"github.com/joseph-ayodele/book-of-knowledge/internal/server"
	"github.com/joseph-ayodele/book-of-knowledge/internal/transport/httpapi"
)

const shutdownTimeout = 30 * time.Second

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: levelFromEnv()}))
	slog.SetDefault(logger)

	cfg, err := common.LoadConfigFile(os.Getenv("BOK_CONFIG"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("bokd exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *common.Config, logger *slog.Logger) error {
	db, err := repository.Open(ctx, repository.FromAppConfig(cfg.Database), logger)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return err
	}
	if err := db.HealthCheck(ctx, 5*time.Second); err != nil {
		logger.Error("failed to ping database", "error", err)
		return err
	}

	docs := repository.NewDocumentRepository(db, logger)
	jobs := repository.NewExtractJobRepository(db, logger)

	engine := extract.NewEngineAdapter(fields.NewBuilder(nil,
		fields.WithTracer(fields.MultiTracer{metrics.FieldTracer{}, fields.SlogTracer{Logger: logger}}),
		fields.WithLogger(logger),
	))
	text := extract.NewOCRAdapter(ocr.NewExtractor(ocr.FromAppConfig(cfg.OCR), logger))
	dumpDir := cfg.Output.DumpDir
	if dumpDir == "" {
		dumpDir = filepath.Join(cfg.Output.Dir, "results")
	}
	proc := pipeline.NewProcessor(logger, pipeline.Config{
		DumpDir:    dumpDir,
		WriteDumps: cfg.Output.WriteDumps,
	}, ingest.NewFSIngestor(docs, logger), docs, jobs, text, engine)

	queue := async.NewProcessorQueue(proc, logger,
		async.WithWorkers(cfg.Worker.Workers),
		async.WithQueueSize(cfg.Worker.QueueSize),
		async.WithProcessTimeout(cfg.Worker.ProcessTimeout),
		async.WithOnResult(csvSink(cfg.Output.CSVPath, logger)),
	)

	if dir := cfg.Ingest.WatchDir; dir != "" {
		if err := watch(ctx, dir, cfg.Ingest.Debounce, queue, logger); err != nil {
			return err
		}
	}

	// API callers may only submit files under the intake roots.
	roots := cfg.IntakeRoots()
	if len(roots) == 0 {
		logger.Warn("no intake roots configured; file submission over the API is disabled")
	}
	confined := pipeline.Confine(proc, roots)

	// gRPC server
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		return err
	}
	grpcServer, healthServer := server.New(server.NewFieldsService(engine, confined, docs, logger), logger)

	// HTTP server
	api := &httpapi.Server{
		Fields:    engine,
		Processor: confined,
		Docs:      docs,
		Exporter:  export.NewService(docs, logger),
		Health:    db,
		Logger:    logger,
	}
	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("bokd grpc listening", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- err
		}
	}()
	go func() {
		logger.Info("bokd http listening", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-errCh:
		logger.Error("server failed", "error", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	queue.Shutdown(shutdownCtx)
	grpcServer.GracefulStop()
	return serveErr
}

// watch enqueues every document that appears under dir until ctx is done.
func watch(ctx context.Context, dir string, debounce time.Duration, queue async.Queue, logger *slog.Logger) error {
	paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{dir},
		InitialScan: true,
		Debounce:    debounce,
		SkipHidden:  true,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	go func() {
		for err := range errs {
			logger.Warn("watcher.error", "error", err)
		}
	}()
	go func() {
		for p := range paths {
			if err := queue.Enqueue(ctx, async.Job{Path: p}); err != nil {
				logger.Warn("watcher.enqueue.failed", "path", p, "error", err)
				if errors.Is(err, async.ErrQueueClosed) {
					return
				}
			}
		}
	}()
	logger.Info("watching for documents", "dir", dir)
	return nil
}

// csvSink appends each successfully processed document to path. Skipped
// documents are already in the file.
func csvSink(path string, logger *slog.Logger) func(async.Result) {
	if path == "" {
		return nil
	}
	var mu sync.Mutex
	return func(r async.Result) {
		if r.Err != nil || r.Outcome.Skipped {
			return
		}
		row := export.Row{SourceFile: filepath.Base(r.Job.Path), Record: r.Outcome.Record}
		mu.Lock()
		defer mu.Unlock()
		if err := export.AppendCSV(path, []export.Row{row}); err != nil {
			logger.Warn("export.csv.append_failed", "path", path, "error", err)
		}
	}
}

func levelFromEnv() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(os.Getenv("LOG_LEVEL"))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
