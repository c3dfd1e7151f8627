package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/book-of-knowledge/internal/async"
	"github.com/joseph-ayodele/book-of-knowledge/internal/export"
	"github.com/joseph-ayodele/book-of-knowledge/internal/extract"
	"github.com/joseph-ayodele/book-of-knowledge/internal/fields"
	"github.com/joseph-ayodele/book-of-knowledge/internal/ingest"
	"github.com/joseph-ayodele/book-of-knowledge/internal/pipeline"
	"github.com/joseph-ayodele/book-of-knowledge/internal/repository"
)

var (
	batchOutDir        string
	batchXLSX          string
	batchCSV           string
	batchClear         bool
	batchForce         bool
	batchNoStore       bool
	batchWorkers       int
	batchIncludeHidden bool
)

func init() {
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", "", "output directory (default: output.dir)")
	batchCmd.Flags().StringVar(&batchXLSX, "xlsx", "", "workbook path (default: <out-dir>/extracted_fields_<date>.xlsx)")
	batchCmd.Flags().StringVar(&batchCSV, "csv", "", "also append rows to this CSV file")
	batchCmd.Flags().BoolVar(&batchClear, "clear", false, "truncate the CSV and remove old page dumps first")
	batchCmd.Flags().BoolVar(&batchForce, "force", false, "reprocess documents already in the store")
	batchCmd.Flags().BoolVar(&batchNoStore, "no-store", false, "do not open the result store")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "concurrent documents (default: worker.workers)")
	batchCmd.Flags().BoolVar(&batchIncludeHidden, "include-hidden", false, "descend into hidden files and directories")
}

// batchCmd processes a whole folder of drawings
var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Extract fields from every document in a directory",
	Long: `Walk a directory, extract text and fields from every PDF, image and text
file, and write one row per document to an XLSX workbook (and optionally a CSV).
Page dumps are written to the dump directory and results are kept in the store
so unchanged files are skipped on the next run.

Examples:
  # Process a folder with the configured store
  bok batch ~/Downloads/BOK_PDFs

  # Fresh CSV, no store, eight workers
  bok batch --no-store --clear --csv results/fields.csv --workers 8 ./drawings`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

type batchSummary struct {
	Processed int
	Skipped   int
	Failed    int
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := args[0]
	outDir := firstNonEmpty(batchOutDir, cfg.Output.Dir, ".")
	dumpDir := firstNonEmpty(cfg.Output.DumpDir, filepath.Join(outDir, "results"))
	stamp := time.Now().Format("2006-01-02")
	xlsxPath := firstNonEmpty(batchXLSX, cfg.Output.XLSXPath, filepath.Join(outDir, "extracted_fields_"+stamp+".xlsx"))
	csvPath := firstNonEmpty(batchCSV, cfg.Output.CSVPath)

	if batchClear {
		if err := clearOutputs(csvPath, dumpDir); err != nil {
			return err
		}
	}

	var (
		docs repository.DocumentRepository
		jobs repository.ExtractJobRepository
	)
	if !batchNoStore {
		db, err := repository.Open(ctx, repository.FromAppConfig(cfg.Database), logger)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		docs = repository.NewDocumentRepository(db, logger)
		jobs = repository.NewExtractJobRepository(db, logger)
	}

	ingestor := ingest.NewFSIngestor(docs, logger)
	engine := extract.NewEngineAdapter(fields.NewBuilder(nil,
		fields.WithTracer(fields.SlogTracer{Logger: logger}),
		fields.WithLogger(logger),
	))
	proc := pipeline.NewProcessor(logger, pipeline.Config{
		DumpDir:    dumpDir,
		WriteDumps: cfg.Output.WriteDumps,
	}, ingestor, docs, jobs, newTextExtractor(), engine)

	paths, err := ingestor.Discover(ctx, root, !batchIncludeHidden)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No documents found in %s\n", root)
		return nil
	}

	results := processAll(ctx, proc, paths)
	rows, summary := summarize(cmd, results)

	if err := export.SaveXLSX(xlsxPath, rows); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	if csvPath != "" {
		if err := export.AppendCSV(csvPath, rows); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Processed %d, skipped %d, failed %d\n", summary.Processed, summary.Skipped, summary.Failed)
	fmt.Fprintf(w, "Workbook: %s\n", xlsxPath)
	if csvPath != "" {
		fmt.Fprintf(w, "CSV:      %s\n", csvPath)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d documents failed", summary.Failed, len(paths))
	}
	return nil
}

// processAll runs every path through the worker pool and returns the results
// in path order.
func processAll(ctx context.Context, proc async.Processor, paths []string) []async.Result {
	workers := batchWorkers
	if workers <= 0 {
		workers = cfg.Worker.Workers
	}

	var (
		mu      sync.Mutex
		results = make([]async.Result, 0, len(paths))
	)
	queue := async.NewProcessorQueue(proc, logger,
		async.WithWorkers(workers),
		async.WithQueueSize(cfg.Worker.QueueSize),
		async.WithProcessTimeout(cfg.Worker.ProcessTimeout),
		async.WithOnResult(func(r async.Result) {
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		}),
	)

	for _, p := range paths {
		if err := queue.Enqueue(ctx, async.Job{Path: p, Force: batchForce}); err != nil {
			logger.Warn("batch.enqueue.failed", "path", p, "error", err)
			break
		}
	}
	// drains what was queued; workers do not observe ctx
	queue.Shutdown(context.Background())

	sort.Slice(results, func(i, j int) bool { return results[i].Job.Path < results[j].Job.Path })
	return results
}

func summarize(cmd *cobra.Command, results []async.Result) ([]export.Row, batchSummary) {
	var (
		rows []export.Row
		sum  batchSummary
	)
	for _, r := range results {
		if r.Err != nil {
			sum.Failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "FAILED %s: %v\n", r.Job.Path, r.Err)
			continue
		}
		if r.Outcome.Skipped {
			sum.Skipped++
		} else {
			sum.Processed++
		}
		rows = append(rows, export.Row{
			SourceFile: filepath.Base(r.Job.Path),
			Record:     r.Outcome.Record,
		})
	}
	return rows, sum
}

func clearOutputs(csvPath, dumpDir string) error {
	if csvPath != "" {
		if err := export.ClearCSV(csvPath); err != nil {
			return fmt.Errorf("clear csv: %w", err)
		}
	}
	n, err := export.ClearDumps(dumpDir)
	if err != nil {
		return fmt.Errorf("clear dumps: %w", err)
	}
	logger.Info("batch.clear.ok", "csv", csvPath, "dumps_removed", n)
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
