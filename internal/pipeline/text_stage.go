package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/joseph-ayodele/book-of-knowledge/internal/extract"
	"github.com/joseph-ayodele/book-of-knowledge/internal/metrics"
	"github.com/joseph-ayodele/book-of-knowledge/internal/pagedump"
)

// runText is stage 1: document -> text.
func (p *Processor) runText(ctx context.Context, path string) (extract.TextExtractionResult, error) {
	start := time.Now()
	res, err := p.Text.Extract(ctx, path)
	metrics.ObserveStage(metrics.StageText, time.Since(start))
	if err != nil {
		p.Logger.Error("processor.text.failed", "path", path, "err", err)
		return res, fmt.Errorf("extract text %s: %w", path, err)
	}
	for _, w := range res.Warnings {
		p.Logger.Warn("processor.text.warning", "path", path, "warning", w)
	}
	p.Logger.Debug("processor.text.ok",
		"path", path,
		"method", res.Method,
		"pages", len(res.Pages),
		"signal", res.Signal,
	)
	return res, nil
}

// dump writes the page dump for path and returns where it went, or "" when
// dumps are disabled or the write failed.
func (p *Processor) dump(path string, pages []string) string {
	if !p.Cfg.WriteDumps {
		return ""
	}
	out := pagedump.PathFor(p.Cfg.DumpDir, path)
	if err := pagedump.Write(out, path, pages); err != nil {
		p.Logger.Warn("processor.dump.failed", "path", path, "dump", out, "err", err)
		return ""
	}
	return out
}
