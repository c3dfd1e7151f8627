package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/joseph-ayodele/book-of-knowledge/internal/extract"
	"github.com/joseph-ayodele/book-of-knowledge/internal/metrics"
)

// runFields is stage 2: text -> validated record.
func (p *Processor) runFields(ctx context.Context, text string) (extract.FieldsResult, error) {
	start := time.Now()
	res, err := p.Fields.ExtractFields(ctx, text)
	metrics.ObserveStage(metrics.StageFields, time.Since(start))
	if err != nil {
		p.Logger.Error("processor.fields.failed", "err", err)
		return res, fmt.Errorf("extract fields: %w", err)
	}
	p.Logger.Debug("processor.fields.ok", "elapsed_ms", res.Duration.Milliseconds())
	return res, nil
}
