package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/joseph-ayodele/book-of-knowledge/internal/fields"
)

// EngineAdapter runs the field engine behind the FieldExtractor contract.
type EngineAdapter struct {
	b *fields.Builder
}

func NewEngineAdapter(b *fields.Builder) *EngineAdapter {
	if b == nil {
		b = fields.NewBuilder(nil)
	}
	return &EngineAdapter{b: b}
}

// ExtractFields builds the record and validates its JSON form. The engine does
// not observe ctx; it is checked once so cancelled work is not started.
func (a *EngineAdapter) ExtractFields(ctx context.Context, text string) (FieldsResult, error) {
	if err := ctx.Err(); err != nil {
		return FieldsResult{}, err
	}
	start := time.Now()
	rec := a.b.Build(text)
	data, err := json.Marshal(rec)
	if err != nil {
		return FieldsResult{}, fmt.Errorf("marshal record: %w", err)
	}
	if err := fields.ValidateRecordJSON(data); err != nil {
		return FieldsResult{}, err
	}
	return FieldsResult{Record: rec, JSON: data, Duration: time.Since(start)}, nil
}
