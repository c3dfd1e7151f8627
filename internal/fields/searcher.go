// Package fields extracts structured engineering metadata from the flattened,
// often OCR-damaged text of scanned drawing sets.
//
// Each field has its own searcher. Searchers are pure functions of their input
// text and of the shared, immutable Catalogue: they never return errors, and a
// field with no plausible match comes back absent. The Builder runs every
// searcher over one document and assembles a Record.
package fields

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/book-of-knowledge/constants"
)

// Searcher finds and canonicalizes one field.
type Searcher interface {
	Field() constants.Field
	// Search matches the catalogue against text and disambiguates the raw
	// candidates down to one value. It never panics on malformed input.
	Search(text string) Value
	// Standardize canonicalizes a value returned by Search. Fields without a
	// canonical form return v unchanged.
	Standardize(v Value) Value
}

// Event is one diagnostic record emitted by a searcher.
type Event struct {
	Field      constants.Field
	Tier       string
	Candidates []string
	Winner     string
	Absent     bool
}

// Tracer receives diagnostic events. Implementations must be safe for
// concurrent use; the engine calls them from every worker.
type Tracer interface {
	Trace(Event)
}

// NopTracer drops every event.
type NopTracer struct{}

func (NopTracer) Trace(Event) {}

// SlogTracer writes events at debug level.
type SlogTracer struct {
	Logger *slog.Logger
}

func (t SlogTracer) Trace(e Event) {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	logger.Debug("fields.search",
		"field", string(e.Field),
		"tier", e.Tier,
		"candidates", e.Candidates,
		"winner", e.Winner,
		"absent", e.Absent,
	)
}

// MultiTracer fans an event out to several tracers.
type MultiTracer []Tracer

func (m MultiTracer) Trace(e Event) {
	for _, t := range m {
		if t != nil {
			t.Trace(e)
		}
	}
}

func tracerOrNop(t Tracer) Tracer {
	if t == nil {
		return NopTracer{}
	}
	return t
}

// identity is embedded by searchers without a standardization step.
type identity struct{}

func (identity) Standardize(v Value) Value { return v }

func candidateTexts(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Text
	}
	return out
}
