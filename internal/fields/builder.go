package fields

import (
	"log/slog"

	"github.com/joseph-ayodele/book-of-knowledge/constants"
)

// Builder runs every field searcher over one document's text.
// It holds no per-call state and may be shared between goroutines.
type Builder struct {
	searchers []Searcher
	logger    *slog.Logger
}

type Option func(*builderOptions)

type builderOptions struct {
	tracer Tracer
	logger *slog.Logger
}

// WithTracer routes every searcher's diagnostic events to t.
func WithTracer(t Tracer) Option {
	return func(o *builderOptions) { o.tracer = t }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *builderOptions) { o.logger = l }
}

// NewBuilder wires one searcher per field to cat. A nil cat uses DefaultCatalogue.
func NewBuilder(cat *Catalogue, opts ...Option) *Builder {
	o := builderOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if cat == nil {
		cat = DefaultCatalogue()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	tr := o.tracer
	return &Builder{
		searchers: []Searcher{
			NewJobNumberSearcher(cat, tr),
			NewDesignCodeSearcher(cat, tr),
			NewRiskCategorySearcher(cat, tr),
			NewSeismicDesignCategorySearcher(cat, tr),
			NewSiteClassSearcher(cat, tr),
			NewWindSpeedSearcher(cat, tr),
			NewMaterialsSearcher(cat, tr),
			NewSeismicResistanceSearcher(cat, tr),
			NewProjectNameSearcher(cat, tr),
			NewLocationSearcher(cat, tr),
		},
		logger: o.logger,
	}
}

// Searchers returns the searchers in record order.
func (b *Builder) Searchers() []Searcher {
	return append([]Searcher(nil), b.searchers...)
}

// Build searches and standardizes every field independently and assembles the
// record. Fields that found nothing carry their absent sentinel.
func (b *Builder) Build(text string) Record {
	values := make(map[constants.Field]Value, len(b.searchers))
	found := 0
	for _, s := range b.searchers {
		v := s.Standardize(s.Search(text))
		if v.IsAbsent() {
			continue
		}
		values[s.Field()] = v
		found++
	}
	b.logger.Debug("fields.build.ok", "chars", len(text), "fields_found", found)
	return newRecord(values)
}
