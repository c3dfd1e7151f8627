// Package metrics holds the Prometheus collectors for extraction and HTTP traffic.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joseph-ayodele/book-of-knowledge/constants"
	"github.com/joseph-ayodele/book-of-knowledge/internal/fields"
)

const namespace = "bok"

var (
	DocumentsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_processed_total",
			Help:      "Documents processed by terminal job status",
		},
		[]string{"status"},
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each processing stage in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"stage"},
	)

	FieldResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "field_results_total",
			Help:      "Searcher outcomes per field and tier",
		},
		[]string{"field", "tier", "result"}, // result: "hit" / "absent"
	)
)

func init() {
	prometheus.MustRegister(DocumentsProcessedTotal)
	prometheus.MustRegister(StageDuration)
	prometheus.MustRegister(FieldResultsTotal)
}

// Stage labels for StageDuration.
const (
	StageText   = "text"
	StageFields = "fields"
	StageTotal  = "total"
)

// RecordDocument counts one document reaching status.
func RecordDocument(status constants.JobStatus) {
	DocumentsProcessedTotal.WithLabelValues(string(status)).Inc()
}

// ObserveStage records how long stage took.
func ObserveStage(stage string, d time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// FieldTracer counts searcher outcomes. It is safe for concurrent use.
type FieldTracer struct{}

var _ fields.Tracer = FieldTracer{}

func (FieldTracer) Trace(e fields.Event) {
	result := "hit"
	if e.Absent {
		result = "absent"
	}
	tier := e.Tier
	if tier == "" {
		tier = "none"
	}
	FieldResultsTotal.WithLabelValues(string(e.Field), tier, result).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
