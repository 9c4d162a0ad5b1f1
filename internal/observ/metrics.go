package observ

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service-health instruments exposed on /metrics.
// These track pipeline behavior (volume, latency, schema growth), not
// business analytics — lead reporting stays in ad-hoc SQL.
type Metrics struct {
	IngestTotal       *prometheus.CounterVec
	IngestDuration    prometheus.Histogram
	FieldsAutoCreated prometheus.Counter
}

// NewMetrics registers the ingest instruments on reg. Outcome label values:
// "ok", "account_not_found", "persistence_error".
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		IngestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadgate",
			Name:      "ingest_requests_total",
			Help:      "Ingest calls by outcome.",
		}, []string{"outcome"}),
		IngestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leadgate",
			Name:      "ingest_duration_seconds",
			Help:      "End-to-end ingest call duration.",
			Buckets:   prometheus.DefBuckets,
		}),
		FieldsAutoCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "leadgate",
			Name:      "fields_auto_created_total",
			Help:      "Field definitions created by the ingest pipeline.",
		}),
	}
}
