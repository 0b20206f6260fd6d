package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Ingest outcome labels
const (
	OutcomeCreated   = "created"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// Metrics holds the Prometheus collectors of the ingestion pipeline
type Metrics struct {
	IngestTotal    *prometheus.CounterVec
	IngestDuration prometheus.Histogram
	FundsScored    prometheus.Counter
	TagsAssigned   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg (nil: not registered)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		IngestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundlens_ingest_total",
				Help: "Total number of ingestion runs by outcome",
			},
			[]string{"status"},
		),

		IngestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fundlens_ingest_duration_seconds",
				Help:    "Duration of ingestion runs in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
		),

		FundsScored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fundlens_funds_scored_total",
				Help: "Total number of fund rows scored",
			},
		),

		TagsAssigned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundlens_tags_assigned_total",
				Help: "Total number of tags assigned by tag",
			},
			[]string{"tag"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.IngestTotal, m.IngestDuration, m.FundsScored, m.TagsAssigned)
	}

	return m
}
