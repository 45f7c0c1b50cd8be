package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DocumentsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_documents_ingested_total",
			Help: "Total number of candidate documents processed by ingestion",
		},
		[]string{"status"},
	)

	MaskedSpans = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_masked_spans_total",
			Help: "Total number of protected-attribute spans replaced by the guardrail masker",
		},
	)

	Searches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_searches_total",
			Help: "Total number of hybrid retrieval queries served",
		},
	)

	GenerationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_generation_failures_total",
			Help: "Total number of rationale generation calls that degraded to the sentinel message",
		},
	)
)
