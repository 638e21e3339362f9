package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bhqueue_messages_ingested_total",
		Help: "The total number of ingested queue reports",
	}, []string{"source"})

	SignalsParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bhqueue_signals_parsed_total",
		Help: "Parsed queue reports by outcome (stored, no_signal, duplicate)",
	}, []string{"outcome"})

	ContextCombinations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bhqueue_context_combinations_total",
		Help: "Replies whose parent context improved the extraction",
	})

	MarkerReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bhqueue_marker_reloads_total",
		Help: "Spatial marker gazetteer reload attempts by status",
	}, []string{"status"})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bhqueue_llm_request_duration_seconds",
		Help:    "Duration of LLM parse requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})

	EstimateWaitMinutes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bhqueue_estimate_wait_minutes",
		Help: "Most recently computed aggregated wait estimate",
	})

	EstimateDataPoints = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bhqueue_estimate_data_points",
		Help: "Number of signals behind the most recent aggregated estimate",
	})
)

// Ingest outcome label values for SignalsParsed.
const (
	OutcomeStored    = "stored"
	OutcomeNoSignal  = "no_signal"
	OutcomeDuplicate = "duplicate"
)
