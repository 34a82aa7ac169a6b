package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScoringRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agricredit_scoring_requests_total",
			Help: "Total number of credit scoring runs by scorer source",
		},
		[]string{"source"},
	)

	NarrativeFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agricredit_narrative_fallbacks_total",
			Help: "Total number of narrative-model failures that fell back to the heuristic scorer",
		},
	)

	GateDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agricredit_gate_decisions_total",
			Help: "Total number of loan eligibility gate decisions by outcome",
		},
		[]string{"outcome"},
	)

	ScoringDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agricredit_scoring_duration_seconds",
			Help:    "Duration of full scoring pipeline runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
