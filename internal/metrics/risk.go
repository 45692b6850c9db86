package metrics

import "github.com/prometheus/client_golang/prometheus"

// Risk scoring, reference lookup and similarity index metrics.
var (
	RiskAssessmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "risk_assessments_total",
			Help:      "Completed risk assessments by level",
		},
		[]string{"level"},
	)

	RiskScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "risk_score",
			Help:      "Distribution of aggregated risk scores",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.75, 0.9, 1},
		},
	)

	ReferenceLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "reference_lookups_total",
			Help:      "External reference lookups by outcome",
		},
		[]string{"status"}, // ok / skipped / timeout / network / malformed
	)

	ReferenceLookupDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "reference_lookup_duration_seconds",
			Help:      "External reference lookup duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	IndexBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "index_builds_total",
			Help:      "Similarity index builds by trigger",
		},
		[]string{"trigger"}, // per_request / cold / expired / writes / invalidated
	)

	IndexBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "index_build_duration_seconds",
			Help:      "Time to load the corpus and build the similarity index",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	CorpusSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "corpus_size",
			Help:      "Embeddings in the most recently built similarity index",
		},
	)
)

var riskMetricsRegistered bool

// RegisterRiskMetrics registers scoring metrics. Must be called once from main.
func RegisterRiskMetrics() {
	if riskMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		RiskAssessmentsTotal,
		RiskScore,
		ReferenceLookupsTotal,
		ReferenceLookupDuration,
		IndexBuildsTotal,
		IndexBuildDuration,
		CorpusSize,
	)
	riskMetricsRegistered = true
}
