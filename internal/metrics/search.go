package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline metrics. Registered explicitly from the composition root
// (no init()) so tests can exercise the orchestrator without touching the
// default registry.
var (
	// SearchStagesTotal counts fallback stage executions by outcome:
	// "hit" (products found), "empty", or "error" (recovered gateway
	// failure).
	SearchStagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodsearch",
			Name:      "search_stages_total",
			Help:      "Fallback search stage executions by stage and outcome",
		},
		[]string{"stage", "outcome"},
	)

	// SearchRunsTotal counts whole search invocations by final result:
	// "found", "alternatives", or "rejected" (input/gateway error).
	SearchRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodsearch",
			Name:      "search_runs_total",
			Help:      "Search invocations by final result",
		},
		[]string{"result"},
	)

	// TaxonomyCacheTotal counts taxonomy cache lookups by "hit"/"miss".
	TaxonomyCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodsearch",
			Name:      "taxonomy_cache_total",
			Help:      "Taxonomy cache lookups by result",
		},
		[]string{"result"},
	)
)

// RegisterSearchMetrics registers the search pipeline metrics with the
// default registry.
func RegisterSearchMetrics() {
	prometheus.MustRegister(SearchStagesTotal)
	prometheus.MustRegister(SearchRunsTotal)
	prometheus.MustRegister(TaxonomyCacheTotal)
}
