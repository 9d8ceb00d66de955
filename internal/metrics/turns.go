package metrics

import "github.com/prometheus/client_golang/prometheus"

// Dialogue Prometheus metrics.
var (
	TurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dialog",
			Name:      "turns_total",
			Help:      "Total turns processed by intent and outcome",
		},
		[]string{"intent", "outcome"},
	)

	SuggestionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dialog",
			Name:      "suggestions_total",
			Help:      "Pending suggestion lifecycle events",
		},
		[]string{"type", "event"}, // event: "created" / "followed" / "rejected" / "abandoned"
	)

	AssistantRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dialog",
			Name:      "assistant_requests_total",
			Help:      "Parameter-rebuild requests to the language model assistant",
		},
		[]string{"model", "status"},
	)
)

var turnMetricsRegistered bool

// RegisterTurnMetrics registers Prometheus dialogue metrics. Must be called once from main.
func RegisterTurnMetrics() {
	if turnMetricsRegistered {
		return
	}
	prometheus.MustRegister(TurnsTotal)
	prometheus.MustRegister(SuggestionsTotal)
	prometheus.MustRegister(AssistantRequestsTotal)
	turnMetricsRegistered = true
}
