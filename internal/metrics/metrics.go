// Package metrics exposes Prometheus collectors for the assistant pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ticket sources.
const (
	SourceChat = "chat"
	SourceForm = "form"
)

// Ticket outcomes.
const (
	OutcomeCreated = "created"
	OutcomeFailed  = "failed"
	OutcomeReused  = "reused"
)

var (
	intentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assistant",
		Name:      "intents_total",
		Help:      "Messages classified, by intent kind.",
	}, []string{"intent"})

	outOfScopeTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "assistant",
		Name:      "out_of_scope_total",
		Help:      "Messages redirected by the scope guard.",
	})

	ticketsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assistant",
		Name:      "tickets_total",
		Help:      "Ticket creation attempts, by source and outcome.",
	}, []string{"source", "outcome"})

	turnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "assistant",
		Name:      "turn_duration_seconds",
		Help:      "Time to produce an assistant reply.",
		Buckets:   prometheus.DefBuckets,
	})
)

// ObserveIntent counts one classified message.
func ObserveIntent(intent string) {
	intentsTotal.WithLabelValues(intent).Inc()
}

// ObserveOutOfScope counts one scope-guard redirect.
func ObserveOutOfScope() {
	outOfScopeTotal.Inc()
}

// ObserveTicket counts one ticket attempt.
func ObserveTicket(source, outcome string) {
	ticketsTotal.WithLabelValues(source, outcome).Inc()
}

// ObserveTurn records how long a turn took.
func ObserveTurn(seconds float64) {
	turnDuration.Observe(seconds)
}
