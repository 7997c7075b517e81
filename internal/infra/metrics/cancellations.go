package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		variantAssignmentsTotal,
		flowOutcomesTotal,
		securitySweepRemovedTotal,
	)
}

var (
	variantAssignmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "downsell_variant_assignments_total",
			Help: "First-contact variant assignments by variant.",
		},
		[]string{"variant"},
	)

	flowOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cancellation_outcomes_total",
			Help: "Completed flows by outcome (accepted_offer or cancelled).",
		},
		[]string{"outcome"},
	)

	securitySweepRemovedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "security_sweep_removed_total",
			Help: "Expired entries removed by the in-memory store sweepers.",
		},
		[]string{"store"},
	)
)

func IncVariantAssigned(variant string) {
	variantAssignmentsTotal.WithLabelValues(variant).Inc()
}

func IncFlowOutcome(acceptedDownsell bool) {
	outcome := "cancelled"
	if acceptedDownsell {
		outcome = "accepted_offer"
	}
	flowOutcomesTotal.WithLabelValues(outcome).Inc()
}

func AddSweepRemoved(store string, n int) {
	if n > 0 {
		securitySweepRemovedTotal.WithLabelValues(store).Add(float64(n))
	}
}
