package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the claim manager.
type Metrics struct {
	ClaimsSubmitted prometheus.Counter
	ClaimConflicts  prometheus.Counter
	ClaimsResolved  *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		ClaimsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mandate_claims_submitted_total",
			Help: "Total number of office holder claims submitted.",
		}),
		ClaimConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mandate_claim_conflicts_total",
			Help: "Claim submissions rejected because the position was already actively claimed.",
		}),
		ClaimsResolved: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mandate_claims_resolved_total",
			Help: "Administrative claim resolutions by decision.",
		}, []string{"decision"}),
	}
}

func (m *Metrics) RecordSubmitted() {
	if m == nil {
		return
	}
	m.ClaimsSubmitted.Inc()
}

func (m *Metrics) RecordConflict() {
	if m == nil {
		return
	}
	m.ClaimConflicts.Inc()
}

func (m *Metrics) RecordResolved(decision string) {
	if m == nil {
		return
	}
	m.ClaimsResolved.WithLabelValues(decision).Inc()
}
