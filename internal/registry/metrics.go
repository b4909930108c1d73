package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the position registry.
type Metrics struct {
	Searches    prometheus.Counter
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		Searches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mandate_position_searches_total",
			Help: "Total number of position searches served.",
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mandate_position_search_cache_hits_total",
			Help: "Position searches served from the Redis cache.",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mandate_position_search_cache_misses_total",
			Help: "Position searches that fell through to the store.",
		}),
	}
}

func (m *Metrics) recordSearch(hit bool) {
	if m == nil {
		return
	}
	m.Searches.Inc()
	if hit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
}
