package resolve

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// resolutions counts resolved call sites.
	// Labels: kind (method, constructor, field, method_reference), outcome (exact, approximate, unresolved)
	resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jbind",
		Subsystem: "resolve",
		Name:      "resolutions_total",
		Help:      "Call sites resolved by kind and outcome",
	}, []string{"kind", "outcome"})

	// candidatesScored observes how many applicable candidates a call site had.
	candidatesScored = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "jbind",
		Subsystem: "resolve",
		Name:      "candidates",
		Help:      "Applicable candidates per resolved call site",
		Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
	})

	// cacheLookups counts resolution cache lookups.
	// Labels: result (hit, miss)
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jbind",
		Subsystem: "resolve",
		Name:      "cache_lookups_total",
		Help:      "Resolution cache lookups by result",
	}, []string{"result"})
)
