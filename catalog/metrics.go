package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheRequests counts cached lookups.
	// Labels: cache (class_by_id, classes, supertypes, methods), result (hit, miss)
	cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jbind",
		Subsystem: "catalog",
		Name:      "cache_requests_total",
		Help:      "Catalog cache lookups by cache and result",
	}, []string{"cache", "result"})

	// classesLoaded counts classes read from class files by unit kind.
	// Labels: source (jar, class)
	classesLoaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jbind",
		Subsystem: "catalog",
		Name:      "classes_loaded_total",
		Help:      "Classes loaded into a catalog sink",
	}, []string{"source"})
)
