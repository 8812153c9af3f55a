package dynquery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dynquery_cycles_total",
		Help: "Number of query cycles started",
	})

	invalidCyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dynquery_invalid_cycles_total",
		Help: "Number of query cycles that failed to find a finite driver",
	})

	candidatesVisitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dynquery_candidates_visited_total",
		Help: "Number of candidate entities tested while iterating",
	})

	entitiesMatchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dynquery_entities_matched_total",
		Help: "Number of entities yielded while iterating",
	})

	driverEntities = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dynquery_driver_entities",
		Help:    "Size of the candidate buffer driving a cycle",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})
)
