package sailprop

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	cacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sailprop_trajectory_cache_hits_total",
		Help: "Total number of trajectory cache hits.",
	})
	cacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sailprop_trajectory_cache_misses_total",
		Help: "Total number of trajectory cache misses.",
	})
	cacheEvictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sailprop_trajectory_cache_evictions_total",
		Help: "Total number of trajectory cache evictions (LRU and TTL).",
	})
	predictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sailprop_predictions_computed_total",
		Help: "Total number of trajectory predictions actually computed.",
	})
	predictionSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sailprop_prediction_duration_seconds",
		Help:    "Wall time per computed trajectory prediction.",
		Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
	})
	soiTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sailprop_soi_transitions_total",
		Help: "Total number of confirmed SOI transitions.",
	}, []string{"direction"})
)

func init() {
	prometheus.MustRegister(cacheHitsTotal)
	prometheus.MustRegister(cacheMissesTotal)
	prometheus.MustRegister(cacheEvictionsTotal)
	prometheus.MustRegister(predictionsTotal)
	prometheus.MustRegister(predictionSeconds)
	prometheus.MustRegister(soiTransitionsTotal)
}
