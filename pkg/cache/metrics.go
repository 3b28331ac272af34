package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lookupHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "replycache",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of cache hits by lookup tier",
		},
		[]string{"tier"},
	)

	lookupMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "replycache",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of cache misses",
		},
	)

	lookupLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "replycache",
			Subsystem: "cache",
			Name:      "lookup_duration_seconds",
			Help:      "Lookup latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~0.4s
		},
		[]string{"result"},
	)

	evictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "replycache",
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Total number of entries removed by eviction",
		},
	)

	entriesGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "replycache",
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Current number of entries in the store",
		},
	)

	feedbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "replycache",
			Subsystem: "cache",
			Name:      "feedback_total",
			Help:      "Total feedback signals recorded against entries",
		},
		[]string{"feedback"},
	)
)
