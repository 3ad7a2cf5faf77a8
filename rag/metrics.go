package rag

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bakai",
		Subsystem: "retrieval",
		Name:      "resolutions_total",
		Help:      "Resolved queries by search type",
	}, []string{"search_type"})

	stageHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bakai",
		Subsystem: "retrieval",
		Name:      "stage_hits_total",
		Help:      "Fallback stages that produced at least one candidate",
	}, []string{"stage"})

	neighborFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bakai",
		Subsystem: "retrieval",
		Name:      "neighbor_failures_total",
		Help:      "Neighbor searches that failed or timed out",
	})

	resolveLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bakai",
		Subsystem: "retrieval",
		Name:      "resolve_seconds",
		Help:      "Query resolution latency",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	indexedEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "bakai",
		Subsystem: "retrieval",
		Name:      "indexed_entries",
		Help:      "Knowledge entries in the published index",
	})

	indexedFaqs = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "bakai",
		Subsystem: "retrieval",
		Name:      "indexed_faqs",
		Help:      "FAQ records in the published index",
	})
)
