package index

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	buildTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "charnnections_index_builds_total",
		Help: "Attribute index rebuilds by result",
	}, []string{"result"})

	buildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "charnnections_index_build_duration_seconds",
		Help:    "Attribute index rebuild duration in seconds, entity scan included",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	})

	uniquePairs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "charnnections_index_unique_pairs",
		Help: "Distinct attribute pairs in the current index",
	})

	eligiblePairs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "charnnections_index_eligible_pairs",
		Help: "Attribute pairs with enough holders to form a group",
	})
)
