package translate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tierOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordquest_translation_tier_total",
			Help: "Translation tier attempts by outcome",
		},
		[]string{"tier", "outcome"},
	)

	tierDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wordquest_translation_tier_duration_seconds",
			Help:    "Duration of network translation tiers in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 4, 5},
		},
		[]string{"tier"},
	)
)

// Tier outcomes
const (
	outcomeHit     = "hit"
	outcomeMiss    = "miss"
	outcomeFailure = "failure"
	outcomeSkipped = "skipped"
)
