package quest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var answersTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "wordquest_quest_answers_total",
		Help: "Quest answers by step and verdict",
	},
	[]string{"step", "result"},
)
