package httpserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	roundsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "riddler_rounds_started_total",
		Help: "Total number of rounds started, including resets.",
	})

	roundsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riddler_rounds_finished_total",
			Help: "Total number of rounds that ended, by outcome.",
		},
		[]string{"status"},
	)

	guessesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riddler_guesses_total",
			Help: "Total number of keystrokes submitted, by effect.",
		},
		[]string{"kind"},
	)
)
