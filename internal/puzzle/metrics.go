package puzzle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "charnnections_generation_attempts_total",
		Help: "Puzzle generation attempts by outcome",
	}, []string{"result"})

	exhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "charnnections_generation_exhausted_total",
		Help: "Generations that used the whole attempt budget without a puzzle",
	})

	createdTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "charnnections_puzzles_created_total",
		Help: "Daily puzzles persisted by source",
	}, []string{"source"})

	conflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "charnnections_puzzle_create_conflicts_total",
		Help: "Creations that lost the per-date race and re-read the winner",
	})

	guessesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "charnnections_guesses_total",
		Help: "Checked guesses by verdict",
	}, []string{"verdict"})
)
