package score

import (
	"time"

	"git.lost.host/meutraa/trg/internal/game"
)

type Scorer interface {
	Init(path string) error
	Deinit()

	// Save the inputs and result of this performance
	Save(chart *game.Chart, inputs []game.Input, rate float64, summary Summary) (string, error)

	// Load up previous performances for the chart
	Load(chart *game.Chart) ([]History, error)

	// Best returns the highest saved score for the chart
	Best(chart *game.Chart) (Summary, bool, error)
}

type History struct {
	ID     string
	Sum    string
	Inputs []game.Input
	Rate   float64
	Played time.Time
}
