package game

import (
	"fmt"
	"strings"
	"time"
)

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Normal Difficulty = "normal"
	Hard   Difficulty = "hard"
	Expert Difficulty = "expert"
	Master Difficulty = "master"
)

// MinWindow is the floor for scaled judgement windows.
const MinWindow = 10 * time.Millisecond

// Harder difficulties narrow every window
var DifficultyFactor = map[Difficulty]float64{
	Easy:   1.3,
	Normal: 1.0,
	Hard:   0.8,
	Expert: 0.6,
	Master: 0.5,
}

func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := DifficultyFactor[d]; !ok {
		return Normal, fmt.Errorf("unknown difficulty %q", s)
	}
	return d, nil
}

// Apply scales js for this difficulty.
func (d Difficulty) Apply(js Judgements) Judgements {
	factor, ok := DifficultyFactor[d]
	if !ok {
		factor = 1.0
	}
	return js.Scale(factor, MinWindow)
}
