package game

import (
	"errors"
	"fmt"
	"time"
)

// Judgement is a named window around a note's target time.
type Judgement struct {
	Name   string
	Window time.Duration // Symmetric, inclusive
	Weight float64       // Share of a note's score, 1 for the best tier
}

// Judgements are ordered tightest first. Missing is not a tier of its own,
// it is everything outside the last window.
type Judgements []Judgement

const MissName = "Miss"

func DefaultJudgements() Judgements {
	return Judgements{
		{Name: "Perfect", Window: 80 * time.Millisecond, Weight: 1.0},
		{Name: "Good", Window: 160 * time.Millisecond, Weight: 0.65},
		{Name: "Bad", Window: 200 * time.Millisecond, Weight: 0.0},
	}
}

// Validate checks the tiers nest.
func (js Judgements) Validate() error {
	if len(js) == 0 {
		return errors.New("no judgement windows")
	}
	for i, j := range js {
		if j.Window <= 0 {
			return fmt.Errorf("judgement %q has window %v", j.Name, j.Window)
		}
		if i > 0 && j.Window <= js[i-1].Window {
			return fmt.Errorf("judgement %q (%v) does not contain %q (%v)", j.Name, j.Window, js[i-1].Name, js[i-1].Window)
		}
		if j.Weight < 0 || j.Weight > 1 {
			return fmt.Errorf("judgement %q has weight %v", j.Name, j.Weight)
		}
	}
	return nil
}

// Widest is the too-late boundary.
func (js Judgements) Widest() time.Duration {
	return js[len(js)-1].Window
}

// Judge returns the tightest tier containing the absolute offset d.
func (js Judgements) Judge(d time.Duration) (int, bool) {
	if d < 0 {
		d = -d
	}
	for i, j := range js {
		if d <= j.Window {
			return i, true
		}
	}
	return -1, false
}

// Name returns the tier name, or MissName for an out of range index.
func (js Judgements) Name(tier int) string {
	if tier < 0 || tier >= len(js) {
		return MissName
	}
	return js[tier].Name
}

// Scale multiplies every window, keeping each at least min.
func (js Judgements) Scale(factor float64, min time.Duration) Judgements {
	out := make(Judgements, len(js))
	for i, j := range js {
		w := time.Duration(float64(j.Window) * factor)
		if w < min {
			w = min
		}
		j.Window = w
		out[i] = j
	}
	return out
}
