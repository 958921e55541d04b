package score

import (
	"math"
	"time"

	"git.lost.host/meutraa/trg/internal/game"
	"git.lost.host/meutraa/trg/internal/judge"
)

// MaxScore is the score of a chart with every note in the best tier.
const MaxScore = 1000000

// ComboScale multiplies a hit's score given the combo before it.
type ComboScale func(combo int) float64

// FlatCombo ignores the combo.
func FlatCombo(int) float64 {
	return 1
}

type Options struct {
	// Ghost presses reset the combo
	GhostBreaksCombo bool
	ComboScale       ComboScale
}

// Tally is the scoring state machine. Combo is its only state variable;
// everything else is an accumulator.
type Tally struct {
	judgements game.Judgements
	total      int
	opts       Options

	score    int64
	combo    int
	maxCombo int
	counts   []int
	misses   int
	ghosts   int

	// Offset statistics over hits
	hits          int
	sumOfDistance time.Duration
	distanceError time.Duration
	sumOfSquares  float64
}

func NewTally(judgements game.Judgements, total int, opts Options) *Tally {
	if opts.ComboScale == nil {
		opts.ComboScale = FlatCombo
	}
	return &Tally{
		judgements: judgements,
		total:      total,
		opts:       opts,
		counts:     make([]int, len(judgements)),
	}
}

// Apply feeds a judge result into the tally.
func (t *Tally) Apply(r judge.Result) {
	switch {
	case r.Ghost():
		t.Ghost()
	case r.Status == judge.Hit:
		t.Hit(r.Tier, r.Offset)
	case r.Status == judge.Missed:
		t.Miss()
	}
}

func (t *Tally) Hit(tier int, offset time.Duration) {
	if t.total > 0 {
		base := float64(MaxScore) / float64(t.total)
		gain := int64(math.Ceil(base * t.judgements[tier].Weight * t.opts.ComboScale(t.combo)))
		t.score += gain
		if t.score > MaxScore {
			t.score = MaxScore
		}
	}
	t.counts[tier]++
	t.combo++
	if t.combo > t.maxCombo {
		t.maxCombo = t.combo
	}

	t.hits++
	t.sumOfDistance += offset
	t.distanceError += abs(offset)
	t.sumOfSquares += float64(offset) * float64(offset)
}

func (t *Tally) Miss() {
	t.combo = 0
	t.misses++
}

func (t *Tally) Ghost() {
	t.ghosts++
	if t.opts.GhostBreaksCombo {
		t.combo = 0
	}
}

func (t *Tally) Score() int64 {
	return t.score
}

func (t *Tally) Combo() int {
	return t.combo
}

func (t *Tally) MaxCombo() int {
	return t.maxCombo
}

func (t *Tally) Ghosts() int {
	return t.ghosts
}

// Names returns the tier names followed by the miss name, matching Counts.
func (t *Tally) Names() []string {
	names := make([]string, 0, len(t.judgements)+1)
	for _, j := range t.judgements {
		names = append(names, j.Name)
	}
	return append(names, game.MissName)
}

// Counts returns hits per tier followed by the miss count.
func (t *Tally) Counts() []int {
	out := make([]int, len(t.counts)+1)
	copy(out, t.counts)
	out[len(t.counts)] = t.misses
	return out
}

func (t *Tally) weighted() float64 {
	sum := 0.0
	for i, c := range t.counts {
		sum += float64(c) * t.judgements[i].Weight
	}
	return sum
}

// Accuracy over the notes judged so far, 1 before any.
func (t *Tally) Accuracy() float64 {
	judged := t.misses
	for _, c := range t.counts {
		judged += c
	}
	if judged == 0 {
		return 1
	}
	return t.weighted() / float64(judged)
}

func (t *Tally) mean() float64 {
	if t.hits == 0 {
		return 0
	}
	return float64(t.sumOfDistance) / float64(t.hits)
}

// Sample standard deviation of the hit offsets.
func (t *Tally) stdev() float64 {
	if t.hits < 2 {
		return 0
	}
	n := float64(t.hits)
	mean := t.mean()
	v := (t.sumOfSquares - n*mean*mean) / (n - 1)
	if v < 0 {
		return 0
	}
	return math.Sqrt(v)
}

// Summary is the end of session result.
type Summary struct {
	Title    string
	Score    int64
	MaxCombo int
	Total    int
	Names    []string // Tier names, then the miss name
	Counts   []int    // Per tier, then misses
	Misses   int
	Ghosts   int
	Accuracy float64 // 0 to 1 over every note of the chart

	Mean          time.Duration
	Stdev         time.Duration
	DistanceError time.Duration
}

func (t *Tally) Summary() Summary {
	accuracy := 1.0
	if t.total > 0 {
		accuracy = t.weighted() / float64(t.total)
	}
	return Summary{
		Score:         t.score,
		MaxCombo:      t.maxCombo,
		Total:         t.total,
		Names:         t.Names(),
		Counts:        t.Counts(),
		Misses:        t.misses,
		Ghosts:        t.ghosts,
		Accuracy:      accuracy,
		Mean:          time.Duration(t.mean()),
		Stdev:         time.Duration(t.stdev()),
		DistanceError: t.distanceError,
	}
}

func abs(x time.Duration) time.Duration {
	if x < 0 {
		return -x
	}
	return x
}
