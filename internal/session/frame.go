package session

import (
	"time"

	"git.lost.host/meutraa/trg/internal/game"
	"git.lost.host/meutraa/trg/internal/judge"
)

// NoteView is a note as the sink should draw it this frame.
type NoteView struct {
	ID     int
	Lane   int
	Kind   game.Kind
	Status judge.Status
	Tier   int
	// Rows above the judgement line, negative once passed
	Rows     float64
	TailRows float64 // holds only
}

// Feedback is the latest judgement shown to the player.
type Feedback struct {
	Text   string // empty when there is nothing to show
	Tier   int    // -1 for misses
	Lane   int
	Offset time.Duration
	Age    time.Duration
}

// Frame is a read-only snapshot handed to the render sink once per tick.
// Slices are reused between ticks, a sink must not keep them.
type Frame struct {
	Title    string
	Time     time.Duration
	Paused   bool
	Lanes    int
	Notes    []NoteView
	Score    int64
	Combo    int
	MaxCombo int
	Accuracy float64
	Names    []string // tier names then the miss name, matching Counts
	Counts   []int
	Ghosts   int

	Judgement Feedback
	Texts     []string
	Progress  float64 // 0 to 1 through the chart

	Dropped    int64         // inputs lost to a full queue
	RenderTime time.Duration // time the previous tick took
}

// Sink draws frames.
type Sink interface {
	Draw(f *Frame) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(f *Frame) error

func (fn SinkFunc) Draw(f *Frame) error {
	return fn(f)
}
