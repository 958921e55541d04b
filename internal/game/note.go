package game

import (
	"time"
)

// Kind is the closed set of note variants.
type Kind uint8

const (
	KindTap Kind = iota
	KindHold
)

func (k Kind) String() string {
	switch k {
	case KindTap:
		return "tap"
	case KindHold:
		return "hold"
	}
	return "unknown"
}

type Note struct {
	ID      int           // Position in the sorted chart
	Lane    uint8         // The chart column
	Kind    Kind          // Tap or hold
	Time    time.Duration // The time the note should be hit
	TimeEnd time.Duration // The time a hold should be released, zero for taps
}

// Length is the hold duration, zero for taps.
func (n *Note) Length() time.Duration {
	switch n.Kind {
	case KindHold:
		return n.TimeEnd - n.Time
	case KindTap:
		return 0
	}
	return 0
}

// Last is the latest song time this note occupies.
func (n *Note) Last() time.Duration {
	if n.Kind == KindHold {
		return n.TimeEnd
	}
	return n.Time
}

// TextEvent is a caption shown from Time for Duration.
type TextEvent struct {
	Text     string
	Time     time.Duration
	Duration time.Duration
}

// Input is a single lane press, stamped with the song time at capture.
type Input struct {
	Lane int
	Time time.Duration
}
