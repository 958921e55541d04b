package game

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"sort"
	"time"
)

const (
	DefaultLanes = 4
	DefaultSpeed = 5.0 // rows per second
	DefaultGap   = time.Millisecond
	// Note.Lane is a uint8
	MaxLanes = 255
)

// RawNote is a note as read from a chart file, before validation.
type RawNote struct {
	Lane   int
	Kind   Kind
	Time   time.Duration
	Length time.Duration // holds only
	Line   int           // source line, 0 if the format has none
}

// RawChart is the unvalidated output of a parser.
type RawChart struct {
	Title  string
	Maker  string
	Audio  string
	Level  string
	Lanes  int
	Speed  float64
	Offset time.Duration
	End    time.Duration
	HasEnd bool
	Notes  []RawNote
	Texts  []TextEvent
}

type LoadOptions struct {
	// Reject out of order notes instead of sorting them
	Strict bool
	// Minimum distance between two notes of the same lane
	MinGap time.Duration
}

// Chart is immutable once returned by Load.
type Chart struct {
	Title string
	Maker string
	Audio string
	Level string
	Lanes int
	Speed float64
	End   time.Duration
	Notes []Note
	Texts []TextEvent

	NoteCount int64
	HoldCount int64

	hash string
}

// Hash identifies the playable content of the chart.
func (c *Chart) Hash() string {
	return c.hash
}

func (c *Chart) hashNotes() string {
	h := sha256.New()
	h.Write([]byte(c.Title))
	var buf [25]byte
	for _, n := range c.Notes {
		buf[0] = n.Lane
		binary.LittleEndian.PutUint64(buf[1:], uint64(n.Time))
		binary.LittleEndian.PutUint64(buf[9:], uint64(n.TimeEnd))
		binary.LittleEndian.PutUint64(buf[17:], uint64(n.Kind))
		h.Write(buf[:])
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func rawLess(a, b RawNote) bool {
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	return a.Lane < b.Lane
}

// Load validates a raw chart and builds the playable chart from it.
// The raw chart is not modified.
func Load(raw *RawChart, opts LoadOptions) (*Chart, error) {
	if opts.MinGap <= 0 {
		opts.MinGap = DefaultGap
	}
	if len(raw.Notes) == 0 {
		return nil, chartErr(ReasonEmpty, -1, 0, "no notes")
	}
	if raw.Lanes < 1 || raw.Lanes > MaxLanes {
		return nil, chartErr(ReasonMalformed, -1, 0, "lane count %d", raw.Lanes)
	}
	if raw.Speed <= 0 {
		return nil, chartErr(ReasonMalformed, -1, 0, "speed %v", raw.Speed)
	}

	notes := make([]RawNote, len(raw.Notes))
	copy(notes, raw.Notes)
	for i := range notes {
		n := &notes[i]
		if n.Lane < 0 || n.Lane >= raw.Lanes {
			return nil, chartErr(ReasonLaneRange, i, n.Line, "lane %d of %d", n.Lane+1, raw.Lanes)
		}
		n.Time += raw.Offset
		if n.Time < 0 {
			return nil, chartErr(ReasonNegativeTime, i, n.Line, "at %v", n.Time)
		}
		switch n.Kind {
		case KindTap:
			n.Length = 0
		case KindHold:
			if n.Length <= 0 {
				return nil, chartErr(ReasonMalformed, i, n.Line, "hold length %v", n.Length)
			}
		default:
			return nil, chartErr(ReasonMalformed, i, n.Line, "note kind %d", n.Kind)
		}
	}

	sorted := sort.SliceIsSorted(notes, func(i, j int) bool { return rawLess(notes[i], notes[j]) })
	if !sorted {
		if opts.Strict {
			for i := 1; i < len(notes); i++ {
				if rawLess(notes[i], notes[i-1]) {
					return nil, chartErr(ReasonNonMonotonic, i, notes[i].Line, "%v after %v", notes[i].Time, notes[i-1].Time)
				}
			}
		}
		sort.SliceStable(notes, func(i, j int) bool { return rawLess(notes[i], notes[j]) })
	}

	c := &Chart{
		Title: raw.Title,
		Maker: raw.Maker,
		Audio: raw.Audio,
		Level: raw.Level,
		Lanes: raw.Lanes,
		Speed: raw.Speed,
		Notes: make([]Note, len(notes)),
	}

	// The last note seen per lane, for collision checks
	last := make([]*Note, raw.Lanes)
	for i, rn := range notes {
		n := Note{
			ID:   i,
			Lane: uint8(rn.Lane),
			Kind: rn.Kind,
			Time: rn.Time,
		}
		if rn.Kind == KindHold {
			n.TimeEnd = rn.Time + rn.Length
			c.HoldCount++
		}
		if prev := last[rn.Lane]; prev != nil && n.Time-prev.Last() < opts.MinGap {
			return nil, chartErr(ReasonCollision, i, rn.Line, "lane %d at %v and %v", rn.Lane+1, prev.Time, n.Time)
		}
		c.Notes[i] = n
		last[rn.Lane] = &c.Notes[i]
		if n.Last() > c.End {
			c.End = n.Last()
		}
	}
	c.NoteCount = int64(len(c.Notes))

	if raw.HasEnd {
		c.End = raw.End + raw.Offset
		if c.End < 0 {
			c.End = 0
		}
	}

	c.Texts = make([]TextEvent, len(raw.Texts))
	for i, t := range raw.Texts {
		t.Time += raw.Offset
		c.Texts[i] = t
	}

	c.hash = c.hashNotes()
	return c, nil
}
