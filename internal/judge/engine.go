// Package judge matches lane presses to chart notes.
//
// The chart is never modified: each note's status lives in a parallel slice
// indexed by note id, so an engine can be reset and a chart replayed.
package judge

import (
	"sort"
	"time"

	"git.lost.host/meutraa/trg/internal/game"
)

type Status uint8

const (
	Pending Status = iota
	Hit
	Missed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Hit:
		return "hit"
	case Missed:
		return "missed"
	}
	return "unknown"
}

// State is the runtime state of one note.
type State struct {
	Status  Status
	Tier    int           // Judgement index when hit, -1 otherwise
	HitTime time.Duration // Press time when hit, expiry time when missed
	Offset  time.Duration // Note time minus press time, positive is early
}

// Result describes what happened to a press or a note.
type Result struct {
	Note   *game.Note // nil for ghost presses
	Lane   int
	Status Status
	Tier   int
	Offset time.Duration
}

// Ghost is true for a press that matched nothing.
func (r Result) Ghost() bool {
	return r.Note == nil
}

type Engine struct {
	chart      *game.Chart
	judgements game.Judgements
	widest     time.Duration

	states []State
	lanes  [][]int // note ids per lane, in time order
	first  []int   // per lane, index into lanes of the first unresolved note
	open   int     // number of pending notes
}

// New creates an engine with every note pending. judgements must be valid.
func New(chart *game.Chart, judgements game.Judgements) *Engine {
	e := &Engine{
		chart:      chart,
		judgements: judgements,
		widest:     judgements.Widest(),
		states:     make([]State, len(chart.Notes)),
		lanes:      make([][]int, chart.Lanes),
		first:      make([]int, chart.Lanes),
	}
	for i := range chart.Notes {
		n := &chart.Notes[i]
		e.lanes[n.Lane] = append(e.lanes[n.Lane], i)
	}
	e.Reset()
	return e
}

// Reset returns every note to pending.
func (e *Engine) Reset() {
	for i := range e.states {
		e.states[i] = State{Status: Pending, Tier: -1}
	}
	for i := range e.first {
		e.first[i] = 0
	}
	e.open = len(e.states)
}

func (e *Engine) Chart() *game.Chart {
	return e.chart
}

func (e *Engine) Judgements() game.Judgements {
	return e.judgements
}

func (e *Engine) State(id int) State {
	return e.states[id]
}

// Pending is the number of notes still waiting for a judgement.
func (e *Engine) Pending() int {
	return e.open
}

// Resolved is the number of notes hit or missed.
func (e *Engine) Resolved() int {
	return len(e.states) - e.open
}

// Distance is the signed error of a press against a note, positive when early.
func Distance(n *game.Note, at time.Duration) time.Duration {
	return n.Time - at
}

func abs(x time.Duration) time.Duration {
	if x < 0 {
		return -x
	}
	return x
}

// advance moves a lane's cursor past resolved notes.
func (e *Engine) advance(lane int) {
	ids := e.lanes[lane]
	for e.first[lane] < len(ids) && e.states[ids[e.first[lane]]].Status != Pending {
		e.first[lane]++
	}
}

// OnInput judges a press against the closest pending note of its lane.
func (e *Engine) OnInput(in game.Input) Result {
	ghost := Result{Lane: in.Lane, Tier: -1}
	if in.Lane < 0 || in.Lane >= len(e.lanes) {
		return ghost
	}

	var closest *game.Note
	best := e.widest + 1
	ids := e.lanes[in.Lane]
	for _, id := range ids[e.first[in.Lane]:] {
		if e.states[id].Status != Pending {
			continue
		}
		note := &e.chart.Notes[id]
		if note.Time-in.Time > e.widest {
			// Everything after this is out of reach
			break
		}
		// Strictly closer only, so the earlier note wins a tie
		if d := abs(Distance(note, in.Time)); d < best {
			best = d
			closest = note
		}
	}
	if closest == nil {
		return ghost
	}

	tier, _ := e.judgements.Judge(best)
	offset := Distance(closest, in.Time)
	e.states[closest.ID] = State{
		Status:  Hit,
		Tier:    tier,
		HitTime: in.Time,
		Offset:  offset,
	}
	e.open--
	e.advance(in.Lane)

	return Result{
		Note:   closest,
		Lane:   in.Lane,
		Status: Hit,
		Tier:   tier,
		Offset: offset,
	}
}

func (e *Engine) miss(id int, at time.Duration) Result {
	note := &e.chart.Notes[id]
	e.states[id] = State{
		Status:  Missed,
		Tier:    -1,
		HitTime: at,
		Offset:  Distance(note, at),
	}
	e.open--
	return Result{
		Note:   note,
		Lane:   int(note.Lane),
		Status: Missed,
		Tier:   -1,
		Offset: Distance(note, at),
	}
}

// expire misses pending notes, scanning each lane from its cursor while
// before(note) holds. Results are in chart order.
func (e *Engine) expire(at time.Duration, before func(n *game.Note) bool) []Result {
	var missed []Result
	for lane, ids := range e.lanes {
		for _, id := range ids[e.first[lane]:] {
			note := &e.chart.Notes[id]
			if !before(note) {
				break
			}
			if e.states[id].Status == Pending {
				missed = append(missed, e.miss(id, at))
			}
		}
		e.advance(lane)
	}
	if len(missed) > 1 {
		sortResults(missed)
	}
	return missed
}

// ExpireDue misses pending notes that can no longer be hit at now.
func (e *Engine) ExpireDue(now time.Duration) []Result {
	return e.expire(now, func(n *game.Note) bool {
		return n.Time+e.widest < now
	})
}

// Seek misses pending notes before t. Seeking backwards changes nothing.
func (e *Engine) Seek(t time.Duration) []Result {
	return e.expire(t, func(n *game.Note) bool {
		return n.Time < t
	})
}

// Flush misses everything still pending.
func (e *Engine) Flush(at time.Duration) []Result {
	return e.expire(at, func(n *game.Note) bool {
		return true
	})
}

// Due returns the pending notes with a target time at or before now,
// oldest first.
func (e *Engine) Due(now time.Duration) []*game.Note {
	var due []*game.Note
	for lane, ids := range e.lanes {
		for _, id := range ids[e.first[lane]:] {
			note := &e.chart.Notes[id]
			if note.Time > now {
				break
			}
			if e.states[id].Status == Pending {
				due = append(due, note)
			}
		}
	}
	sortNotes(due)
	return due
}

// Visible calls fn for every note with a target time in [from, to],
// plus holds whose tail reaches into it.
func (e *Engine) Visible(from, to time.Duration, fn func(n *game.Note, s State)) {
	for lane, ids := range e.lanes {
		start := e.first[lane]
		// Recently resolved notes stay visible until they leave the window
		for start > 0 && e.chart.Notes[ids[start-1]].Last() >= from {
			start--
		}
		for _, id := range ids[start:] {
			note := &e.chart.Notes[id]
			if note.Time > to {
				break
			}
			if note.Last() < from {
				continue
			}
			fn(note, e.states[id])
		}
	}
}

func sortResults(rs []Result) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].Note.ID < rs[j].Note.ID })
}

func sortNotes(ns []*game.Note) {
	sort.Slice(ns, func(i, j int) bool { return ns[i].ID < ns[j].ID })
}
