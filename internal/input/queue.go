package input

import (
	"sync/atomic"

	"git.lost.host/meutraa/trg/internal/game"
)

type Command uint8

const (
	CommandPause Command = iota // toggles pause
	CommandQuit
)

func (c Command) String() string {
	switch c {
	case CommandPause:
		return "pause"
	case CommandQuit:
		return "quit"
	}
	return "unknown"
}

// Queue buffers captured events until the game loop drains them at a tick.
// Pushing never blocks: a full queue drops the event.
type Queue struct {
	inputs   chan game.Input
	commands chan Command
	dropped  atomic.Int64
}

func NewQueue(size int) *Queue {
	if size < 1 {
		size = 1
	}
	return &Queue{
		inputs:   make(chan game.Input, size),
		commands: make(chan Command, 8),
	}
}

func (q *Queue) Push(in game.Input) bool {
	select {
	case q.inputs <- in:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

func (q *Queue) Command(c Command) bool {
	select {
	case q.commands <- c:
		return true
	default:
		return false
	}
}

// Drain appends every buffered input to buf, in capture order.
func (q *Queue) Drain(buf []game.Input) []game.Input {
	for {
		select {
		case in := <-q.inputs:
			buf = append(buf, in)
		default:
			return buf
		}
	}
}

// Commands appends every buffered command to buf.
func (q *Queue) Commands(buf []Command) []Command {
	for {
		select {
		case c := <-q.commands:
			buf = append(buf, c)
		default:
			return buf
		}
	}
}

// Dropped counts inputs lost to a full queue.
func (q *Queue) Dropped() int64 {
	return q.dropped.Load()
}
