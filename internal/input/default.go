package input

import (
	"time"
	"unicode"

	"git.lost.host/meutraa/trg/internal/game"
	"git.lost.host/meutraa/trg/internal/log"
	"github.com/eiannone/keyboard"
)

// Clock stamps events with song time.
type Clock interface {
	Now() time.Duration
	Paused() bool
}

// Bindings is the resolved key table.
type Bindings struct {
	Lanes map[rune]int
	Pause rune
}

// NewBindings maps each rune of keys to its lane, in order.
func NewBindings(keys string, pause rune) Bindings {
	b := Bindings{Lanes: map[rune]int{}, Pause: unicode.ToLower(pause)}
	for i, r := range []rune(keys) {
		b.Lanes[unicode.ToLower(r)] = i
	}
	return b
}

// Lane returns the lane bound to r, or -1.
func (b Bindings) Lane(r rune) int {
	if lane, ok := b.Lanes[unicode.ToLower(r)]; ok {
		return lane
	}
	return -1
}

func (b Bindings) isPause(ev keyboard.KeyEvent) bool {
	if b.Pause == ' ' {
		return ev.Key == keyboard.KeySpace || ev.Rune == ' '
	}
	return ev.Rune != 0 && unicode.ToLower(ev.Rune) == b.Pause
}

// Capture reads key events until keys is closed, stamping lane presses with
// the clock at the moment they arrive. Run it on its own goroutine.
func Capture(keys <-chan keyboard.KeyEvent, bindings Bindings, clock Clock, q *Queue, logger *log.Logger) {
	for ev := range keys {
		if nil != ev.Err {
			logger.Errorf("unable to read keyboard: %v", ev.Err)
			continue
		}
		switch {
		case ev.Key == keyboard.KeyEsc || ev.Key == keyboard.KeyCtrlC:
			q.Command(CommandQuit)
			continue
		case bindings.isPause(ev):
			q.Command(CommandPause)
			continue
		}

		lane := bindings.Lane(ev.Rune)
		if lane < 0 {
			logger.Debugf("unbound key %q (%v)", ev.Rune, ev.Key)
			continue
		}
		// No judgements against a frozen clock
		if clock.Paused() {
			continue
		}
		in := game.Input{Lane: lane, Time: clock.Now()}
		if !q.Push(in) {
			logger.Warnf("input queue full, dropped lane %d at %v", in.Lane, in.Time)
		}
	}
}
