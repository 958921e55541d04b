// Package clock owns song time.
//
// Song time follows the audio playback position when one is reported and
// falls back to scaled wall time otherwise. It never decreases except on Seek.
package clock

import (
	"sync"
	"time"

	"git.lost.host/meutraa/trg/internal/log"
)

// Playback is the audio service the clock follows.
type Playback interface {
	// Position is the playback position in song time, ok is false until
	// playing and again once the song has run out
	Position() (pos time.Duration, ok bool)
	Play()
	Pause()
	Resume()
	Seek(pos time.Duration) error
}

type Options struct {
	// Global offset added to every reading
	Offset time.Duration
	// Playback rate for the wall time fallback
	Rate float64
	// Song time starts at -LeadIn, playback starts at zero
	LeadIn time.Duration
}

type Clock struct {
	mu       sync.Mutex
	playback Playback
	log      *log.Logger
	now      func() time.Time

	offset time.Duration
	rate   float64

	paused    bool
	started   bool // playback started
	following bool // song time came from the playback last read
	ended     bool // playback ran out, wall time continues from there
	base      time.Duration
	resumedAt time.Time
	readAt    time.Time // wall time of the last playback reading
	last      time.Duration
}

// New returns a paused clock at Offset-LeadIn. playback may be nil.
func New(playback Playback, opts Options, logger *log.Logger) *Clock {
	if opts.Rate <= 0 {
		opts.Rate = 1
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Clock{
		playback: playback,
		log:      logger,
		now:      time.Now,
		offset:   opts.Offset,
		rate:     opts.Rate,
		paused:   true,
		base:     opts.Offset - opts.LeadIn,
		last:     opts.Offset - opts.LeadIn,
	}
}

func (c *Clock) wall() time.Duration {
	return c.base + time.Duration(float64(c.now().Sub(c.resumedAt))*c.rate)
}

// Now returns the current song time.
func (c *Clock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read()
}

func (c *Clock) read() time.Duration {
	if c.paused {
		return c.last
	}

	t := c.wall()
	if c.playback != nil {
		if !c.started && t-c.offset >= 0 {
			c.playback.Play()
			c.started = true
		}
		if c.started && !c.ended {
			if pos, ok := c.playback.Position(); ok {
				t = pos + c.offset
				c.following = true
				c.readAt = c.now()
			} else if c.following {
				c.ended = true
				c.base = c.last
				c.resumedAt = c.readAt
				t = c.wall()
				c.log.Infof("playback ended at %v, following the wall clock", c.last)
			}
		}
	}

	if t < c.last {
		if c.last-t > time.Millisecond {
			c.log.Warnf("clock went backwards by %v, holding %v", c.last-t, c.last)
		}
		return c.last
	}
	c.last = t
	return t
}

// Paused reports whether song time is frozen.
func (c *Clock) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Pause freezes song time at its current value.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return
	}
	c.read()
	c.paused = true
	if c.playback != nil && c.started {
		c.playback.Pause()
	}
	c.log.Infof("paused at %v", c.last)
}

// Resume continues from the frozen value.
func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		return
	}
	c.paused = false
	c.base = c.last
	c.resumedAt = c.now()
	c.readAt = c.resumedAt
	if c.playback != nil && c.started {
		c.playback.Resume()
	}
	c.log.Infof("resumed at %v", c.last)
}

// Seek jumps song time to t, forwards or backwards.
func (c *Clock) Seek(t time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playback != nil {
		pos := t - c.offset
		if pos < 0 {
			pos = 0
		}
		if err := c.playback.Seek(pos); nil != err {
			return err
		}
	}
	c.base = t
	c.resumedAt = c.now()
	c.last = t
	c.ended = false
	c.following = false
	c.log.Infof("seeked to %v", t)
	return nil
}
