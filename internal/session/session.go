// Package session runs the fixed period game loop tying the clock, the input
// queue, the judgement engine and the tally to a render sink.
package session

import (
	"time"

	"git.lost.host/meutraa/trg/internal/game"
	"git.lost.host/meutraa/trg/internal/input"
	"git.lost.host/meutraa/trg/internal/judge"
	"git.lost.host/meutraa/trg/internal/log"
	"git.lost.host/meutraa/trg/internal/score"
)

// Clock is the song time source driven by the loop.
type Clock interface {
	Now() time.Duration
	Paused() bool
	Pause()
	Resume()
	Seek(t time.Duration) error
}

type Options struct {
	FramePeriod time.Duration
	// Scroll speed multiplier on top of the chart speed
	ScrollScale float64
	// How far ahead of now notes are reported in the frame
	Lookahead time.Duration
	// How long a judgement stays in the frame
	FeedbackTime time.Duration
	// Press every note at its exact time
	Autoplay bool
	Score    score.Options
}

func (o *Options) defaults() {
	if o.FramePeriod <= 0 {
		o.FramePeriod = time.Second / 120
	}
	if o.ScrollScale <= 0 {
		o.ScrollScale = 1
	}
	if o.Lookahead <= 0 {
		o.Lookahead = 4 * time.Second
	}
	if o.FeedbackTime <= 0 {
		o.FeedbackTime = 500 * time.Millisecond
	}
}

type feedback struct {
	text   string
	tier   int
	lane   int
	offset time.Duration
	at     time.Duration
}

type Session struct {
	chart  *game.Chart
	engine *judge.Engine
	tally  *score.Tally
	clock  Clock
	queue  *input.Queue
	sink   Sink
	log    *log.Logger
	opts   Options

	inputs   []game.Input // every judged press, for saving
	pending  []game.Input
	commands []input.Command
	last     feedback
	frame    Frame
	err      error
	quit     bool
	finished bool

	now   func() time.Time
	sleep func(time.Duration)
}

func New(chart *game.Chart, judgements game.Judgements, clock Clock, queue *input.Queue, sink Sink, opts Options, logger *log.Logger) *Session {
	opts.defaults()
	if logger == nil {
		logger = log.Discard()
	}
	s := &Session{
		chart:  chart,
		engine: judge.New(chart, judgements),
		tally:  score.NewTally(judgements, len(chart.Notes), opts.Score),
		clock:  clock,
		queue:  queue,
		sink:   sink,
		log:    logger,
		opts:   opts,
		last:   feedback{tier: -1},
		now:    time.Now,
		sleep:  time.Sleep,
	}
	s.frame.Title = chart.Title
	s.frame.Lanes = chart.Lanes
	return s
}

func (s *Session) Engine() *judge.Engine {
	return s.engine
}

func (s *Session) Tally() *score.Tally {
	return s.tally
}

// Inputs returns the presses judged so far, in the order they were judged.
func (s *Session) Inputs() []game.Input {
	return s.inputs
}

// Quit reports whether the player left before the end of the chart.
func (s *Session) Quit() bool {
	return s.quit
}

// Finished reports whether the chart was played to its end.
func (s *Session) Finished() bool {
	return s.finished
}

func (s *Session) apply(r judge.Result, now time.Duration) {
	s.tally.Apply(r)
	switch {
	case r.Ghost():
		s.log.Debugf("ghost press lane %d at %v", r.Lane, now)
	case r.Status == judge.Hit:
		s.last = feedback{
			text:   s.engine.Judgements().Name(r.Tier),
			tier:   r.Tier,
			lane:   r.Lane,
			offset: r.Offset,
			at:     now,
		}
	case r.Status == judge.Missed:
		s.last = feedback{text: game.MissName, tier: -1, lane: r.Lane, at: now}
	}
}

func (s *Session) applyAll(rs []judge.Result, now time.Duration) {
	for _, r := range rs {
		s.apply(r, now)
	}
}

// Tick advances the game by one frame and reports whether to keep going.
func (s *Session) Tick() bool {
	now := s.clock.Now()

	s.commands = s.queue.Commands(s.commands[:0])
	for _, c := range s.commands {
		switch c {
		case input.CommandQuit:
			s.log.Infof("quit at %v", now)
			s.quit = true
		case input.CommandPause:
			if s.clock.Paused() {
				s.clock.Resume()
			} else {
				s.clock.Pause()
			}
			now = s.clock.Now()
		}
	}
	if s.quit {
		return false
	}

	if s.clock.Paused() {
		// Presses made while paused were stamped against a frozen clock
		s.pending = s.queue.Drain(s.pending[:0])
		return s.draw(now)
	}

	s.pending = s.queue.Drain(s.pending[:0])
	for _, in := range s.pending {
		s.inputs = append(s.inputs, in)
		s.apply(s.engine.OnInput(in), now)
	}

	if s.opts.Autoplay {
		for _, n := range s.engine.Due(now) {
			in := game.Input{Lane: int(n.Lane), Time: n.Time}
			s.inputs = append(s.inputs, in)
			s.apply(s.engine.OnInput(in), now)
		}
	}

	s.applyAll(s.engine.ExpireDue(now), now)

	end := s.chart.End
	if now > end+s.engine.Judgements().Widest() && s.engine.Pending() > 0 {
		// Notes placed after an end marker can never be reached
		s.applyAll(s.engine.Flush(now), now)
	}
	if (now >= end && s.engine.Pending() == 0) || len(s.chart.Notes) == 0 {
		s.finished = true
		s.draw(now)
		return false
	}

	return s.draw(now)
}

func (s *Session) draw(now time.Duration) bool {
	s.buildFrame(now)
	if err := s.sink.Draw(&s.frame); nil != err {
		s.err = err
		return false
	}
	return true
}

func (s *Session) rows(d time.Duration) float64 {
	return d.Seconds() * s.chart.Speed * s.opts.ScrollScale
}

func (s *Session) buildFrame(now time.Duration) {
	f := &s.frame
	f.Time = now
	f.Paused = s.clock.Paused()
	f.Score = s.tally.Score()
	f.Combo = s.tally.Combo()
	f.MaxCombo = s.tally.MaxCombo()
	f.Accuracy = s.tally.Accuracy()
	f.Counts = s.tally.Counts()
	f.Ghosts = s.tally.Ghosts()
	if f.Names == nil {
		f.Names = s.tally.Names()
	}
	f.Dropped = s.queue.Dropped()

	f.Notes = f.Notes[:0]
	s.engine.Visible(now-s.engine.Judgements().Widest(), now+s.opts.Lookahead, func(n *game.Note, st judge.State) {
		v := NoteView{
			ID:     n.ID,
			Lane:   int(n.Lane),
			Kind:   n.Kind,
			Status: st.Status,
			Tier:   st.Tier,
			Rows:   s.rows(n.Time - now),
		}
		if n.Kind == game.KindHold {
			v.TailRows = s.rows(n.TimeEnd - now)
		}
		f.Notes = append(f.Notes, v)
	})

	f.Judgement = Feedback{Tier: -1}
	if age := now - s.last.at; s.last.text != "" && age < s.opts.FeedbackTime {
		f.Judgement = Feedback{
			Text:   s.last.text,
			Tier:   s.last.tier,
			Lane:   s.last.lane,
			Offset: s.last.offset,
			Age:    age,
		}
	}

	f.Texts = f.Texts[:0]
	for _, t := range s.chart.Texts {
		if t.Time <= now && now < t.Time+t.Duration {
			f.Texts = append(f.Texts, t.Text)
		}
	}

	f.Progress = 1
	if s.chart.End > 0 {
		f.Progress = float64(now) / float64(s.chart.End)
		if f.Progress < 0 {
			f.Progress = 0
		} else if f.Progress > 1 {
			f.Progress = 1
		}
	}
}

// Seek jumps the song to t. Notes passed over are missed.
func (s *Session) Seek(t time.Duration) error {
	if err := s.clock.Seek(t); nil != err {
		return err
	}
	s.pending = s.queue.Drain(s.pending[:0])
	s.applyAll(s.engine.Seek(t), t)
	return nil
}

// Run ticks every frame period until the chart ends, the player quits or
// the sink fails. A slow frame is not caught up.
func (s *Session) Run() (score.Summary, error) {
	s.clock.Resume()
	for {
		start := s.now()
		deadline := start.Add(s.opts.FramePeriod)

		cont := s.Tick()

		elapsed := s.now().Sub(start)
		s.frame.RenderTime = elapsed
		if !cont {
			break
		}
		if remaining := deadline.Sub(s.now()); remaining > 0 {
			s.sleep(remaining)
		} else {
			s.log.Debugf("frame overran by %v", -remaining)
		}
	}
	return s.Summary(), s.err
}

func (s *Session) Summary() score.Summary {
	summary := s.tally.Summary()
	summary.Title = s.chart.Title
	return summary
}
