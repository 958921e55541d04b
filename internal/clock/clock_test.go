package clock

import (
	"testing"
	"time"
)

type fakePlayback struct {
	pos     time.Duration
	end     time.Duration // the song runs out here, zero for never
	playing bool
	started bool
	seeks   []time.Duration
	pauses  int
}

func (f *fakePlayback) Position() (time.Duration, bool) {
	if f.end > 0 && f.pos >= f.end {
		return 0, false
	}
	return f.pos, f.started
}

func (f *fakePlayback) Play() {
	f.started, f.playing = true, true
}

func (f *fakePlayback) Pause() {
	f.playing = false
	f.pauses++
}

func (f *fakePlayback) Resume() {
	f.playing = true
}

func (f *fakePlayback) Seek(pos time.Duration) error {
	f.seeks = append(f.seeks, pos)
	f.pos = pos
	return nil
}

type fakeTime struct {
	t time.Time
}

func (f *fakeTime) now() time.Time {
	return f.t
}

func (f *fakeTime) advance(d time.Duration) {
	f.t = f.t.Add(d)
}

func newFake() *fakeTime {
	return &fakeTime{t: time.Unix(1000, 0)}
}

func withFake(c *Clock, f *fakeTime) *Clock {
	c.now = f.now
	return c
}

func TestWallClock(t *testing.T) {
	ft := newFake()
	c := withFake(New(nil, Options{LeadIn: time.Second}, nil), ft)

	if !c.Paused() || c.Now() != -time.Second {
		t.Fatalf("expected paused clock at -1s, got %v", c.Now())
	}
	ft.advance(time.Hour)
	if c.Now() != -time.Second {
		t.Fatal("paused clock moved")
	}

	c.Resume()
	ft.advance(1500 * time.Millisecond)
	if now := c.Now(); now != 500*time.Millisecond {
		t.Fatalf("expected 500ms, got %v", now)
	}
}

func TestRateAndOffset(t *testing.T) {
	ft := newFake()
	c := withFake(New(nil, Options{Rate: 1.5, Offset: 20 * time.Millisecond}, nil), ft)
	c.Resume()
	ft.advance(time.Second)
	if now := c.Now(); now != 1520*time.Millisecond {
		t.Fatalf("expected 1520ms, got %v", now)
	}
}

func TestPauseFreezes(t *testing.T) {
	ft := newFake()
	c := withFake(New(nil, Options{}, nil), ft)
	c.Resume()
	ft.advance(time.Second)
	c.Pause()

	samples := []time.Duration{}
	for i := 0; i < 10; i++ {
		ft.advance(time.Second)
		samples = append(samples, c.Now())
	}
	for _, s := range samples {
		if s != time.Second {
			t.Fatalf("expected frozen 1s, got %v", samples)
		}
	}

	c.Resume()
	ft.advance(250 * time.Millisecond)
	if now := c.Now(); now != 1250*time.Millisecond {
		t.Fatalf("expected to continue from 1s, got %v", now)
	}
}

func TestPlaybackDrivesClock(t *testing.T) {
	ft := newFake()
	pb := &fakePlayback{}
	c := withFake(New(pb, Options{LeadIn: 100 * time.Millisecond, Offset: 10 * time.Millisecond}, nil), ft)
	c.Resume()

	ft.advance(50 * time.Millisecond)
	c.Now()
	if pb.started {
		t.Fatal("playback started during lead in")
	}

	ft.advance(60 * time.Millisecond)
	c.Now()
	if !pb.started {
		t.Fatal("playback did not start at zero")
	}

	pb.pos = 2 * time.Second
	if now := c.Now(); now != 2010*time.Millisecond {
		t.Fatalf("expected playback position plus offset, got %v", now)
	}

	// Audio devices may report a position behind the last one
	pb.pos = 1990 * time.Millisecond
	if now := c.Now(); now != 2010*time.Millisecond {
		t.Fatalf("expected clamped time, got %v", now)
	}
	pb.pos = 3 * time.Second
	if now := c.Now(); now != 3010*time.Millisecond {
		t.Fatalf("expected 3010ms, got %v", now)
	}

	c.Pause()
	if pb.playing || pb.pauses != 1 {
		t.Fatal("playback not paused")
	}
	pb.pos = 4 * time.Second
	if now := c.Now(); now != 3010*time.Millisecond {
		t.Fatalf("paused clock followed playback: %v", now)
	}
	c.Resume()
	if !pb.playing {
		t.Fatal("playback not resumed")
	}
}

func TestSeek(t *testing.T) {
	ft := newFake()
	pb := &fakePlayback{}
	c := withFake(New(pb, Options{Offset: 30 * time.Millisecond}, nil), ft)
	c.Resume()
	ft.advance(time.Second)
	c.Now()

	if err := c.Seek(10 * time.Millisecond); nil != err {
		t.Fatal(err)
	}
	if len(pb.seeks) != 1 || pb.seeks[0] != 0 {
		t.Fatalf("expected playback seek clamped to 0, got %v", pb.seeks)
	}
	if now := c.Now(); now != 30*time.Millisecond {
		t.Fatalf("expected position plus offset after seek, got %v", now)
	}

	if err := c.Seek(5 * time.Second); nil != err {
		t.Fatal(err)
	}
	if now := c.Now(); now != 5*time.Second {
		t.Fatalf("expected 5s, got %v", now)
	}
}

func TestPlaybackRunsOut(t *testing.T) {
	ft := newFake()
	pb := &fakePlayback{end: 150 * time.Millisecond}
	c := withFake(New(pb, Options{}, nil), ft)
	c.Resume()
	c.Now()
	if !pb.started {
		t.Fatal("playback did not start")
	}

	ft.advance(100 * time.Millisecond)
	pb.pos = 100 * time.Millisecond
	if now := c.Now(); now != 100*time.Millisecond {
		t.Fatalf("expected 100ms, got %v", now)
	}

	// The song is drained, time keeps going from the last reading
	ft.advance(50 * time.Millisecond)
	pb.pos = 150 * time.Millisecond
	if now := c.Now(); now != 150*time.Millisecond {
		t.Fatalf("expected 150ms, got %v", now)
	}
	ft.advance(time.Second)
	if now := c.Now(); now != 1150*time.Millisecond {
		t.Fatalf("expected the wall clock past the end of the song, got %v", now)
	}

	c.Pause()
	ft.advance(time.Hour)
	c.Resume()
	ft.advance(10 * time.Millisecond)
	if now := c.Now(); now != 1160*time.Millisecond {
		t.Fatalf("expected 1160ms after a pause, got %v", now)
	}

	// Seeking back into the song follows the playback again
	if err := c.Seek(50 * time.Millisecond); nil != err {
		t.Fatal(err)
	}
	ft.advance(time.Second)
	if now := c.Now(); now != 50*time.Millisecond {
		t.Fatalf("expected the playback position after seeking back, got %v", now)
	}
}
