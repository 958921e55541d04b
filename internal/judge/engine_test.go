package judge

import (
	"testing"
	"time"

	"git.lost.host/meutraa/trg/internal/game"
	"git.lost.host/meutraa/trg/internal/testdata"
)

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

// Perfect ±20ms, Great ±50ms
var windows = game.Judgements{
	{Name: "Perfect", Window: ms(20), Weight: 1},
	{Name: "Great", Window: ms(50), Weight: 0.5},
}

func chart(t *testing.T, notes ...game.RawNote) *game.Chart {
	c, err := game.Load(&game.RawChart{Title: "t", Lanes: 4, Speed: 5, Notes: notes}, game.LoadOptions{})
	if nil != err {
		t.Fatal(err)
	}
	return c
}

func scenario(t *testing.T) *Engine {
	return New(chart(t,
		game.RawNote{Lane: 0, Time: ms(1000)},
		game.RawNote{Lane: 0, Time: ms(1005)},
		game.RawNote{Lane: 0, Time: ms(2000)},
	), windows)
}

// 1003ms is 2ms from the 1005ms note and 3ms from the 1000ms note, so
// distance picks 1005 even though 1000 comes first.
func TestPressAt1003MatchesNearestNote(t *testing.T) {
	e := scenario(t)
	r := e.OnInput(game.Input{Lane: 0, Time: ms(1003)})
	if r.Ghost() || r.Note.Time != ms(1005) || r.Tier != 0 {
		t.Fatalf("expected perfect on the 1005ms note, got %+v", r)
	}

	e = scenario(t)
	r = e.OnInput(game.Input{Lane: 0, Time: ms(1002)})
	if r.Ghost() || r.Note.Time != ms(1000) || r.Tier != 0 {
		t.Fatalf("expected perfect on the 1000ms note, got %+v", r)
	}
}

func TestEarlierNoteWinsTie(t *testing.T) {
	e := scenario(t)
	r := e.OnInput(game.Input{Lane: 0, Time: 1002500 * time.Microsecond})
	if r.Ghost() || r.Note.Time != ms(1000) {
		t.Fatalf("expected the 1000ms note on a tie, got %+v", r)
	}
	r = e.OnInput(game.Input{Lane: 0, Time: ms(1001)})
	if r.Ghost() || r.Note.Time != ms(1005) {
		t.Fatalf("expected the 1005ms note second, got %+v", r)
	}
}

func TestFirstPressTakesTheNote(t *testing.T) {
	e := New(chart(t, game.RawNote{Lane: 2, Time: ms(500)}), windows)
	first := e.OnInput(game.Input{Lane: 2, Time: ms(480)})
	second := e.OnInput(game.Input{Lane: 2, Time: ms(500)})
	if first.Ghost() || first.Tier != 0 {
		t.Fatalf("expected first press to hit, got %+v", first)
	}
	if !second.Ghost() {
		t.Fatalf("expected second press to be a ghost, got %+v", second)
	}
	if e.Pending() != 0 {
		t.Fatalf("expected nothing pending, got %d", e.Pending())
	}
}

var tierTests = map[time.Duration]int{
	ms(1000): 0,
	ms(980):  0,
	ms(1020): 0,
	ms(1021): 1,
	ms(951):  1,
	ms(1050): 1,
	ms(949):  -1,
	ms(1051): -1,
}

func TestTiers(t *testing.T) {
	for at, tier := range tierTests {
		e := New(chart(t, game.RawNote{Lane: 1, Time: ms(1000)}), windows)
		r := e.OnInput(game.Input{Lane: 1, Time: at})
		if tier < 0 {
			if !r.Ghost() {
				t.Logf("%v: expected ghost, got %+v", at, r)
				t.Fail()
			}
			continue
		}
		if r.Ghost() || r.Tier != tier {
			t.Logf("%v: expected tier %d, got %+v", at, tier, r)
			t.Fail()
		}
		if r.Offset != ms(1000)-at {
			t.Logf("%v: unexpected offset %v", at, r.Offset)
			t.Fail()
		}
	}
}

func TestWrongLaneIsGhost(t *testing.T) {
	e := scenario(t)
	for _, lane := range []int{1, 3, -1, 7} {
		if r := e.OnInput(game.Input{Lane: lane, Time: ms(1000)}); !r.Ghost() {
			t.Fatalf("lane %d: expected ghost, got %+v", lane, r)
		}
	}
	if e.Pending() != 3 {
		t.Fatalf("ghost presses changed state, %d pending", e.Pending())
	}
}

func TestExpiry(t *testing.T) {
	e := scenario(t)
	if missed := e.ExpireDue(ms(1050)); len(missed) != 0 {
		t.Fatalf("expired inside the window: %+v", missed)
	}
	missed := e.ExpireDue(ms(1051))
	if len(missed) != 1 || missed[0].Note.Time != ms(1000) || missed[0].Status != Missed {
		t.Fatalf("expected the 1000ms note to expire, got %+v", missed)
	}
	if e.State(0).Status != Missed {
		t.Fatal("note state not updated")
	}

	// Still within reach of the 1005ms note only
	r := e.OnInput(game.Input{Lane: 0, Time: ms(1051)})
	if r.Ghost() || r.Note.Time != ms(1005) || r.Tier != 1 {
		t.Fatalf("expected great on the 1005ms note, got %+v", r)
	}

	// Missed notes never come back
	if r := e.OnInput(game.Input{Lane: 0, Time: ms(1000)}); !r.Ghost() {
		t.Fatalf("expected ghost against a missed note, got %+v", r)
	}
	if e.State(0).Status != Missed {
		t.Fatal("missed note changed status")
	}
	if missed := e.ExpireDue(ms(1500)); len(missed) != 0 {
		t.Fatalf("resolved notes expired twice: %+v", missed)
	}
}

func TestOutOfOrderHitDoesNotBlockExpiry(t *testing.T) {
	e := New(chart(t,
		game.RawNote{Lane: 0, Time: ms(1000)},
		game.RawNote{Lane: 0, Time: ms(1060)},
	), windows)
	r := e.OnInput(game.Input{Lane: 0, Time: ms(1045)})
	if r.Ghost() || r.Note.Time != ms(1060) {
		t.Fatalf("expected the 1060ms note, got %+v", r)
	}
	missed := e.ExpireDue(ms(1100))
	if len(missed) != 1 || missed[0].Note.Time != ms(1000) {
		t.Fatalf("expected the 1000ms note to expire, got %+v", missed)
	}
	if e.Pending() != 0 {
		t.Fatalf("expected nothing pending, got %d", e.Pending())
	}
}

func TestSeekAndFlush(t *testing.T) {
	e := scenario(t)
	missed := e.Seek(ms(1002))
	if len(missed) != 1 || missed[0].Note.Time != ms(1000) {
		t.Fatalf("expected seek to invalidate the 1000ms note, got %+v", missed)
	}
	if missed := e.Seek(0); len(missed) != 0 {
		t.Fatalf("backwards seek changed notes: %+v", missed)
	}
	if e.State(0).Status != Missed {
		t.Fatal("backwards seek revived a note")
	}

	missed = e.Flush(ms(1500))
	if len(missed) != 2 || missed[0].Note.ID != 1 || missed[1].Note.ID != 2 {
		t.Fatalf("expected flush to miss the rest in order, got %+v", missed)
	}
	if e.Pending() != 0 {
		t.Fatal("flush left notes pending")
	}

	e.Reset()
	if e.Pending() != 3 || e.State(0).Status != Pending {
		t.Fatal("reset did not restore pending notes")
	}
}

func TestDueAndVisible(t *testing.T) {
	c, err := testdata.GetChart()
	if nil != err {
		t.Fatal(err)
	}
	e := New(c, game.DefaultJudgements())
	due := e.Due(ms(2000))
	if len(due) != 6 {
		t.Fatalf("expected 6 due notes, got %d", len(due))
	}
	for i := 1; i < len(due); i++ {
		if due[i].ID <= due[i-1].ID {
			t.Fatal("due notes out of order")
		}
	}

	for _, n := range due {
		e.OnInput(game.Input{Lane: int(n.Lane), Time: n.Time})
	}
	seen := map[int]Status{}
	e.Visible(ms(1900), ms(3100), func(n *game.Note, s State) {
		seen[n.ID] = s.Status
	})
	// 2000 x2, 2250, 2500, 2750, 3000 hold
	if len(seen) != 6 {
		t.Fatalf("expected 6 visible notes, got %v", seen)
	}
	if seen[4] != Hit || seen[9] != Pending {
		t.Fatalf("unexpected visible states %v", seen)
	}

	// The hold started at 3000ms and ends at 4000ms
	holds := 0
	e.Visible(ms(3600), ms(3700), func(n *game.Note, s State) {
		if n.Kind == game.KindHold {
			holds++
		}
	})
	if holds != 1 {
		t.Fatal("expected the hold body to stay visible")
	}
}

func TestAllPerfect(t *testing.T) {
	c, err := testdata.GetChart()
	if nil != err {
		t.Fatal(err)
	}
	e := New(c, game.DefaultJudgements())
	for _, n := range c.Notes {
		r := e.OnInput(game.Input{Lane: int(n.Lane), Time: n.Time})
		if r.Ghost() || r.Tier != 0 || r.Note.ID != n.ID {
			t.Fatalf("note %d: expected perfect, got %+v", n.ID, r)
		}
	}
	if missed := e.ExpireDue(c.End + time.Second); len(missed) != 0 {
		t.Fatalf("unexpected misses %+v", missed)
	}
}
