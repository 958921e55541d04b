package score

import (
	"testing"
	"time"

	"git.lost.host/meutraa/trg/internal/game"
)

var compactTests = []struct {
	inputs  []game.Input
	compact []InputsCompact
}{
	{[]game.Input{}, []InputsCompact{}},
	{[]game.Input{{Lane: 0, Time: 100}}, []InputsCompact{
		{Lane: 0, Times: []time.Duration{100}},
	}},
	{[]game.Input{{Lane: 0, Time: 100}, {Lane: 3, Time: 200}}, []InputsCompact{
		{Lane: 0, Times: []time.Duration{100}},
		{Lane: 1, Times: []time.Duration{}},
		{Lane: 2, Times: []time.Duration{}},
		{Lane: 3, Times: []time.Duration{200}},
	}},
	{[]game.Input{{Lane: 1, Time: 2}, {Lane: 1, Time: 1}}, []InputsCompact{
		{Lane: 0, Times: []time.Duration{}},
		{Lane: 1, Times: []time.Duration{2, 1}},
	}},
}

func TestCompactInputs(t *testing.T) {
	equal := func(p, q []InputsCompact) bool {
		if len(p) != len(q) {
			return false
		}
		for i := 0; i < len(p); i++ {
			pi, qi := p[i], q[i]
			if pi.Lane != qi.Lane {
				return false
			}
			if len(pi.Times) != len(qi.Times) {
				return false
			}
			for j := 0; j < len(pi.Times); j++ {
				if pi.Times[j] != qi.Times[j] {
					return false
				}
			}
		}
		return true
	}

	for _, test := range compactTests {
		out := compactInputs(test.inputs)
		if !equal(out, test.compact) {
			t.Log("out     ", out)
			t.Log("expected", test.compact)
			t.Fail()
		}
	}
}

func TestUncompactInputs(t *testing.T) {
	equal := func(p, q []game.Input) bool {
		if len(p) != len(q) {
			return false
		}
		for i := 0; i < len(p); i++ {
			if p[i] != q[i] {
				return false
			}
		}
		return true
	}

	for _, test := range compactTests {
		out := uncompactInputs(test.compact)
		if !equal(out, test.inputs) {
			t.Log("in      ", test.compact)
			t.Log("expected", test.inputs)
			t.Fail()
		}
	}
}

func TestSummaryDocument(t *testing.T) {
	in := Summary{
		Title:    "Song",
		Score:    123456,
		MaxCombo: 42,
		Total:    50,
		Names:    []string{"Perfect", "Good", "Bad", "Miss"},
		Counts:   []int{40, 5, 2, 3},
		Misses:   3,
		Ghosts:   7,
		Accuracy: 0.865,
		Mean:     -4 * time.Millisecond,
		Stdev:    12500 * time.Microsecond,
	}
	doc, err := summaryDocument(in)
	if nil != err {
		t.Fatal(err)
	}
	out := parseSummary(string(doc))
	if out.Title != in.Title || out.Score != in.Score || out.MaxCombo != in.MaxCombo || out.Total != in.Total ||
		out.Misses != in.Misses || out.Ghosts != in.Ghosts || out.Accuracy != in.Accuracy ||
		out.Mean != in.Mean || out.Stdev != in.Stdev {
		t.Log("out     ", out)
		t.Log("expected", in)
		t.Fail()
	}
	if len(out.Names) != 4 || out.Names[3] != "Miss" || out.Counts[0] != 40 || out.Counts[3] != 3 {
		t.Fatalf("unexpected tiers %v %v", out.Names, out.Counts)
	}
}
