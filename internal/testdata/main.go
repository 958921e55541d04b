package testdata

import (
	"strings"

	"git.lost.host/meutraa/trg/internal/game"
	"git.lost.host/meutraa/trg/internal/parser"
)

// Sixteen taps across four lanes, one every 250ms from 1s, and a hold.
const data = `
name-Fixture
audio-fixture.ogg
speed-5
0:01
tab-1
0:01:250
tab-2
0:01:500
tab-3
0:01:750
tab-4
0:02
tab-1
tab-3
0:02:250
tab-2
0:02:500
tab-4
0:02:750
tab-1
0:03
hold-2-5
0:03:250
tab-3
0:03:500
tab-4
0:03:750
tab-1
0:04
tab-3
0:04:250
tab-4
0:04:500
tab-1
0:04:750
tab-3
`

func GetChart() (*game.Chart, error) {
	p := parser.DefaultParser{}
	raw, err := p.Read(strings.NewReader(data))
	if nil != err {
		return nil, err
	}
	return game.Load(raw, game.LoadOptions{Strict: true})
}
