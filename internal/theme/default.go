package theme

import (
	"fmt"

	"git.lost.host/meutraa/trg/internal/game"
)

type DefaultTheme struct {
}

func paint(c Color, s string) string {
	return fmt.Sprintf("\033[38;2;%v;%v;%vm%v\033[0m", c.R, c.G, c.B, s)
}

func (t *DefaultTheme) RenderNote(lane int, kind game.Kind) string {
	if kind == game.KindHold {
		return paint(getLaneColor(lane), holdSym)
	}
	return paint(getLaneColor(lane), noteSym)
}

func (t *DefaultTheme) RenderHoldBody(lane int) string {
	return paint(getLaneColor(lane), bodySym)
}

func (t *DefaultTheme) RenderMissed(lane int) string {
	return paint(missedColor, noteSym)
}

func (t *DefaultTheme) RenderHitField(lane int) string {
	return barSym
}

// RenderJudgement pads name to a fixed width so a shorter name overwrites a longer one.
func (t *DefaultTheme) RenderJudgement(tier int, name string) string {
	return fmt.Sprintf("\033[1m%v\033[0m", paint(t.JudgementColor(tier), fmt.Sprintf("%9v", name)))
}

func (t *DefaultTheme) JudgementColor(tier int) Color {
	if tier < 0 || tier >= len(judgementColors) {
		return missColor
	}
	return judgementColors[tier]
}

const (
	noteSym = "⬤"
	holdSym = "◆"
	bodySym = "┃"
	barSym  = "-"
)

var (
	laneColors = []Color{
		{236, 30, 0},    // red
		{0, 118, 236},   // blue
		{236, 195, 0},   // yellow
		{106, 0, 236},   // purple
		{236, 0, 106},   // pink
		{236, 128, 0},   // orange
		{173, 236, 236}, // light blue
		{0, 236, 128},   // green
	}
	judgementColors = []Color{
		{173, 236, 236}, // light blue
		{0, 236, 128},   // green
		{236, 195, 0},   // yellow
		{236, 128, 0},   // orange
	}
	missColor   = Color{236, 30, 0}
	missedColor = Color{106, 106, 106}
)

func getLaneColor(lane int) Color {
	if lane < 0 {
		return Color{255, 255, 255}
	}
	return laneColors[lane%len(laneColors)]
}
