package theme

import "git.lost.host/meutraa/trg/internal/game"

// Color is a 24 bit terminal colour.
type Color struct {
	R, G, B uint8
}

type Theme interface {
	RenderNote(lane int, kind game.Kind) string
	RenderHoldBody(lane int) string
	RenderMissed(lane int) string
	RenderHitField(lane int) string
	RenderJudgement(tier int, name string) string
	JudgementColor(tier int) Color
}
