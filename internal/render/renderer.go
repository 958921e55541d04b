package render

import (
	"git.lost.host/meutraa/trg/internal/session"
	"git.lost.host/meutraa/trg/internal/theme"
)

type Renderer interface {
	session.Sink
	Init() error
	Deinit() error
	AddDecoration(col, row int, content string, frames int)
	Fill(row, column int, message string)
	FillColor(row, column int, c theme.Color, message string)
}

var _ Renderer = &DefaultRenderer{}
