package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"git.lost.host/meutraa/trg/internal/game"
	"git.lost.host/meutraa/trg/internal/judge"
	"git.lost.host/meutraa/trg/internal/session"
	"git.lost.host/meutraa/trg/internal/theme"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

type Options struct {
	// Console rows between the bottom of the screen and the hit bar
	BarRow int
	// Console columns between two lanes
	Spacing int
}

type DefaultRenderer struct {
	Theme theme.Theme

	out          io.Writer
	fd           int
	opts         Options
	rows, cols   int
	buffer       strings.Builder
	restoreState *term.State
	decorations  []*decoration
	drawn        []cell // cells written last frame that need clearing
	missAt       time.Duration
	missed       bool
}

type cell struct {
	row, col, width int
}

type decoration struct {
	X, Y    int
	Content string
	Frames  int // remaining frames until removed
}

// New returns a renderer for a rows by cols screen written to out.
func New(out io.Writer, rows, cols int, th theme.Theme, opts Options) *DefaultRenderer {
	if opts.BarRow <= 0 {
		opts.BarRow = 8
	}
	if opts.Spacing <= 0 {
		opts.Spacing = 6
	}
	return &DefaultRenderer{
		Theme: th,
		out:   out,
		fd:    -1,
		opts:  opts,
		rows:  rows,
		cols:  cols,
	}
}

// NewTerminal sizes the renderer from the terminal behind fd.
func NewTerminal(out io.Writer, fd int, th theme.Theme, opts Options) (*DefaultRenderer, error) {
	cols, rows, err := term.GetSize(fd)
	if nil != err {
		return nil, errors.Wrap(err, "unable to get terminal size")
	}
	r := New(out, rows, cols, th, opts)
	r.fd = fd
	return r, nil
}

func (r *DefaultRenderer) Init() error {
	if r.fd >= 0 {
		state, err := term.MakeRaw(r.fd)
		if nil != err {
			return errors.Wrap(err, "unable to enter raw mode")
		}
		r.restoreState = state
	}

	_, err := fmt.Fprintf(r.out, "%s%s%s",
		"\033[?1049h", // Enable alternate buffer
		"\033[?25l",   // Make the cursor invisible
		"\033[J",      // Clear the screen
	)
	return err
}

func (r *DefaultRenderer) Deinit() error {
	fmt.Fprintf(r.out, "%s%s",
		"\033[?1049l", // Disable alternate buffer
		"\033[?25h",   // Make the cursor visible
	)
	if nil == r.restoreState {
		return nil
	}
	return term.Restore(r.fd, r.restoreState)
}

func (r *DefaultRenderer) AddDecoration(col, row int, content string, frames int) {
	r.decorations = append(r.decorations, &decoration{
		X:       col,
		Y:       row,
		Content: content,
		Frames:  frames,
	})
	r.Fill(row, col, content)
}

func (r *DefaultRenderer) tickDecorations() {
	nd := make([]*decoration, 0, len(r.decorations))
	for _, d := range r.decorations {
		if d.Frames == 0 {
			r.Fill(d.Y, d.X, " ")
			continue
		}
		nd = append(nd, d)
		d.Frames--
	}
	r.decorations = nd
}

func (r *DefaultRenderer) Fill(row, column int, message string) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.FormatInt(int64(row), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(column), 10))
	r.buffer.WriteString("H")
	r.buffer.WriteString(message)
}

func (r *DefaultRenderer) FillColor(row, column int, c theme.Color, message string) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.FormatInt(int64(row), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(column), 10))
	r.buffer.WriteString("H\033[38;2;")
	r.buffer.WriteString(strconv.FormatInt(int64(c.R), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(c.G), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(c.B), 10))
	r.buffer.WriteString("m")
	r.buffer.WriteString(message)
	r.buffer.WriteString("\033[0m")
}

func (r *DefaultRenderer) flush() error {
	_, err := io.WriteString(r.out, r.buffer.String())
	r.buffer.Reset()
	return err
}

// column returns the console column of a lane, lanes centred on the screen.
func (r *DefaultRenderer) column(lanes, lane int) int {
	mc := r.cols >> 1
	return mc + r.opts.Spacing*(2*lane-(lanes-1))/2
}

func (r *DefaultRenderer) barRow() int {
	return r.rows - r.opts.BarRow
}

func (r *DefaultRenderer) inField(row int) bool {
	return row > 1 && row <= r.rows
}

func (r *DefaultRenderer) plot(row, col, width int, content string) {
	r.Fill(row, col, content)
	r.drawn = append(r.drawn, cell{row, col, width})
}

// Draw renders one frame.
func (r *DefaultRenderer) Draw(f *session.Frame) error {
	// clear all existing renders
	for _, c := range r.drawn {
		r.Fill(c.row, c.col, strings.Repeat(" ", c.width))
	}
	r.drawn = r.drawn[:0]

	bar := r.barRow()
	cen := r.rows >> 1

	// Render the hit bar
	for i := 0; i < f.Lanes; i++ {
		r.Fill(bar, r.column(f.Lanes, i), r.Theme.RenderHitField(i))
	}

	// Render notes
	for _, n := range f.Notes {
		if n.Status == judge.Hit && n.Kind == game.KindTap {
			continue
		}
		col := r.column(f.Lanes, n.Lane)
		row := bar - int(math.Round(n.Rows))
		if n.Kind == game.KindHold {
			// Hold body from the tail down to the head
			tail := bar - int(math.Round(n.TailRows))
			for br := tail; br < row; br++ {
				if r.inField(br) && br != bar {
					r.plot(br, col, 1, r.Theme.RenderHoldBody(n.Lane))
				}
			}
		}
		if n.Status == judge.Hit || !r.inField(row) || row == bar {
			continue
		}
		if n.Status == judge.Missed {
			r.plot(row, col, 1, r.Theme.RenderMissed(n.Lane))
		} else {
			r.plot(row, col, 1, r.Theme.RenderNote(n.Lane, n.Kind))
		}
	}

	// Judgement feedback
	j := f.Judgement
	if j.Text != "" {
		r.Fill(cen, r.column(f.Lanes, 0)-2, r.Theme.RenderJudgement(j.Tier, j.Text))
		if j.Tier >= 0 {
			r.FillColor(cen+1, r.column(f.Lanes, 0)-2, r.Theme.JudgementColor(j.Tier), fmt.Sprintf("%+6dms", -j.Offset.Milliseconds()))
		} else {
			r.Fill(cen+1, r.column(f.Lanes, 0)-2, "        ")
			if at := f.Time - j.Age; !r.missed || at != r.missAt {
				r.missed, r.missAt = true, at
				col := r.column(f.Lanes, j.Lane)
				r.AddDecoration(col-1, cen-3, "\033[1;31m╭\033[0m", 240)
				r.AddDecoration(col+1, cen-3, "\033[1;31m╮\033[0m", 240)
				r.AddDecoration(col-1, cen-2, "\033[1;31m╰\033[0m", 240)
				r.AddDecoration(col+1, cen-2, "\033[1;31m╯\033[0m", 240)
			}
		}
	} else {
		r.Fill(cen, r.column(f.Lanes, 0)-2, strings.Repeat(" ", 9))
		r.Fill(cen+1, r.column(f.Lanes, 0)-2, strings.Repeat(" ", 8))
	}

	sideCol := r.column(f.Lanes, 0) - 36
	if sideCol < 2 {
		sideCol = 2
	}
	r.Fill(2, sideCol, fmt.Sprintf("%-30.30v", f.Title))
	r.Fill(4, sideCol, fmt.Sprintf("      Score:  %7v", f.Score))
	r.Fill(5, sideCol, fmt.Sprintf("      Combo:  %7v", f.Combo))
	r.Fill(6, sideCol, fmt.Sprintf("  Max Combo:  %7v", f.MaxCombo))
	r.Fill(7, sideCol, fmt.Sprintf("   Accuracy:  %6.2f%%", 100*f.Accuracy))
	r.Fill(8, sideCol, fmt.Sprintf("     Ghosts:  %7v", f.Ghosts))
	r.Fill(9, sideCol, fmt.Sprintf("Render Time:  %5.0f µs", float64(f.RenderTime.Microseconds())))
	for i, name := range f.Names {
		if i < len(f.Counts) {
			r.Fill(11+i, sideCol, fmt.Sprintf("%11v:  %7v", name, f.Counts[i]))
		}
	}

	// Progress along the top row
	width := r.cols - 2
	if width > 0 {
		done := int(f.Progress * float64(width))
		r.Fill(1, 2, strings.Repeat("━", done)+strings.Repeat(" ", width-done))
	}

	for i, text := range f.Texts {
		r.plot(3+i, r.column(f.Lanes, f.Lanes-1)+6, utf8.RuneCountInString(text), text)
	}

	if f.Paused {
		r.plot(cen-1, r.column(f.Lanes, 0)-2, 8, "\033[1m PAUSED \033[0m")
	}

	r.tickDecorations()
	return r.flush()
}
