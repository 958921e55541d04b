package main

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"time"

	"git.lost.host/meutraa/trg/internal/audio"
	"git.lost.host/meutraa/trg/internal/clock"
	"git.lost.host/meutraa/trg/internal/config"
	"git.lost.host/meutraa/trg/internal/game"
	"git.lost.host/meutraa/trg/internal/input"
	"git.lost.host/meutraa/trg/internal/log"
	"git.lost.host/meutraa/trg/internal/parser"
	"git.lost.host/meutraa/trg/internal/render"
	"git.lost.host/meutraa/trg/internal/score"
	"git.lost.host/meutraa/trg/internal/session"
	"git.lost.host/meutraa/trg/internal/theme"
	"github.com/eiannone/keyboard"
	"github.com/pkg/errors"
)

func main() {
	if err := run(os.Args[1:]); nil != err {
		stdlog.Fatalln(err)
	}
}

// songFile prefers the song the chart names, next to the chart.
func songFile(chartFile string, chart *game.Chart, found string) string {
	if chart.Audio != "" {
		p := filepath.Join(filepath.Dir(chartFile), chart.Audio)
		if _, err := os.Stat(p); nil == err {
			return p
		}
	}
	return found
}

func run(args []string) error {
	cfg, err := config.Parse(args)
	if nil != err {
		return err
	}

	lf, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if nil != err {
		return errors.Wrap(err, "unable to open log file")
	}
	defer lf.Close()
	logger := log.New(lf, cfg.LogLevel)

	chartFile, found, err := config.Locate(cfg.Path)
	if nil != err {
		return err
	}
	chart, err := parser.Load(chartFile, game.LoadOptions{Strict: cfg.Strict, MinGap: game.DefaultGap})
	if nil != err {
		return errors.Wrapf(err, "unable to load %v", chartFile)
	}
	logger.Infof("loaded %q from %v: %v notes, %v holds, %v lanes", chart.Title, chartFile, chart.NoteCount, chart.HoldCount, chart.Lanes)
	if len(cfg.Bindings.Lanes) < chart.Lanes {
		return fmt.Errorf("%q has %d lanes but only %d keys are bound", chart.Title, chart.Lanes, len(cfg.Bindings.Lanes))
	}

	scoreOpts := score.Options{GhostBreaksCombo: cfg.GhostMiss}

	// Ensure our Default implementations are used as interfaces
	var scorer score.Scorer = &score.DefaultScorer{Log: logger}
	useDB := cfg.Save || cfg.Replay != ""
	if useDB {
		if err := os.MkdirAll(filepath.Dir(cfg.DB), 0o755); nil != err {
			return errors.Wrap(err, "unable to create score directory")
		}
		if err := scorer.Init(cfg.DB); nil != err {
			return err
		}
		defer scorer.Deinit()
	}

	if cfg.Replay != "" {
		return replay(os.Stdout, scorer, chart, cfg, scoreOpts)
	}

	var best score.Summary
	hasBest := false
	if useDB {
		if best, hasBest, err = scorer.Best(chart); nil != err {
			logger.Warnf("unable to read best score: %v", err)
		}
	}

	var playback clock.Playback
	if song := songFile(chartFile, chart, found); song != "" {
		player, err := audio.Open(song, audio.Options{Rate: cfg.Rate, Volume: cfg.Volume, Mute: cfg.Mute}, logger)
		if nil != err {
			return err
		}
		defer player.Close()
		if err := player.Init(); nil != err {
			return err
		}
		playback = player
	} else {
		logger.Warnf("no song found for %q, following the wall clock", chart.Title)
	}
	clk := clock.New(playback, clock.Options{Offset: cfg.Offset, Rate: cfg.Rate, LeadIn: cfg.Delay}, logger)

	keys, err := keyboard.GetKeys(128)
	if nil != err {
		return errors.Wrap(err, "unable to open keyboard")
	}
	defer func() {
		if err := keyboard.Close(); nil != err {
			logger.Errorf("unable to close keyboard: %v", err)
		}
	}()

	queue := input.NewQueue(128)
	go input.Capture(keys, cfg.Bindings, clk, queue, logger)

	var r render.Renderer
	r, err = render.NewTerminal(os.Stdout, int(os.Stdout.Fd()), &theme.DefaultTheme{}, render.Options{
		BarRow:  cfg.BarRow,
		Spacing: cfg.Spacing,
	})
	if nil != err {
		return err
	}
	if err := r.Init(); nil != err {
		return err
	}

	s := session.New(chart, cfg.Judgements, clk, queue, r, session.Options{
		FramePeriod: cfg.FramePeriod,
		ScrollScale: cfg.ScrollScale,
		Autoplay:    cfg.Autoplay,
		Score:       scoreOpts,
	}, logger)
	summary, runErr := s.Run()

	// Restore the terminal state
	if err := r.Deinit(); nil != err {
		logger.Errorf("unable to restore terminal: %v", err)
	}
	if nil != runErr {
		return runErr
	}
	if n := queue.Dropped(); n > 0 {
		logger.Warnf("%d presses were dropped", n)
	}

	if cfg.Save && s.Finished() {
		if _, err := scorer.Save(chart, s.Inputs(), cfg.Rate, summary); nil != err {
			logger.Errorf("%v", err)
		}
	}

	printSummary(os.Stdout, summary)
	if hasBest {
		fmt.Printf("       Best:  %7v\n", best.Score)
	}
	return nil
}

func replay(w io.Writer, scorer score.Scorer, chart *game.Chart, cfg *config.Config, opts score.Options) error {
	histories, err := scorer.Load(chart)
	if nil != err {
		return err
	}
	var h *score.History
	for i := range histories {
		if histories[i].ID == cfg.Replay || cfg.Replay == "last" {
			h = &histories[i]
		}
	}
	if nil == h {
		return fmt.Errorf("no saved play %q for %q", cfg.Replay, chart.Title)
	}
	fmt.Fprintf(w, "Replaying %v from %v at %vx\n", h.ID, h.Played.Format(time.RFC822), h.Rate)
	printSummary(w, score.Replay(chart, cfg.Judgements, h.Inputs, opts))
	return nil
}

func printSummary(w io.Writer, s score.Summary) {
	fmt.Fprintf(w, "%v\n", s.Title)
	fmt.Fprintf(w, "      Score:  %7v\n", s.Score)
	fmt.Fprintf(w, "  Max Combo:  %7v / %v\n", s.MaxCombo, s.Total)
	fmt.Fprintf(w, "   Accuracy:  %6.2f%%\n", 100*s.Accuracy)
	fmt.Fprintf(w, "       Mean:  %7v\n", s.Mean.Round(time.Microsecond))
	fmt.Fprintf(w, "      Stdev:  %7v\n", s.Stdev.Round(time.Microsecond))
	for i, name := range s.Names {
		fmt.Fprintf(w, "%11v:  %7v\n", name, s.Counts[i])
	}
	fmt.Fprintf(w, "     Ghosts:  %7v\n", s.Ghosts)
}
