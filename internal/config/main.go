package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"git.lost.host/meutraa/trg/internal/audio"
	"git.lost.host/meutraa/trg/internal/game"
	"git.lost.host/meutraa/trg/internal/input"
	"git.lost.host/meutraa/trg/internal/log"
	"git.lost.host/meutraa/trg/internal/parser"
	"github.com/pkg/errors"
	"gopkg.in/alecthomas/kingpin.v2"
)

const Version = "0.3.0"

// Config is resolved once at startup and never changed.
type Config struct {
	Path        string
	Rate        float64
	Offset      time.Duration
	Delay       time.Duration
	FramePeriod time.Duration
	ScrollScale float64
	BarRow      int
	Spacing     int
	Volume      float64
	Mute        bool
	Autoplay    bool
	GhostMiss   bool
	Strict      bool
	Save        bool
	Replay      string
	DB          string
	LogFile     string
	LogLevel    log.Level

	Difficulty game.Difficulty
	Judgements game.Judgements
	Bindings   input.Bindings
}

func defaultDB() string {
	dir, err := os.UserConfigDir()
	if nil != err {
		return "trg.db"
	}
	return filepath.Join(dir, "trg", "scores.db")
}

// Parse reads the command line into a Config.
func Parse(args []string) (*Config, error) {
	app := kingpin.New("trg", "Terminal rhythm game")
	app.Version(Version)

	var (
		path        = app.Arg("chart", "Chart file, or a song directory holding one").Required().ExistingFileOrDir()
		rate        = app.Flag("rate", "Playback speed").Default("1.0").Short('r').Float64()
		offset      = app.Flag("offset", "Global offset added to song time").Default("0ms").Short('o').Duration()
		delay       = app.Flag("delay", "Lead in before the song starts").Default("1.5s").Short('d').Duration()
		fps         = app.Flag("fps", "Frames per second").Default("120").Short('f').Float64()
		scrollSpeed = app.Flag("scroll-speed", "Scroll speed multiplier, higher is faster").Default("1.0").Short('s').Float64()
		barRow      = app.Flag("bar-row", "Console rows between the hit bar and the bottom").Default("8").Uint()
		spacing     = app.Flag("spacing", "Columns between lanes").Default("6").Short('S').Uint()
		keys        = app.Flag("keys", "Lane keys, left to right").Default("dfjk").Short('k').String()
		pauseKey    = app.Flag("pause-key", "Pause toggle key").Default(" ").String()
		volume      = app.Flag("volume", "Gain in powers of two").Default("0").Float64()
		mute        = app.Flag("mute", "Silence the song").Bool()
		difficulty  = app.Flag("difficulty", "Judgement window scale").Default(string(game.Normal)).Enum(
			string(game.Easy), string(game.Normal), string(game.Hard), string(game.Expert), string(game.Master))
		perfect   = app.Flag("perfect", "Perfect window").Default("80ms").Duration()
		good      = app.Flag("good", "Good window").Default("160ms").Duration()
		bad       = app.Flag("bad", "Bad window, presses further out are ghosts").Default("200ms").Duration()
		ghostMiss = app.Flag("ghost-miss", "Presses that hit nothing break the combo").Bool()
		autoplay  = app.Flag("autoplay", "Hit every note perfectly").Short('a').Bool()
		strict    = app.Flag("strict", "Reject charts with notes out of order").Bool()
		save      = app.Flag("save", "Save the result").Default("true").Bool()
		replay    = app.Flag("replay", "Judge a saved play again, by id or \"last\"").String()
		db        = app.Flag("db", "Score database").Default(defaultDB()).String()
		logFile   = app.Flag("log-file", "Log file, the terminal is busy while playing").Default(filepath.Join(os.TempDir(), "trg.log")).String()
		logLevel  = app.Flag("log-level", "Log level").Default("info").Enum("debug", "info", "warn", "error", "none")
	)

	if _, err := app.Parse(args); nil != err {
		return nil, err
	}

	if *rate <= 0 {
		return nil, fmt.Errorf("rate must be positive, got %v", *rate)
	}
	if *fps <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %v", *fps)
	}
	if *scrollSpeed <= 0 {
		return nil, fmt.Errorf("scroll speed must be positive, got %v", *scrollSpeed)
	}

	d, err := game.ParseDifficulty(*difficulty)
	if nil != err {
		return nil, err
	}
	js := game.DefaultJudgements()
	js[0].Window = *perfect
	js[1].Window = *good
	js[2].Window = *bad
	js = d.Apply(js)
	if err := js.Validate(); nil != err {
		return nil, errors.Wrap(err, "invalid judgement windows")
	}

	bindings, err := Bindings(*keys, *pauseKey)
	if nil != err {
		return nil, err
	}

	return &Config{
		Path:        *path,
		Rate:        *rate,
		Offset:      *offset,
		Delay:       *delay,
		FramePeriod: time.Duration(float64(time.Second) / *fps),
		ScrollScale: *scrollSpeed,
		BarRow:      int(*barRow),
		Spacing:     int(*spacing),
		Volume:      *volume,
		Mute:        *mute,
		Autoplay:    *autoplay,
		GhostMiss:   *ghostMiss,
		Strict:      *strict,
		Save:        *save && !*autoplay && *replay == "",
		Replay:      *replay,
		DB:          *db,
		LogFile:     *logFile,
		LogLevel:    log.LevelFromString(*logLevel),
		Difficulty:  d,
		Judgements:  js,
		Bindings:    bindings,
	}, nil
}

// Bindings builds the key table, every key must be distinct.
func Bindings(keys, pause string) (input.Bindings, error) {
	if keys == "" {
		return input.Bindings{}, errors.New("no lane keys")
	}
	if utf8.RuneCountInString(pause) != 1 {
		return input.Bindings{}, fmt.Errorf("pause key must be a single character, got %q", pause)
	}
	p, _ := utf8.DecodeRuneInString(pause)
	seen := map[rune]bool{}
	for _, r := range strings.ToLower(keys + pause) {
		if seen[r] {
			return input.Bindings{}, fmt.Errorf("key %q is bound twice", r)
		}
		seen[r] = true
	}
	return input.NewBindings(keys, p), nil
}

// Locate finds the chart and song for a chart file or a song directory.
// song is empty when the directory holds none.
func Locate(path string) (chart, song string, err error) {
	info, err := os.Stat(path)
	if nil != err {
		return "", "", errors.Wrap(err, "unable to stat chart path")
	}
	dir := path
	if !info.IsDir() {
		chart = path
		dir = filepath.Dir(path)
	}

	if err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if nil != err {
			return err
		}
		if info.IsDir() {
			if p != dir {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(info.Name()))
		for _, e := range audio.Extensions {
			if ext == e && song == "" {
				song = p
			}
		}
		for _, e := range parser.Extensions {
			if ext == e && chart == "" {
				chart = p
			}
		}
		return nil
	}); nil != err {
		return "", "", errors.Wrap(err, "unable to walk song directory")
	}

	if chart == "" {
		return "", "", fmt.Errorf("unable to find a .chart or .json file in %v", dir)
	}
	return chart, song, nil
}
