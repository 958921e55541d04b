// Package audio plays the chart's song and reports its position to the clock.
package audio

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"git.lost.host/meutraa/trg/internal/log"
	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"github.com/pkg/errors"
)

// Extensions the player can decode.
var Extensions = []string{".ogg", ".mp3", ".wav"}

type Options struct {
	// Playback speed, the song is resampled by initialising the speaker faster
	Rate float64
	// Gain in powers of two, 0 leaves the song unchanged
	Volume float64
	// Silence the song, the position is still reported
	Mute bool
}

// Player implements the clock's playback interface with beep.
type Player struct {
	log      *log.Logger
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	opts     Options

	once    sync.Once
	playing bool
}

func decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if nil != err {
		return nil, beep.Format{}, errors.Wrap(err, "unable to open audio")
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		f.Close()
		return nil, beep.Format{}, errors.Errorf("unsupported audio format %v", path)
	}
	if nil != err {
		f.Close()
		return nil, beep.Format{}, errors.Wrapf(err, "unable to decode %v", path)
	}
	return streamer, format, nil
}

// Open decodes the song without touching the audio device.
func Open(path string, opts Options, logger *log.Logger) (*Player, error) {
	if opts.Rate <= 0 {
		opts.Rate = 1
	}
	if logger == nil {
		logger = log.Discard()
	}
	streamer, format, err := decode(path)
	if nil != err {
		return nil, err
	}
	ctrl := &beep.Ctrl{Streamer: streamer, Paused: false}
	p := &Player{
		log:      logger,
		streamer: streamer,
		format:   format,
		ctrl:     ctrl,
		volume: &effects.Volume{
			Streamer: ctrl,
			Base:     2,
			Volume:   opts.Volume,
			Silent:   opts.Mute,
		},
		opts: opts,
	}
	logger.Infof("opened %v: %v Hz, %v channels, %v", path, format.SampleRate, format.NumChannels, p.Length())
	return p, nil
}

// Init opens the audio device.
func (p *Player) Init() error {
	rate := beep.SampleRate(math.Round(float64(p.format.SampleRate) * p.opts.Rate))
	if err := speaker.Init(rate, p.format.SampleRate.N(time.Second/60)); nil != err {
		return errors.Wrap(err, "unable to initialise speaker")
	}
	return nil
}

// Length of the song.
func (p *Player) Length() time.Duration {
	return p.format.SampleRate.D(p.streamer.Len())
}

// Position is in song time, unaffected by the rate. It is not reported
// before Play or once the song has been drained.
func (p *Player) Position() (time.Duration, bool) {
	speaker.Lock()
	defer speaker.Unlock()
	if !p.playing {
		return 0, false
	}
	pos := p.streamer.Position()
	if pos >= p.streamer.Len() {
		return 0, false
	}
	return p.format.SampleRate.D(pos), true
}

func (p *Player) Play() {
	p.once.Do(func() {
		speaker.Lock()
		p.playing = true
		speaker.Unlock()
		speaker.Play(p.volume)
	})
}

func (p *Player) Pause() {
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
}

func (p *Player) Resume() {
	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
}

func (p *Player) Seek(pos time.Duration) error {
	n := p.format.SampleRate.N(pos)
	if n < 0 {
		n = 0
	}
	if last := p.streamer.Len() - 1; n > last && last >= 0 {
		n = last
	}
	speaker.Lock()
	defer speaker.Unlock()
	if err := p.streamer.Seek(n); nil != err {
		return errors.Wrapf(err, "unable to seek to %v", pos)
	}
	return nil
}

func (p *Player) Close() error {
	if p.playing {
		speaker.Clear()
	}
	return p.streamer.Close()
}
