package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
)

// writeSilence writes a second of silence as a wav file.
func writeSilence(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "silence.wav")
	f, err := os.Create(path)
	if nil != err {
		t.Fatal(err)
	}
	defer f.Close()
	format := beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, beep.Silence(44100), format); nil != err {
		t.Fatal(err)
	}
	return path
}

func TestOpen(t *testing.T) {
	p, err := Open(writeSilence(t), Options{Rate: 1.5}, nil)
	if nil != err {
		t.Fatal(err)
	}
	defer p.Close()

	if p.Length() != time.Second {
		t.Fatalf("expected a second of audio, got %v", p.Length())
	}
	if _, ok := p.Position(); ok {
		t.Fatal("position reported before playing")
	}

	if err := p.Seek(500 * time.Millisecond); nil != err {
		t.Fatal(err)
	}
	if p.streamer.Position() != 22050 {
		t.Fatalf("expected sample 22050, got %d", p.streamer.Position())
	}
	// Past the end clamps to the last sample
	if err := p.Seek(time.Hour); nil != err {
		t.Fatal(err)
	}

	p.Pause()
	if !p.ctrl.Paused {
		t.Fatal("pause did not reach the stream")
	}
	p.Resume()
	if p.ctrl.Paused {
		t.Fatal("resume did not reach the stream")
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "song.flac")
	os.WriteFile(bad, []byte("fLaC"), 0o644)
	broken := filepath.Join(dir, "song.wav")
	os.WriteFile(broken, []byte("not a wav"), 0o644)

	for _, path := range []string{bad, broken, filepath.Join(dir, "missing.ogg")} {
		if _, err := Open(path, Options{}, nil); nil == err {
			t.Logf("%v: expected an error", path)
			t.Fail()
		}
	}
}

func TestPositionAfterDrain(t *testing.T) {
	p, err := Open(writeSilence(t), Options{}, nil)
	if nil != err {
		t.Fatal(err)
	}
	defer p.streamer.Close()

	// Stand in for Play without opening the audio device
	p.playing = true
	if pos, ok := p.Position(); !ok || pos != 0 {
		t.Fatalf("expected the start of the song, got %v %v", pos, ok)
	}

	buf := make([][2]float64, 4096)
	for {
		if _, ok := p.streamer.Stream(buf); !ok {
			break
		}
	}
	if pos, ok := p.Position(); ok {
		t.Fatalf("position %v reported after the song was drained", pos)
	}

	if err := p.Seek(250 * time.Millisecond); nil != err {
		t.Fatal(err)
	}
	if pos, ok := p.Position(); !ok || pos != 250*time.Millisecond {
		t.Fatalf("expected 250ms after seeking back, got %v %v", pos, ok)
	}
}
