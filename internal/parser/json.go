package parser

import (
	"fmt"
	"io"
	"time"

	"git.lost.host/meutraa/trg/internal/game"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// JSONParser reads charts exported as JSON. Times are milliseconds, lanes start at 0.
//
//	{"title": "x", "audio": "x.ogg", "lanes": 4, "speed": 5, "offset": 0, "end": 60000,
//	 "notes": [{"lane": 0, "time": 1000}, {"lane": 1, "time": 1500, "type": "hold", "duration": 400}],
//	 "texts": [{"text": "Go!", "time": 0, "duration": 2000}]}
type JSONParser struct{}

func millis(r gjson.Result) time.Duration {
	return time.Duration(r.Float() * float64(time.Millisecond))
}

func (p *JSONParser) Read(r io.Reader) (*game.RawChart, error) {
	data, err := io.ReadAll(r)
	if nil != err {
		return nil, errors.Wrap(err, "unable to read chart")
	}
	if !gjson.ValidBytes(data) {
		return nil, malformed(0, "invalid json")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, malformed(0, "not an object")
	}

	title := doc.Get("title")
	if !title.Exists() {
		return nil, missing("title")
	}
	notes := doc.Get("notes")
	if !notes.Exists() {
		return nil, missing("notes")
	}
	if !notes.IsArray() {
		return nil, malformed(0, "notes is not a list")
	}

	chart := &game.RawChart{
		Title: title.String(),
		Maker: doc.Get("maker").String(),
		Audio: doc.Get("audio").String(),
		Level: doc.Get("level").String(),
		Lanes: game.DefaultLanes,
		Speed: game.DefaultSpeed,
	}
	if v := doc.Get("lanes"); v.Exists() {
		if v.Type != gjson.Number {
			return nil, malformed(0, "lanes %q", v.Raw)
		}
		chart.Lanes = int(v.Int())
	}
	if v := doc.Get("speed"); v.Exists() {
		if v.Type != gjson.Number {
			return nil, malformed(0, "speed %q", v.Raw)
		}
		chart.Speed = v.Float()
	}
	if v := doc.Get("offset"); v.Exists() {
		chart.Offset = millis(v)
	}
	if v := doc.Get("end"); v.Exists() {
		chart.End = millis(v)
		chart.HasEnd = true
	}

	for i, n := range notes.Array() {
		note, err := p.readNote(i, n)
		if nil != err {
			return nil, err
		}
		chart.Notes = append(chart.Notes, note)
	}

	for i, t := range doc.Get("texts").Array() {
		if !t.Get("text").Exists() || !t.Get("time").Exists() {
			return nil, missing(fmt.Sprintf("texts.%d", i))
		}
		chart.Texts = append(chart.Texts, game.TextEvent{
			Text:     t.Get("text").String(),
			Time:     millis(t.Get("time")),
			Duration: millis(t.Get("duration")),
		})
	}

	return chart, nil
}

func (p *JSONParser) readNote(i int, n gjson.Result) (game.RawNote, error) {
	lane, at := n.Get("lane"), n.Get("time")
	if !lane.Exists() {
		return game.RawNote{}, missing(fmt.Sprintf("notes.%d.lane", i))
	}
	if !at.Exists() {
		return game.RawNote{}, missing(fmt.Sprintf("notes.%d.time", i))
	}
	if lane.Type != gjson.Number || at.Type != gjson.Number {
		return game.RawNote{}, malformed(0, "note %d: %s", i, n.Raw)
	}
	note := game.RawNote{
		Lane: int(lane.Int()),
		Time: millis(at),
	}
	switch kind := n.Get("type").String(); kind {
	case "", "tap", "normal", "drag":
		note.Kind = game.KindTap
	case "hold":
		note.Kind = game.KindHold
		note.Length = millis(n.Get("duration"))
	default:
		return game.RawNote{}, malformed(0, "note %d: type %q", i, kind)
	}
	return note, nil
}
