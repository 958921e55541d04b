package parser

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"git.lost.host/meutraa/trg/internal/game"
	"github.com/pkg/errors"
)

// DefaultParser reads the line based .chart format.
//
//	# comment
//	name-Song title
//	audio-song.ogg
//	speed-5
//	0:01:500        cursor at 1.5s
//	tab-1           tap in lane 1
//	hold-2-4        hold in lane 2, 4 rows long at the current speed
//	write-Go!-2     caption shown for 2s
//	&               end of chart
type DefaultParser struct{}

var timeLine = regexp.MustCompile(`^(\d+):(\d+)(?::(\d+))?`)

func (p *DefaultParser) parseTime(m []string) time.Duration {
	// the regexp guarantees digits
	minutes, _ := strconv.Atoi(m[1])
	seconds, _ := strconv.Atoi(m[2])
	millis := 0
	if m[3] != "" {
		millis, _ = strconv.Atoi(m[3])
	}
	return time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond
}

func (p *DefaultParser) Read(r io.Reader) (*game.RawChart, error) {
	chart := &game.RawChart{
		Lanes: game.DefaultLanes,
		Speed: game.DefaultSpeed,
	}

	var cursor time.Duration
	scanner := bufio.NewScanner(r)
	for ln := 1; scanner.Scan(); ln++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "&" {
			chart.End = cursor
			chart.HasEnd = true
			break
		}
		if m := timeLine.FindStringSubmatch(line); m != nil {
			cursor = p.parseTime(m)
			continue
		}

		key, value, _ := strings.Cut(line, "-")
		var err error
		switch key {
		case "name":
			chart.Title = strings.TrimSpace(value)
		case "maker":
			chart.Maker = strings.TrimSpace(value)
		case "level":
			chart.Level = strings.TrimSpace(value)
		case "audio":
			chart.Audio = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(value), "audio-"))
		case "speed", "line":
			chart.Speed, err = strconv.ParseFloat(value, 64)
		case "lanes":
			chart.Lanes, err = strconv.Atoi(value)
		case "offset":
			var offs int
			offs, err = strconv.Atoi(value)
			chart.Offset = time.Duration(offs) * time.Millisecond
		case "tab", "drag":
			var lane int
			lane, err = strconv.Atoi(value)
			chart.Notes = append(chart.Notes, game.RawNote{
				Lane: lane - 1,
				Kind: game.KindTap,
				Time: cursor,
				Line: ln,
			})
		case "hold":
			err = p.readHold(chart, value, cursor, ln)
		case "write":
			err = p.readText(chart, value, cursor)
		default:
			return nil, malformed(ln, "unknown element %q", line)
		}
		if nil != err {
			ce := malformed(ln, "%q", line)
			ce.Err = err
			return nil, ce
		}
	}
	if err := scanner.Err(); nil != err {
		return nil, errors.Wrap(err, "unable to read chart")
	}
	return chart, nil
}

func (p *DefaultParser) readHold(chart *game.RawChart, value string, cursor time.Duration, ln int) error {
	parts := strings.Split(value, "-")
	lane, err := strconv.Atoi(parts[0])
	if nil != err {
		return err
	}
	rows := 1.0
	if len(parts) > 1 {
		rows, err = strconv.ParseFloat(parts[1], 64)
		if nil != err {
			return err
		}
	}
	if chart.Speed <= 0 {
		return errors.Errorf("hold with speed %v", chart.Speed)
	}
	chart.Notes = append(chart.Notes, game.RawNote{
		Lane:   lane - 1,
		Kind:   game.KindHold,
		Time:   cursor,
		Length: time.Duration(rows / chart.Speed * float64(time.Second)),
		Line:   ln,
	})
	return nil
}

func (p *DefaultParser) readText(chart *game.RawChart, value string, cursor time.Duration) error {
	i := strings.LastIndex(value, "-")
	if i < 0 {
		return errors.New("missing duration")
	}
	secs, err := strconv.Atoi(value[i+1:])
	if nil != err {
		return err
	}
	chart.Texts = append(chart.Texts, game.TextEvent{
		Text:     value[:i],
		Time:     cursor,
		Duration: time.Duration(secs) * time.Second,
	})
	return nil
}
