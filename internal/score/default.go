package score

import (
	"database/sql"
	"encoding/json"
	"sort"
	"time"

	"git.lost.host/meutraa/trg/internal/game"
	"git.lost.host/meutraa/trg/internal/judge"
	"git.lost.host/meutraa/trg/internal/log"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

type DefaultScorer struct {
	db  *sql.DB
	Log *log.Logger
}

type InputsCompact struct {
	Lane  int
	Times []time.Duration
}

func compactInputs(inputs []game.Input) []InputsCompact {
	colCount := 0
	for _, i := range inputs {
		if i.Lane+1 > colCount {
			colCount = i.Lane + 1
		}
	}
	ins := make([]InputsCompact, colCount)
	for i := range ins {
		ins[i] = InputsCompact{Lane: i, Times: []time.Duration{}}
	}
	for _, i := range inputs {
		ins[i.Lane].Times = append(ins[i.Lane].Times, i.Time)
	}
	return ins
}

func uncompactInputs(inputs []InputsCompact) []game.Input {
	ins := []game.Input{}
	for _, i := range inputs {
		for _, t := range i.Times {
			ins = append(ins, game.Input{Lane: i.Lane, Time: t})
		}
	}
	return ins
}

func (s *DefaultScorer) Init(path string) error {
	if s.Log == nil {
		s.Log = log.Discard()
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return errors.Wrap(err, "unable to open score database")
	}

	initStatement := `
	create table if not exists scores
	  (
		  id text not null primary key,
		  sum text,
		  rate real,
		  played integer,
		  inputs bytearray,
		  summary text
	  );
	create index if not exists scores_sum on scores(sum);
	`
	_, err = db.Exec(initStatement)
	if nil != err {
		db.Close()
		return errors.Wrap(err, "unable to create score table")
	}

	s.db = db
	return nil
}

func (s *DefaultScorer) Deinit() {
	if nil != s.db {
		s.db.Close()
	}
}

// summaryDocument builds the stored summary a field at a time,
// keyed by tier name so it stays readable if the windows change.
func summaryDocument(summary Summary) ([]byte, error) {
	doc := []byte(`{}`)
	var err error
	set := func(path string, value interface{}) {
		if nil != err {
			return
		}
		doc, err = sjson.SetBytes(doc, path, value)
	}
	set("title", summary.Title)
	set("score", summary.Score)
	set("max_combo", summary.MaxCombo)
	set("total", summary.Total)
	set("accuracy", summary.Accuracy)
	set("misses", summary.Misses)
	set("ghosts", summary.Ghosts)
	set("mean_ms", float64(summary.Mean)/float64(time.Millisecond))
	set("stdev_ms", float64(summary.Stdev)/float64(time.Millisecond))
	for i, name := range summary.Names {
		set("tiers."+name, summary.Counts[i])
	}
	return doc, err
}

func parseSummary(doc string) Summary {
	res := gjson.Parse(doc)
	summary := Summary{
		Title:    res.Get("title").String(),
		Score:    res.Get("score").Int(),
		MaxCombo: int(res.Get("max_combo").Int()),
		Total:    int(res.Get("total").Int()),
		Accuracy: res.Get("accuracy").Float(),
		Misses:   int(res.Get("misses").Int()),
		Ghosts:   int(res.Get("ghosts").Int()),
		Mean:     time.Duration(res.Get("mean_ms").Float() * float64(time.Millisecond)),
		Stdev:    time.Duration(res.Get("stdev_ms").Float() * float64(time.Millisecond)),
	}
	res.Get("tiers").ForEach(func(k, v gjson.Result) bool {
		summary.Names = append(summary.Names, k.String())
		summary.Counts = append(summary.Counts, int(v.Int()))
		return true
	})
	return summary
}

func (s *DefaultScorer) Save(c *game.Chart, inputs []game.Input, rate float64, summary Summary) (string, error) {
	data, err := json.Marshal(compactInputs(inputs))
	if nil != err {
		return "", errors.Wrap(err, "unable to marshal inputs")
	}
	doc, err := summaryDocument(summary)
	if nil != err {
		return "", errors.Wrap(err, "unable to build summary")
	}
	id := uuid.New().String()
	_, err = s.db.Exec(
		"insert into scores(id, sum, rate, played, inputs, summary) values(?, ?, ?, ?, ?, ?)",
		id, c.Hash(), rate, time.Now().Unix(), data, string(doc),
	)
	if nil != err {
		return "", errors.Wrap(err, "unable to save score")
	}
	s.Log.Infof("saved score %v for %q", id, c.Title)
	return id, nil
}

func (s *DefaultScorer) Load(c *game.Chart) ([]History, error) {
	histories := []History{}
	rows, err := s.db.Query("select id, sum, rate, played, inputs from scores where sum = ? order by played", c.Hash())
	if nil != err {
		return histories, errors.Wrap(err, "unable to load scores")
	}
	defer rows.Close()
	for rows.Next() {
		var id, sum string
		var played int64
		var inputs []byte
		var rate float64
		if err := rows.Scan(&id, &sum, &rate, &played, &inputs); nil != err {
			return histories, errors.Wrap(err, "unable to scan score")
		}
		var ins []InputsCompact
		if err := json.Unmarshal(inputs, &ins); nil != err {
			s.Log.Warnf("unable to unmarshal input history %v: %v", id, err)
			continue
		}
		histories = append(histories, History{
			ID:     id,
			Sum:    sum,
			Inputs: uncompactInputs(ins),
			Rate:   rate,
			Played: time.Unix(played, 0),
		})
	}
	return histories, rows.Err()
}

func (s *DefaultScorer) Best(c *game.Chart) (Summary, bool, error) {
	rows, err := s.db.Query("select summary from scores where sum = ?", c.Hash())
	if nil != err {
		return Summary{}, false, errors.Wrap(err, "unable to load scores")
	}
	defer rows.Close()

	var best Summary
	found := false
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); nil != err {
			return Summary{}, false, errors.Wrap(err, "unable to scan score")
		}
		if score := gjson.Get(doc, "score").Int(); !found || score > best.Score {
			best = parseSummary(doc)
			found = true
		}
	}
	return best, found, rows.Err()
}

// Replay judges stored inputs against a fresh engine for the chart.
func Replay(c *game.Chart, judgements game.Judgements, inputs []game.Input, opts Options) Summary {
	ins := make([]game.Input, len(inputs))
	copy(ins, inputs)
	sort.SliceStable(ins, func(i, j int) bool { return ins[i].Time < ins[j].Time })

	engine := judge.New(c, judgements)
	tally := NewTally(judgements, len(c.Notes), opts)
	for _, in := range ins {
		for _, r := range engine.ExpireDue(in.Time) {
			tally.Apply(r)
		}
		tally.Apply(engine.OnInput(in))
	}
	for _, r := range engine.Flush(c.End + judgements.Widest()) {
		tally.Apply(r)
	}

	summary := tally.Summary()
	summary.Title = c.Title
	return summary
}
