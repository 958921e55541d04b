package parser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.lost.host/meutraa/trg/internal/game"
	"github.com/pkg/errors"
)

type Parser interface {
	// Read parses a chart document into an unvalidated chart
	Read(r io.Reader) (*game.RawChart, error)
}

// Extensions lists the chart file extensions with a parser.
var Extensions = []string{".chart", ".json"}

// ForFile picks a parser by file extension.
func ForFile(file string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".chart":
		return &DefaultParser{}, nil
	case ".json":
		return &JSONParser{}, nil
	}
	return nil, fmt.Errorf("no parser for %s", file)
}

// Parse reads a chart file with the parser matching its extension.
func Parse(file string) (*game.RawChart, error) {
	p, err := ForFile(file)
	if nil != err {
		return nil, err
	}
	f, err := os.Open(file)
	if nil != err {
		return nil, errors.Wrap(err, "unable to open chart")
	}
	defer f.Close()
	return p.Read(f)
}

// Load parses and validates a chart file.
func Load(file string, opts game.LoadOptions) (*game.Chart, error) {
	raw, err := Parse(file)
	if nil != err {
		return nil, err
	}
	return game.Load(raw, opts)
}

func malformed(line int, format string, args ...interface{}) *game.ChartError {
	return &game.ChartError{
		Reason: game.ReasonMalformed,
		Index:  -1,
		Line:   line,
		Msg:    fmt.Sprintf(format, args...),
	}
}

func missing(field string) *game.ChartError {
	return &game.ChartError{
		Reason: game.ReasonMissingField,
		Index:  -1,
		Msg:    field,
	}
}
