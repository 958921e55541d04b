package game

import "fmt"

// Reason classifies why a chart was rejected.
type Reason int

const (
	ReasonMalformed Reason = iota
	ReasonMissingField
	ReasonEmpty
	ReasonNegativeTime
	ReasonNonMonotonic
	ReasonLaneRange
	ReasonCollision
)

func (r Reason) String() string {
	switch r {
	case ReasonMalformed:
		return "malformed"
	case ReasonMissingField:
		return "missing field"
	case ReasonEmpty:
		return "empty"
	case ReasonNegativeTime:
		return "negative time"
	case ReasonNonMonotonic:
		return "non-monotonic"
	case ReasonLaneRange:
		return "lane out of range"
	case ReasonCollision:
		return "collision"
	}
	return "unknown"
}

// ChartError is returned for any chart that cannot be played.
// Index is the offending raw note (-1 if none), Line the source line (0 if unknown).
type ChartError struct {
	Reason Reason
	Index  int
	Line   int
	Msg    string
	Err    error
}

func (e *ChartError) Error() string {
	s := "chart: " + e.Reason.String()
	if e.Line > 0 {
		s += fmt.Sprintf(" (line %d)", e.Line)
	} else if e.Index >= 0 {
		s += fmt.Sprintf(" (note %d)", e.Index)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *ChartError) Unwrap() error {
	return e.Err
}

func chartErr(reason Reason, index int, line int, format string, args ...interface{}) *ChartError {
	return &ChartError{
		Reason: reason,
		Index:  index,
		Line:   line,
		Msg:    fmt.Sprintf(format, args...),
	}
}
