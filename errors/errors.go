package errors

import "fmt"

// ParseError wraps a specific error with context about where in the input it
// occurred. Line is 1-based and counts the header row.
type ParseError struct {
	Line   int
	Record []string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %v (record: %v)", e.Line, e.Err, e.Record)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Sentinel errors for ingestion failures. Missing columns and unparsable
// timestamps are fatal; bad durations are not (they coerce to zero).
var (
	ErrEmptyInput       = fmt.Errorf("input contains no header row")
	ErrMissingColumn    = fmt.Errorf("missing required column")
	ErrInvalidTime      = fmt.Errorf("invalid timestamp")
	ErrUnknownDimension = fmt.Errorf("unknown dimension")
	ErrUnknownMetric    = fmt.Errorf("unknown metric")
)
