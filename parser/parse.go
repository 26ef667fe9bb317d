package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/parvayadav-star/atcsv/errors"
	"github.com/parvayadav-star/atcsv/metrics"
	"github.com/parvayadav-star/atcsv/models"
)

// Column names expected in the header row. The two Analysis columns are
// optional; when absent every record gets the Unknown value for that field.
const (
	ColNumber     = "Number"
	ColTime       = "Time"
	ColUseCase    = "Use Case"
	ColStatus     = "Call Status"
	ColDuration   = "Duration"
	ColCompletion = "Analysis.task_completion"
	ColSentiment  = "Analysis.user_sentiment"
)

var requiredColumns = []string{ColNumber, ColTime, ColUseCase, ColStatus, ColDuration}

// timeLayouts are tried in order for the Time column. ISO-like layouts first,
// then common human formats.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006 3:04:05 PM",
	"01/02/2006",
}

// Parse reads a call log CSV and returns the normalized records in input
// order. The first row must be a header naming at least the required
// columns. An unparsable Time is fatal because attempt numbering orders by
// time; an unparsable Duration silently coerces to 0. No data row is ever
// silently dropped.
func Parse(r io.Reader) ([]models.CallRecord, error) {
	start := time.Now()

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			metrics.ParserErrorsTotal.WithLabelValues("missing_column").Inc()
			return nil, fmt.Errorf("%w: %q", errors.ErrMissingColumn, name)
		}
	}
	completionIdx, hasCompletion := cols[ColCompletion]
	sentimentIdx, hasSentiment := cols[ColSentiment]

	var records []models.CallRecord
	lineNum := 1
	for {
		record, err := reader.Read()
		lineNum++
		if err == io.EOF {
			break
		}
		if err != nil {
			metrics.ParserErrorsTotal.WithLabelValues("malformed_row").Inc()
			return nil, fmt.Errorf("error reading CSV at line %d: %w", lineNum, err)
		}

		field := func(idx int) string {
			if idx < 0 || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		t, err := parseTime(field(cols[ColTime]))
		if err != nil {
			metrics.ParserErrorsTotal.WithLabelValues("invalid_time").Inc()
			return nil, &errors.ParseError{
				Line:   lineNum,
				Record: record,
				Err:    fmt.Errorf("%w: %v", errors.ErrInvalidTime, err),
			}
		}

		cr := models.CallRecord{
			Number:          field(cols[ColNumber]),
			Time:            t,
			UseCase:         field(cols[ColUseCase]),
			CallStatus:      field(cols[ColStatus]),
			DurationSeconds: coerceDuration(field(cols[ColDuration])),
			TaskCompletion:  models.TaskUnknown,
			Sentiment:       models.SentimentUnknown,
			CallDate:        dayOf(t),
			Hour:            t.Hour(),
			DayOfWeek:       t.Weekday().String(),
		}
		if hasCompletion {
			cr.TaskCompletion = models.ParseTaskCompletion(field(completionIdx))
		}
		if hasSentiment {
			cr.Sentiment = models.ParseSentiment(field(sentimentIdx))
		}

		records = append(records, cr)
		metrics.ParserRecordsTotal.Inc()
	}

	metrics.ParseDurationSeconds.Observe(time.Since(start).Seconds())
	return records, nil
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty value")
	}
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// coerceDuration turns non-numeric or negative durations into 0 rather than
// failing the row. Zero stands for a call that never connected.
func coerceDuration(value string) float64 {
	d, err := strconv.ParseFloat(value, 64)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
