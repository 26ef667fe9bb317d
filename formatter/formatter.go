package formatter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/parvayadav-star/atcsv/models"
)

// Report bundles the outputs of one CLI analysis run.
type Report struct {
	Summary  models.Summary        `json:"summary"`
	Attempts []models.AttemptStats `json:"attempts"`
}

// recordHeader is the export header. Column names and value spellings match
// the ingestion format, so an exported file re-ingests cleanly.
var recordHeader = []string{
	"Number", "Time", "Use Case", "Call Status", "Duration",
	"Analysis.task_completion", "Analysis.user_sentiment",
}

// attemptHeader matches the on-screen attempt-analysis table.
var attemptHeader = []string{
	"nth call", "nth total calls", "picked up", "Goal met",
	"Driver Negative", "Call Pick Rate", "Goal Success on Picked Calls",
}

// exportTimeLayout is one of the layouts the parser accepts.
const exportTimeLayout = "2006-01-02 15:04:05"

// FormatText returns a human-readable rendering of the report.
func FormatText(r Report) string {
	var sb strings.Builder

	s := r.Summary
	sb.WriteString(fmt.Sprintf("Calls Made        : %d\n", s.TotalCalls))
	sb.WriteString(fmt.Sprintf("Call Placed       : %d\n", s.CallPlaced))
	sb.WriteString(fmt.Sprintf("Could Not Connect : %d\n", s.CouldNotConnect))
	sb.WriteString(fmt.Sprintf("Call Completed    : %d\n", s.Completed))
	sb.WriteString(fmt.Sprintf("Task Success      : %d\n", s.TaskSuccess))
	sb.WriteString(fmt.Sprintf("Success Rate      : %s\n", pctOrNA(s.SuccessRate, s.SuccessRateValid)))
	sb.WriteString(fmt.Sprintf("Avg Duration      : %s\n", secondsOrNA(s.AvgDuration, s.AvgDurationValid)))

	if len(r.Attempts) > 0 {
		sb.WriteString("\nNth Call Analysis\n")
		for _, a := range r.Attempts {
			sb.WriteString(fmt.Sprintf(
				"attempt %d : calls=%d picked=%d goal=%d negative=%d pick_rate=%.1f%% goal_success=%.1f%%\n",
				a.Attempt, a.TotalCalls, a.PickedUp, a.GoalMet,
				a.NegativeSentiment, a.PickupRate, a.GoalSuccessOnPicked))
		}
	}
	return sb.String()
}

// FormatJSON returns the JSON rendering of the report.
func FormatJSON(r Report) string {
	b, _ := json.MarshalIndent(r, "", "  ")
	return string(b)
}

// FormatCSV returns the attempt-analysis table as CSV, the same shape the
// dashboard's download button produces.
func FormatCSV(r Report) string {
	var sb strings.Builder
	WriteAttempts(&sb, r.Attempts)
	return sb.String()
}

// WriteRecords exports records as delimited text with header, using the same
// column semantics as ingestion. Re-parsing the output yields the same record
// count and equivalent field values.
func WriteRecords(w io.Writer, records []models.CallRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(recordHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Number,
			r.Time.Format(exportTimeLayout),
			r.UseCase,
			r.CallStatus,
			strconv.FormatFloat(r.DurationSeconds, 'f', -1, 64),
			r.TaskCompletion.String(),
			r.Sentiment.String(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAttempts exports the attempt-analysis table as CSV with display
// column names. Rates are rounded to one decimal like the on-screen table.
func WriteAttempts(w io.Writer, stats []models.AttemptStats) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(attemptHeader); err != nil {
		return err
	}
	for _, a := range stats {
		row := []string{
			strconv.Itoa(a.Attempt),
			strconv.Itoa(a.TotalCalls),
			strconv.Itoa(a.PickedUp),
			strconv.Itoa(a.GoalMet),
			strconv.Itoa(a.NegativeSentiment),
			strconv.FormatFloat(round1(a.PickupRate), 'f', 1, 64),
			strconv.FormatFloat(round1(a.GoalSuccessOnPicked), 'f', 1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func pctOrNA(v float64, ok bool) string {
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%% of completed", v)
}

func secondsOrNA(v float64, ok bool) string {
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.1fs", v)
}

func round1(f float64) float64 { return float64(int64(f*10+0.5)) / 10 }
