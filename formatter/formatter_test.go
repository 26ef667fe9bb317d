package formatter_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parvayadav-star/atcsv/formatter"
	"github.com/parvayadav-star/atcsv/models"
	"github.com/parvayadav-star/atcsv/parser"
)

func sampleRecords() []models.CallRecord {
	return []models.CallRecord{
		{
			Number:          "15551234",
			Time:            time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC),
			UseCase:         "reminder",
			CallStatus:      models.StatusCompleted,
			DurationSeconds: 92.5,
			TaskCompletion:  models.TaskTrue,
			Sentiment:       models.SentimentPositive,
		},
		{
			Number:         "15559876",
			Time:           time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
			UseCase:        "survey",
			CallStatus:     models.StatusCallPlaced,
			TaskCompletion: models.TaskUnknown,
			Sentiment:      models.SentimentUnknown,
		},
	}
}

func TestWriteRecordsRoundTrip(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, formatter.WriteRecords(&sb, sampleRecords()))

	got, err := parser.Parse(strings.NewReader(sb.String()))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "15551234", got[0].Number)
	assert.Equal(t, time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC), got[0].Time)
	assert.Equal(t, 92.5, got[0].DurationSeconds)
	assert.Equal(t, models.TaskTrue, got[0].TaskCompletion)
	assert.Equal(t, models.SentimentPositive, got[0].Sentiment)

	// Unknown completion and sentiment survive the trip as unknown.
	assert.Equal(t, models.TaskUnknown, got[1].TaskCompletion)
	assert.Equal(t, models.SentimentUnknown, got[1].Sentiment)
}

func TestWriteAttempts(t *testing.T) {
	stats := []models.AttemptStats{
		{Attempt: 1, TotalCalls: 3, PickedUp: 1, GoalMet: 1, NegativeSentiment: 0, PickupRate: 33.333333, GoalSuccessOnPicked: 100},
		{Attempt: 2, TotalCalls: 1, PickedUp: 0, GoalMet: 0, NegativeSentiment: 1, PickupRate: 0, GoalSuccessOnPicked: 0},
	}
	var sb strings.Builder
	require.NoError(t, formatter.WriteAttempts(&sb, stats))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "nth call,nth total calls,picked up,Goal met,Driver Negative,Call Pick Rate,Goal Success on Picked Calls", lines[0])
	assert.Equal(t, "1,3,1,1,0,33.3,100.0", lines[1])
	assert.Equal(t, "2,1,0,0,1,0.0,0.0", lines[2])
}

func TestFormatText(t *testing.T) {
	tests := map[string]struct {
		report   formatter.Report
		contains []string
	}{
		"ValidRates": {
			report: formatter.Report{
				Summary: models.Summary{
					TotalCalls: 4, Completed: 2, TaskSuccess: 1,
					SuccessRate: 50, SuccessRateValid: true,
					AvgDuration: 30.25, AvgDurationValid: true,
				},
			},
			contains: []string{
				"Calls Made        : 4",
				"Success Rate      : 50.0% of completed",
				"Avg Duration      : 30.2s",
			},
		},
		"UndefinedRatesRenderNA": {
			report: formatter.Report{
				Summary: models.Summary{TotalCalls: 2, CallPlaced: 2},
			},
			contains: []string{
				"Success Rate      : N/A",
				"Avg Duration      : N/A",
			},
		},
		"AttemptSection": {
			report: formatter.Report{
				Attempts: []models.AttemptStats{
					{Attempt: 1, TotalCalls: 2, PickedUp: 1, PickupRate: 50},
				},
			},
			contains: []string{
				"Nth Call Analysis",
				"attempt 1 : calls=2 picked=1",
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := formatter.FormatText(tt.report)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestFormatJSON(t *testing.T) {
	report := formatter.Report{
		Summary:  models.Summary{TotalCalls: 1, Completed: 1},
		Attempts: []models.AttemptStats{{Attempt: 1, TotalCalls: 1, PickedUp: 1, PickupRate: 100}},
	}
	var decoded formatter.Report
	require.NoError(t, json.Unmarshal([]byte(formatter.FormatJSON(report)), &decoded))
	assert.Equal(t, report, decoded)
}

func TestFormatCSVMatchesWriteAttempts(t *testing.T) {
	stats := []models.AttemptStats{{Attempt: 1, TotalCalls: 1, PickedUp: 1, PickupRate: 100, GoalSuccessOnPicked: 0}}
	var sb strings.Builder
	require.NoError(t, formatter.WriteAttempts(&sb, stats))
	assert.Equal(t, sb.String(), formatter.FormatCSV(formatter.Report{Attempts: stats}))
}
