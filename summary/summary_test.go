package summary_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parvayadav-star/atcsv/models"
	"github.com/parvayadav-star/atcsv/summary"
)

func rec(status string, dur float64, completion models.TaskCompletion) models.CallRecord {
	return models.CallRecord{CallStatus: status, DurationSeconds: dur, TaskCompletion: completion}
}

func TestSummarize(t *testing.T) {
	tests := map[string]struct {
		input    []models.CallRecord
		expected models.Summary
	}{
		"Empty": {
			input:    nil,
			expected: models.Summary{},
		},
		"StatusCounts_UnknownStatusTolerated": {
			input: []models.CallRecord{
				rec(models.StatusCallPlaced, 0, models.TaskUnknown),
				rec(models.StatusCouldNotConnect, 0, models.TaskUnknown),
				rec(models.StatusCompleted, 60, models.TaskUnknown),
				rec("voicemail", 10, models.TaskUnknown),
			},
			expected: models.Summary{
				TotalCalls:       4,
				CallPlaced:       1,
				CouldNotConnect:  1,
				Completed:        1,
				SuccessRate:      0,
				SuccessRateValid: true,
				AvgDuration:      35,
				AvgDurationValid: true,
			},
		},
		"SuccessRate_TaskTrueOverCompleted": {
			// 10 completed, 3 with task true: 30.0%.
			input: append(
				repeat(rec(models.StatusCompleted, 30, models.TaskTrue), 3),
				repeat(rec(models.StatusCompleted, 30, models.TaskFalse), 7)...,
			),
			expected: models.Summary{
				TotalCalls:       10,
				Completed:        10,
				TaskSuccess:      3,
				SuccessRate:      30.0,
				SuccessRateValid: true,
				AvgDuration:      30,
				AvgDurationValid: true,
			},
		},
		"SuccessRate_UndefinedWithoutCompletedCalls": {
			input: []models.CallRecord{
				// Task true on a non-completed call still counts toward
				// TaskSuccess but the rate has no denominator.
				rec(models.StatusCallPlaced, 0, models.TaskTrue),
			},
			expected: models.Summary{
				TotalCalls:  1,
				CallPlaced:  1,
				TaskSuccess: 1,
			},
		},
		"AvgDuration_ExcludesZeroDurations": {
			input: []models.CallRecord{
				rec(models.StatusCompleted, 100, models.TaskUnknown),
				rec(models.StatusCouldNotConnect, 0, models.TaskUnknown),
				rec(models.StatusCompleted, 50, models.TaskUnknown),
			},
			expected: models.Summary{
				TotalCalls:       3,
				Completed:        2,
				CouldNotConnect:  1,
				SuccessRate:      0,
				SuccessRateValid: true,
				AvgDuration:      75,
				AvgDurationValid: true,
			},
		},
		"AvgDuration_UndefinedWhenAllZero": {
			input: []models.CallRecord{
				rec(models.StatusCallPlaced, 0, models.TaskUnknown),
				rec(models.StatusCouldNotConnect, 0, models.TaskUnknown),
			},
			expected: models.Summary{
				TotalCalls:      2,
				CallPlaced:      1,
				CouldNotConnect: 1,
			},
		},
		"TaskSuccess_UnknownIsNotFalseAndNotTrue": {
			input: []models.CallRecord{
				rec(models.StatusCompleted, 10, models.TaskUnknown),
				rec(models.StatusCompleted, 10, models.TaskFalse),
				rec(models.StatusCompleted, 10, models.TaskTrue),
			},
			expected: models.Summary{
				TotalCalls:       3,
				Completed:        3,
				TaskSuccess:      1,
				SuccessRate:      100.0 / 3.0,
				SuccessRateValid: true,
				AvgDuration:      10,
				AvgDurationValid: true,
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := summary.Summarize(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func repeat(r models.CallRecord, n int) []models.CallRecord {
	out := make([]models.CallRecord, n)
	for i := range out {
		out[i] = r
	}
	return out
}
