// Package summary computes the headline metrics shown above the fold:
// status counts, task success rate, and average connected duration.
package summary

import (
	"time"

	"github.com/parvayadav-star/atcsv/metrics"
	"github.com/parvayadav-star/atcsv/models"
)

// Summarize computes the scalar metrics over a filtered view. TaskSuccess
// counts only records whose task completion is explicitly true; Unknown is
// not False here. Zero-duration records are non-connected calls and are
// excluded from the average rather than counted as zero-valued samples.
func Summarize(records []models.CallRecord) models.Summary {
	start := time.Now()

	var s models.Summary
	s.TotalCalls = len(records)

	var durationSum float64
	var durationN int
	for _, r := range records {
		switch r.CallStatus {
		case models.StatusCallPlaced:
			s.CallPlaced++
		case models.StatusCouldNotConnect:
			s.CouldNotConnect++
		case models.StatusCompleted:
			s.Completed++
		}
		if r.TaskCompletion == models.TaskTrue {
			s.TaskSuccess++
		}
		if r.DurationSeconds > 0 {
			durationSum += r.DurationSeconds
			durationN++
		}
	}

	if s.Completed > 0 {
		s.SuccessRate = float64(s.TaskSuccess) / float64(s.Completed) * 100
		s.SuccessRateValid = true
	}
	if durationN > 0 {
		s.AvgDuration = durationSum / float64(durationN)
		s.AvgDurationValid = true
	}

	metrics.AggregationDurationSeconds.WithLabelValues("summary").Observe(time.Since(start).Seconds())
	return s
}
