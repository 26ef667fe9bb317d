// Package attempts assigns each call its 1-based position within its
// caller's history and aggregates outcomes by attempt number.
package attempts

import (
	"sort"
	"time"

	"github.com/parvayadav-star/atcsv/metrics"
	"github.com/parvayadav-star/atcsv/models"
)

// Number returns the attempt number for each record of the input, positionally
// aligned with it: out[i] is the attempt index of records[i]. Records are
// ordered per caller by ascending time, ties broken by input order, so the
// assignment is deterministic. Numbering is relative to the slice it is given;
// callers pass the filtered view, which makes attempt indexes relative to
// what is currently in view rather than the full history.
func Number(records []models.CallRecord) []int {
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := records[order[a]], records[order[b]]
		if ra.Number != rb.Number {
			return ra.Number < rb.Number
		}
		return ra.Time.Before(rb.Time)
	})

	out := make([]int, len(records))
	next := make(map[string]int, len(records))
	for _, idx := range order {
		n := records[idx].Number
		next[n]++
		out[idx] = next[n]
	}
	return out
}

// Analyze pools records sharing the same attempt number across all callers
// and computes outcome rates per attempt. The result is ordered by ascending
// attempt number with one row per observed attempt; gaps are not filled.
// The total-calls column sums to len(records).
func Analyze(records []models.CallRecord) []models.AttemptStats {
	start := time.Now()

	byAttempt := make(map[int]*models.AttemptStats)
	for i, n := range Number(records) {
		st, ok := byAttempt[n]
		if !ok {
			st = &models.AttemptStats{Attempt: n}
			byAttempt[n] = st
		}
		r := records[i]
		st.TotalCalls++
		if r.CallStatus == models.StatusCompleted {
			st.PickedUp++
		}
		if r.TaskCompletion == models.TaskTrue {
			st.GoalMet++
		}
		if r.Sentiment == models.SentimentNegative {
			st.NegativeSentiment++
		}
	}

	out := make([]models.AttemptStats, 0, len(byAttempt))
	for _, st := range byAttempt {
		st.PickupRate = float64(st.PickedUp) / float64(st.TotalCalls) * 100
		// Zero picked-up calls display as 0% goal success, not as missing data.
		if st.PickedUp > 0 {
			st.GoalSuccessOnPicked = float64(st.GoalMet) / float64(st.PickedUp) * 100
		}
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Attempt < out[j].Attempt })

	metrics.AggregationDurationSeconds.WithLabelValues("attempts").Observe(time.Since(start).Seconds())
	return out
}
