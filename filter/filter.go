// Package filter applies a conjunction of predicate filters to a call log,
// producing the filtered view every aggregation works from.
package filter

import (
	"github.com/parvayadav-star/atcsv/models"
)

// Apply returns the records passing every predicate in c, preserving input
// order. The input slice is never modified. An empty (non-nil) multiselect
// matches nothing; a nil one leaves its dimension unrestricted. Number
// exclusion is checked last, after the category and range predicates.
func Apply(records []models.CallRecord, c models.FilterCriteria) []models.CallRecord {
	excluded := make(map[string]struct{}, len(c.ExcludeNumbers))
	for _, n := range c.ExcludeNumbers {
		excluded[n] = struct{}{}
	}

	out := make([]models.CallRecord, 0, len(records))
	for _, r := range records {
		if !c.UseCases.Allows(r.UseCase) {
			continue
		}
		if !c.Statuses.Allows(r.CallStatus) {
			continue
		}
		if !c.Completions.Allows(r.TaskCompletion) {
			continue
		}
		if c.Duration != nil && (r.DurationSeconds < c.Duration.Min || r.DurationSeconds > c.Duration.Max) {
			continue
		}
		if _, ok := excluded[r.Number]; ok {
			continue
		}
		out = append(out, r)
	}
	return out
}
