package server

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/parvayadav-star/atcsv/models"
)

// criteriaFromQuery builds filter criteria from query parameters. An absent
// multiselect parameter leaves its dimension unrestricted; a present-but-
// empty one is an explicit empty selection and matches nothing, matching the
// dashboard's multiselect semantics.
//
// Parameters: use_case, status, completion, exclude (comma-separated lists),
// min_duration, max_duration (inclusive bounds, seconds).
func criteriaFromQuery(v url.Values) (models.FilterCriteria, error) {
	var c models.FilterCriteria

	if _, ok := v["use_case"]; ok {
		c.UseCases = splitList(v.Get("use_case"))
	}
	if _, ok := v["status"]; ok {
		c.Statuses = splitList(v.Get("status"))
	}
	if _, ok := v["completion"]; ok {
		c.Completions = models.CompletionSelection{}
		for _, s := range splitList(v.Get("completion")) {
			c.Completions = append(c.Completions, models.ParseTaskCompletion(s))
		}
	}
	if raw := v.Get("exclude"); raw != "" {
		c.ExcludeNumbers = splitList(v.Get("exclude"))
	}

	_, hasMin := v["min_duration"]
	_, hasMax := v["max_duration"]
	if hasMin || hasMax {
		dr := models.DurationRange{Min: 0, Max: math.Inf(1)}
		if hasMin {
			f, err := strconv.ParseFloat(v.Get("min_duration"), 64)
			if err != nil {
				return c, fmt.Errorf("invalid min_duration %q", v.Get("min_duration"))
			}
			dr.Min = f
		}
		if hasMax {
			f, err := strconv.ParseFloat(v.Get("max_duration"), 64)
			if err != nil {
				return c, fmt.Errorf("invalid max_duration %q", v.Get("max_duration"))
			}
			dr.Max = f
		}
		c.Duration = &dr
	}

	return c, nil
}

// splitList parses a comma-separated parameter into a non-nil selection.
// Blank entries are dropped, so "a,,b" and "a,b" are the same selection and
// "" is the empty one.
func splitList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
