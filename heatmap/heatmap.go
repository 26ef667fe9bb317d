// Package heatmap buckets callers by (total calls, outcome count) and
// builds row-normalized percentage matrices with structurally impossible
// cells masked out.
package heatmap

import (
	"sort"
	"strconv"
	"time"

	"github.com/parvayadav-star/atcsv/metrics"
	"github.com/parvayadav-star/atcsv/models"
)

// bucketCap is where the "10+" bucket starts: totals of 10 or more collapse
// into one bucket on the total-calls axis (and, in completed mode, on the
// outcome axis too).
const bucketCap = 10

// Options configures one heatmap build.
type Options struct {
	Mode models.HeatmapMode
	// Deduplicate keeps one record per (caller, day) before aggregating:
	// a completed call if the day has one, else the earliest.
	Deduplicate bool
}

type userSummary struct {
	total   int
	outcome int // completed calls or task-true count, depending on mode
}

// Build aggregates the filtered view into a per-caller frequency matrix and
// row-normalizes it into percentages. Cells[i][j] with Masked set represent
// combinations the data cannot produce (more successes than calls); they are
// absent from both rendering and the percentage denominator. Rows whose sum
// is zero come back fully masked rather than dividing by zero.
func Build(records []models.CallRecord, opts Options) models.Heatmap {
	start := time.Now()

	if opts.Deduplicate {
		records = Deduplicate(records)
	}

	// Per-caller totals. Keyed iteration order does not matter here because
	// rows and columns are sorted before the matrix is laid out.
	users := make(map[string]*userSummary)
	for _, r := range records {
		u, ok := users[r.Number]
		if !ok {
			u = &userSummary{}
			users[r.Number] = u
		}
		u.total++
		switch opts.Mode {
		case models.HeatmapTaskSuccess:
			if r.TaskCompletion == models.TaskTrue {
				u.outcome++
			}
		default:
			if r.CallStatus == models.StatusCompleted {
				u.outcome++
			}
		}
	}

	// Bucket both axes. The outcome axis keeps exact counts in task-success
	// mode; completed mode clips it at the 10+ bucket like the total axis.
	counts := make(map[int]map[int]int)
	rowSet := make(map[int]struct{})
	colSet := make(map[int]struct{})
	for _, u := range users {
		row := clip(u.total)
		col := u.outcome
		if opts.Mode == models.HeatmapCompleted {
			col = clip(u.outcome)
		}
		if counts[row] == nil {
			counts[row] = make(map[int]int)
		}
		counts[row][col]++
		rowSet[row] = struct{}{}
		colSet[col] = struct{}{}
	}

	rows := sortedKeys(rowSet)
	cols := sortedKeys(colSet)

	h := models.Heatmap{
		Mode:      opts.Mode,
		RowLabels: make([]string, len(rows)),
		ColLabels: make([]string, len(cols)),
		Cells:     make([][]models.HeatmapCell, len(rows)),
	}
	for j, c := range cols {
		h.ColLabels[j] = strconv.Itoa(c)
	}
	for i, rv := range rows {
		if rv >= bucketCap {
			h.RowLabels[i] = "10+"
		} else {
			h.RowLabels[i] = strconv.Itoa(rv)
		}

		rowSum := 0
		for _, c := range cols {
			rowSum += counts[rv][c]
		}

		// A caller in the 10+ bucket made at least 10 calls, so outcome
		// counts up to 10 are possible there.
		maxOutcome := rv

		cells := make([]models.HeatmapCell, len(cols))
		for j, cv := range cols {
			if cv > maxOutcome || rowSum == 0 {
				cells[j] = models.HeatmapCell{Masked: true}
				continue
			}
			n := counts[rv][cv]
			cells[j] = models.HeatmapCell{
				Users: n,
				Pct:   float64(n) / float64(rowSum) * 100,
			}
		}
		h.Cells[i] = cells
	}

	metrics.AggregationDurationSeconds.WithLabelValues("heatmap").Observe(time.Since(start).Seconds())
	return h
}

// Deduplicate keeps exactly one record per (caller, day): the completed call
// if the day has any (earliest of them), otherwise the earliest call of the
// day. Ties on time resolve to the earlier input position. Kept records come
// back in their original input order.
func Deduplicate(records []models.CallRecord) []models.CallRecord {
	type key struct {
		number string
		day    time.Time
	}
	best := make(map[key]int, len(records))
	for i, r := range records {
		k := key{r.Number, r.CallDate}
		j, ok := best[k]
		if !ok {
			best[k] = i
			continue
		}
		if better(records, i, j) {
			best[k] = i
		}
	}

	kept := make([]int, 0, len(best))
	for _, i := range best {
		kept = append(kept, i)
	}
	sort.Ints(kept)

	out := make([]models.CallRecord, len(kept))
	for n, i := range kept {
		out[n] = records[i]
	}
	return out
}

// better reports whether candidate i should replace incumbent j.
func better(records []models.CallRecord, i, j int) bool {
	ci := records[i].CallStatus == models.StatusCompleted
	cj := records[j].CallStatus == models.StatusCompleted
	if ci != cj {
		return ci
	}
	return records[i].Time.Before(records[j].Time)
}

func clip(v int) int {
	if v > bucketCap {
		return bucketCap
	}
	return v
}

func sortedKeys(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
