// Package pivot is a small rule-driven table builder: it groups the filtered
// view by a row dimension, optionally cross-tabulates against a column
// dimension, and computes columns from a fixed calculated-field catalog.
package pivot

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/parvayadav-star/atcsv/errors"
	"github.com/parvayadav-star/atcsv/metrics"
	"github.com/parvayadav-star/atcsv/models"
)

// group holds the base aggregates every catalog metric derives from. Ratio
// metrics read these rather than requiring their operands to be selected
// alongside them.
type group struct {
	count          int
	completed      int
	couldNotConn   int
	taskTrue       int
	negSentiment   int
	durationSum    float64
	durationMax    float64
	durationMaxSet bool
}

func (g *group) add(r models.CallRecord) {
	g.count++
	switch r.CallStatus {
	case models.StatusCompleted:
		g.completed++
	case models.StatusCouldNotConnect:
		g.couldNotConn++
	}
	if r.TaskCompletion == models.TaskTrue {
		g.taskTrue++
	}
	if r.Sentiment == models.SentimentNegative {
		g.negSentiment++
	}
	g.durationSum += r.DurationSeconds
	if !g.durationMaxSet || r.DurationSeconds > g.durationMax {
		g.durationMax = r.DurationSeconds
		g.durationMaxSet = true
	}
}

// value computes one catalog metric for the group. The bool reports whether
// the metric was meaningful here; callers render 0 when it was not. The
// zero-on-inapplicable fallback is a deliberate display choice.
func (g *group) value(m models.MetricKind) (float64, bool) {
	switch m {
	case models.MetricCount:
		return float64(g.count), true
	case models.MetricCompletedCalls:
		return float64(g.completed), true
	case models.MetricCouldNotConnect:
		return float64(g.couldNotConn), true
	case models.MetricTaskSuccessCount:
		return float64(g.taskTrue), true
	case models.MetricNegativeSentiment:
		return float64(g.negSentiment), true
	case models.MetricTotalDuration:
		return g.durationSum, true
	case models.MetricMaxDuration:
		return g.durationMax, g.durationMaxSet
	case models.MetricAvgDuration:
		if g.count == 0 {
			return 0, false
		}
		return g.durationSum / float64(g.count), true
	case models.MetricPickupRate:
		if g.count == 0 {
			return 0, false
		}
		return float64(g.completed) / float64(g.count) * 100, true
	case models.MetricTaskSuccessPct:
		if g.completed == 0 {
			return 0, false
		}
		return float64(g.taskTrue) / float64(g.completed) * 100, true
	default:
		return 0, false
	}
}

// Request is one table configuration as supplied by the UI layer, with the
// row/column dimensions and metrics given by display name.
type Request struct {
	Row     string   `json:"row"`
	Col     string   `json:"col,omitempty"`
	Metrics []string `json:"metrics"`
}

// MaxTables bounds how many tables one request may configure.
const MaxTables = 5

// BuildAll resolves and computes every configured table independently. A
// table whose configuration cannot produce output gets an inline Message in
// its result slot; siblings are unaffected.
func BuildAll(records []models.CallRecord, reqs []Request) []models.PivotResult {
	start := time.Now()

	out := make([]models.PivotResult, len(reqs))
	for i, req := range reqs {
		var res models.PivotResult
		spec, err := req.toSpec()
		if err != nil {
			res = models.PivotResult{Message: err.Error()}
		} else {
			res = Build(records, spec)
		}
		res.Title = fmt.Sprintf("Table %d", i+1)
		if res.Message != "" {
			metrics.PivotTablesSkipped.Inc()
		} else {
			metrics.PivotTablesBuilt.Inc()
		}
		out[i] = res
	}

	metrics.AggregationDurationSeconds.WithLabelValues("pivot").Observe(time.Since(start).Seconds())
	return out
}

// toSpec resolves display names to the typed spec. Unknown names are a
// per-table configuration problem, not a request-level error.
func (r Request) toSpec() (models.PivotSpec, error) {
	spec := models.PivotSpec{RowDim: models.ParseDimension(r.Row)}
	if spec.RowDim == models.DimNone {
		return spec, fmt.Errorf("%w: %q", errors.ErrUnknownDimension, r.Row)
	}
	if r.Col != "" {
		spec.ColDim = models.ParseDimension(r.Col)
		if spec.ColDim == models.DimNone {
			return spec, fmt.Errorf("%w: %q", errors.ErrUnknownDimension, r.Col)
		}
	}
	for _, name := range r.Metrics {
		m, ok := models.ParseMetricKind(name)
		if !ok {
			return spec, fmt.Errorf("%w: %q", errors.ErrUnknownMetric, name)
		}
		spec.Metrics = append(spec.Metrics, m)
	}
	return spec, nil
}

// Build computes a single table. Configuration problems come back as an
// informational Message on the result, never as an error.
func Build(records []models.CallRecord, spec models.PivotSpec) models.PivotResult {
	if spec.RowDim == models.DimNone {
		return models.PivotResult{Message: "no row variable selected"}
	}
	if len(spec.Metrics) == 0 {
		return models.PivotResult{Message: "please select at least one metric"}
	}
	if spec.ColDim != models.DimNone {
		if spec.ColDim == spec.RowDim {
			return models.PivotResult{Message: "row and column variables must differ"}
		}
		for _, m := range spec.Metrics {
			if m != models.MetricCount {
				return models.PivotResult{
					Message: "pivot tables with a column variable currently support the Count metric only",
				}
			}
		}
		return crosstab(records, spec.RowDim, spec.ColDim)
	}
	return grouped(records, spec.RowDim, spec.Metrics)
}

func grouped(records []models.CallRecord, dim models.Dimension, ms []models.MetricKind) models.PivotResult {
	groups := make(map[string]*group)
	for _, r := range records {
		label := dimValue(r, dim)
		g, ok := groups[label]
		if !ok {
			g = &group{}
			groups[label] = g
		}
		g.add(r)
	}

	res := models.PivotResult{
		Columns: make([]string, 0, len(ms)+1),
	}
	res.Columns = append(res.Columns, dim.String())
	for _, m := range ms {
		res.Columns = append(res.Columns, m.String())
	}

	for _, label := range sortLabels(keys(groups), dim) {
		g := groups[label]
		row := models.PivotRow{Label: label, Values: make([]float64, len(ms))}
		for i, m := range ms {
			if v, ok := g.value(m); ok {
				row.Values[i] = v
			}
		}
		res.Rows = append(res.Rows, row)
	}
	return res
}

// crosstab builds a row x column count table with a Total row and column.
func crosstab(records []models.CallRecord, rowDim, colDim models.Dimension) models.PivotResult {
	counts := make(map[string]map[string]int)
	colSet := make(map[string]struct{})
	for _, r := range records {
		rl, cl := dimValue(r, rowDim), dimValue(r, colDim)
		if counts[rl] == nil {
			counts[rl] = make(map[string]int)
		}
		counts[rl][cl]++
		colSet[cl] = struct{}{}
	}

	cols := sortLabels(keys(colSet), colDim)
	rows := sortLabels(keys(counts), rowDim)

	res := models.PivotResult{
		Columns: append([]string{rowDim.String()}, append(append([]string{}, cols...), "Total")...),
	}

	colTotals := make([]float64, len(cols))
	for _, rl := range rows {
		values := make([]float64, len(cols)+1)
		rowTotal := 0
		for j, cl := range cols {
			n := counts[rl][cl]
			values[j] = float64(n)
			colTotals[j] += float64(n)
			rowTotal += n
		}
		values[len(cols)] = float64(rowTotal)
		res.Rows = append(res.Rows, models.PivotRow{Label: rl, Values: values})
	}

	grand := 0.0
	totalRow := models.PivotRow{Label: "Total", Values: make([]float64, len(cols)+1)}
	for j, t := range colTotals {
		totalRow.Values[j] = t
		grand += t
	}
	totalRow.Values[len(cols)] = grand
	res.Rows = append(res.Rows, totalRow)
	return res
}

// dimValue renders the grouping label a record contributes to for a
// dimension.
func dimValue(r models.CallRecord, d models.Dimension) string {
	switch d {
	case models.DimUseCase:
		return r.UseCase
	case models.DimCallStatus:
		return r.CallStatus
	case models.DimTaskCompletion:
		return r.TaskCompletion.String()
	case models.DimSentiment:
		return r.Sentiment.String()
	case models.DimHour:
		return strconv.Itoa(r.Hour)
	case models.DimDayOfWeek:
		return r.DayOfWeek
	default:
		return ""
	}
}

// sortLabels orders group labels for display: numerically for Hour,
// lexically otherwise.
func sortLabels(labels []string, d models.Dimension) []string {
	if d == models.DimHour {
		sort.Slice(labels, func(i, j int) bool {
			a, _ := strconv.Atoi(labels[i])
			b, _ := strconv.Atoi(labels[j])
			return a < b
		})
		return labels
	}
	sort.Strings(labels)
	return labels
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
