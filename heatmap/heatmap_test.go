package heatmap_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parvayadav-star/atcsv/heatmap"
	"github.com/parvayadav-star/atcsv/models"
)

func day(d, hour int) time.Time {
	return time.Date(2024, 3, d, hour, 0, 0, 0, time.UTC)
}

func rec(number string, t time.Time, status string, completion models.TaskCompletion) models.CallRecord {
	return models.CallRecord{
		Number:         number,
		Time:           t,
		CallStatus:     status,
		TaskCompletion: completion,
		CallDate:       time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()),
	}
}

// calls builds n records for one caller, the first `completed` of them with
// completed status.
func calls(number string, n, completed int) []models.CallRecord {
	out := make([]models.CallRecord, 0, n)
	for i := 0; i < n; i++ {
		status := models.StatusCallPlaced
		if i < completed {
			status = models.StatusCompleted
		}
		out = append(out, rec(number, day(1+i/24, i%24), status, models.TaskUnknown))
	}
	return out
}

func TestBuildCompletedMode(t *testing.T) {
	// u1: 1 call, 0 completed; u2: 2 calls, 1 completed; u3: 2 calls, 2 completed.
	var records []models.CallRecord
	records = append(records, calls("u1", 1, 0)...)
	records = append(records, calls("u2", 2, 1)...)
	records = append(records, calls("u3", 2, 2)...)

	h := heatmap.Build(records, heatmap.Options{Mode: models.HeatmapCompleted})

	assert.Equal(t, []string{"1", "2"}, h.RowLabels)
	assert.Equal(t, []string{"0", "1", "2"}, h.ColLabels)

	// Row "1": one user at completed=0; completed=2 is impossible.
	row1 := h.Cells[0]
	assert.Equal(t, 100.0, row1[0].Pct)
	assert.Equal(t, 1, row1[0].Users)
	assert.False(t, row1[1].Masked)
	assert.Equal(t, 0.0, row1[1].Pct)
	assert.True(t, row1[2].Masked)

	// Row "2": u2 and u3 split 50/50 between completed=1 and completed=2.
	row2 := h.Cells[1]
	assert.Equal(t, 0.0, row2[0].Pct)
	assert.Equal(t, 50.0, row2[1].Pct)
	assert.Equal(t, 50.0, row2[2].Pct)
}

func TestBuildRowPercentagesSumTo100(t *testing.T) {
	var records []models.CallRecord
	records = append(records, calls("a", 3, 1)...)
	records = append(records, calls("b", 3, 2)...)
	records = append(records, calls("c", 3, 3)...)
	records = append(records, calls("d", 1, 1)...)

	h := heatmap.Build(records, heatmap.Options{Mode: models.HeatmapCompleted})
	for i, row := range h.Cells {
		sum := 0.0
		unmasked := 0
		for _, c := range row {
			if !c.Masked {
				sum += c.Pct
				unmasked++
			}
		}
		require.Positive(t, unmasked, "row %d has no unmasked cells", i)
		assert.InDelta(t, 100.0, sum, 1e-9, "row %s", h.RowLabels[i])
	}
}

func TestBuildTenPlusBucket(t *testing.T) {
	// 12 calls, 11 completed: both axes collapse into the 10 bucket.
	records := calls("heavy", 12, 11)
	h := heatmap.Build(records, heatmap.Options{Mode: models.HeatmapCompleted})

	assert.Equal(t, []string{"10+"}, h.RowLabels)
	assert.Equal(t, []string{"10"}, h.ColLabels)
	require.Len(t, h.Cells, 1)
	assert.False(t, h.Cells[0][0].Masked)
	assert.Equal(t, 100.0, h.Cells[0][0].Pct)
}

func TestBuildTaskSuccessMode(t *testing.T) {
	// Columns stay exact integers in task-success mode.
	var records []models.CallRecord
	// a: 1 call, 1 task-true.
	records = append(records, rec("a", day(1, 9), models.StatusCompleted, models.TaskTrue))
	// b: 2 calls, 2 task-true.
	records = append(records, rec("b", day(1, 9), models.StatusCompleted, models.TaskTrue))
	records = append(records, rec("b", day(2, 9), models.StatusCompleted, models.TaskTrue))

	h := heatmap.Build(records, heatmap.Options{Mode: models.HeatmapTaskSuccess})

	assert.Equal(t, []string{"1", "2"}, h.RowLabels)
	assert.Equal(t, []string{"1", "2"}, h.ColLabels)

	// One caller cannot have two task-true calls.
	assert.False(t, h.Cells[0][0].Masked)
	assert.Equal(t, 100.0, h.Cells[0][0].Pct)
	assert.True(t, h.Cells[0][1].Masked)
	assert.Equal(t, 100.0, h.Cells[1][1].Pct)
}

func TestBuildTaskSuccessModeExactColumnsBeyondTen(t *testing.T) {
	// 12 task-true calls keep an exact column of 12 while the row clips to
	// 10+. The 10+ bucket caps possible outcomes at 10, so the column masks.
	out := make([]models.CallRecord, 0, 12)
	for i := 0; i < 12; i++ {
		out = append(out, rec("a", day(1+i/24, i%24), models.StatusCompleted, models.TaskTrue))
	}
	h := heatmap.Build(out, heatmap.Options{Mode: models.HeatmapTaskSuccess})

	assert.Equal(t, []string{"10+"}, h.RowLabels)
	assert.Equal(t, []string{"12"}, h.ColLabels)
	assert.True(t, h.Cells[0][0].Masked)
}

func TestBuildMaskedCellsCarryNoValue(t *testing.T) {
	records := calls("u", 1, 0)
	records = append(records, calls("v", 3, 3)...)
	h := heatmap.Build(records, heatmap.Options{Mode: models.HeatmapCompleted})

	for _, row := range h.Cells {
		for _, c := range row {
			if c.Masked {
				assert.Zero(t, c.Pct)
				assert.Zero(t, c.Users)
			}
		}
	}
}

func TestDeduplicate(t *testing.T) {
	tests := map[string]struct {
		input    []models.CallRecord
		expected []string // call statuses of kept records, in order
	}{
		"KeepsCompletedOverEarlierPlaced": {
			input: []models.CallRecord{
				rec("A", day(1, 9), models.StatusCallPlaced, models.TaskUnknown),
				rec("A", day(1, 11), models.StatusCompleted, models.TaskUnknown),
			},
			expected: []string{models.StatusCompleted},
		},
		"KeepsCompletedListedFirst": {
			input: []models.CallRecord{
				rec("A", day(1, 9), models.StatusCompleted, models.TaskUnknown),
				rec("A", day(1, 11), models.StatusCallPlaced, models.TaskUnknown),
			},
			expected: []string{models.StatusCompleted},
		},
		"NoCompleted_KeepsEarliest": {
			input: []models.CallRecord{
				rec("A", day(1, 14), models.StatusCouldNotConnect, models.TaskUnknown),
				rec("A", day(1, 9), models.StatusCallPlaced, models.TaskUnknown),
			},
			expected: []string{models.StatusCallPlaced},
		},
		"EarliestCompletedAmongSeveral": {
			input: []models.CallRecord{
				rec("A", day(1, 14), models.StatusCompleted, models.TaskUnknown),
				rec("A", day(1, 9), models.StatusCompleted, models.TaskUnknown),
			},
			expected: []string{models.StatusCompleted},
		},
		"SeparateDaysKeptSeparately": {
			input: []models.CallRecord{
				rec("A", day(1, 9), models.StatusCallPlaced, models.TaskUnknown),
				rec("A", day(2, 9), models.StatusCallPlaced, models.TaskUnknown),
			},
			expected: []string{models.StatusCallPlaced, models.StatusCallPlaced},
		},
		"SeparateCallersKeptSeparately": {
			input: []models.CallRecord{
				rec("A", day(1, 9), models.StatusCallPlaced, models.TaskUnknown),
				rec("B", day(1, 9), models.StatusCompleted, models.TaskUnknown),
			},
			expected: []string{models.StatusCallPlaced, models.StatusCompleted},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := heatmap.Deduplicate(tt.input)
			statuses := make([]string, 0, len(got))
			for _, r := range got {
				statuses = append(statuses, r.CallStatus)
			}
			assert.Equal(t, tt.expected, statuses)
		})
	}
}

func TestDeduplicateEarliestCompletedKept(t *testing.T) {
	early := rec("A", day(1, 9), models.StatusCompleted, models.TaskTrue)
	late := rec("A", day(1, 14), models.StatusCompleted, models.TaskFalse)
	got := heatmap.Deduplicate([]models.CallRecord{late, early})
	require.Len(t, got, 1)
	assert.Equal(t, models.TaskTrue, got[0].TaskCompletion)
}

func TestBuildWithDeduplication(t *testing.T) {
	// Same caller, same day, three attempts with one completed: dedup
	// collapses to a single completed call, so the caller lands in the
	// (1 call, 1 completed) cell.
	records := []models.CallRecord{
		rec("A", day(1, 9), models.StatusCallPlaced, models.TaskUnknown),
		rec("A", day(1, 10), models.StatusCompleted, models.TaskUnknown),
		rec("A", day(1, 11), models.StatusCallPlaced, models.TaskUnknown),
	}
	h := heatmap.Build(records, heatmap.Options{Mode: models.HeatmapCompleted, Deduplicate: true})

	assert.Equal(t, []string{"1"}, h.RowLabels)
	assert.Equal(t, []string{"1"}, h.ColLabels)
	assert.Equal(t, 100.0, h.Cells[0][0].Pct)
}
