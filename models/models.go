package models

import (
	"strings"
	"time"
)

// Call statuses the analytics care about. Other values are tolerated and
// simply never match these buckets.
const (
	StatusCallPlaced      = "call_placed"
	StatusCouldNotConnect = "could_not_connect"
	StatusCompleted       = "completed"
)

// TaskCompletion is the three-valued outcome of the Analysis.task_completion
// column. Unknown is distinct from False and must never be folded into it
// when computing success rates.
type TaskCompletion int

const (
	TaskUnknown TaskCompletion = iota
	TaskFalse
	TaskTrue
)

func (t TaskCompletion) String() string {
	switch t {
	case TaskTrue:
		return "true"
	case TaskFalse:
		return "false"
	default:
		return "n.a"
	}
}

// ParseTaskCompletion maps raw text to a TaskCompletion. Only explicit
// "true"/"false" (case-insensitive) are recognized; everything else,
// including empty and placeholder values, is Unknown.
func ParseTaskCompletion(s string) TaskCompletion {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return TaskTrue
	case "false":
		return TaskFalse
	default:
		return TaskUnknown
	}
}

// Sentiment is the normalized Analysis.user_sentiment value.
type Sentiment int

const (
	SentimentUnknown Sentiment = iota
	SentimentPositive
	SentimentNeutral
	SentimentNegative
)

func (s Sentiment) String() string {
	switch s {
	case SentimentPositive:
		return "positive"
	case SentimentNeutral:
		return "neutral"
	case SentimentNegative:
		return "negative"
	default:
		return "n.a"
	}
}

// ParseSentiment normalizes raw sentiment text. Placeholders ("n.a", "-",
// "nan") and unrecognized values become Unknown.
func ParseSentiment(s string) Sentiment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return SentimentPositive
	case "neutral":
		return SentimentNeutral
	case "negative":
		return SentimentNegative
	default:
		return SentimentUnknown
	}
}

// CallRecord is one normalized row of the uploaded call log.
type CallRecord struct {
	Number          string         `json:"number"`
	Time            time.Time      `json:"time"`
	UseCase         string         `json:"use_case"`
	CallStatus      string         `json:"call_status"`
	DurationSeconds float64        `json:"duration_seconds"`
	TaskCompletion  TaskCompletion `json:"task_completion"`
	Sentiment       Sentiment      `json:"user_sentiment"`

	// Derived from Time during ingestion.
	CallDate  time.Time `json:"call_date"`
	Hour      int       `json:"hour"`
	DayOfWeek string    `json:"day_of_week"`
}

// Selection is a multiselect filter value. A nil Selection leaves the
// dimension unrestricted; an empty non-nil Selection matches nothing.
type Selection []string

func (s Selection) Allows(v string) bool {
	if s == nil {
		return true
	}
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// CompletionSelection is a multiselect over the three task-completion states.
// Nil means unrestricted, empty matches nothing.
type CompletionSelection []TaskCompletion

func (s CompletionSelection) Allows(v TaskCompletion) bool {
	if s == nil {
		return true
	}
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// DurationRange is an inclusive [Min, Max] bound on DurationSeconds.
type DurationRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FilterCriteria is the conjunction of all sidebar filters. A record passes
// only if it satisfies every predicate.
type FilterCriteria struct {
	UseCases       Selection           `json:"use_cases"`
	Statuses       Selection           `json:"statuses"`
	Completions    CompletionSelection `json:"completions"`
	Duration       *DurationRange      `json:"duration,omitempty"`
	ExcludeNumbers []string            `json:"exclude_numbers,omitempty"`
}

// Summary holds the headline metrics for a filtered view. SuccessRate and
// AvgDuration are only meaningful when their Valid flag is set; consumers
// render "N/A" otherwise.
type Summary struct {
	TotalCalls       int     `json:"total_calls"`
	CallPlaced       int     `json:"call_placed"`
	CouldNotConnect  int     `json:"could_not_connect"`
	Completed        int     `json:"completed"`
	TaskSuccess      int     `json:"task_success"`
	SuccessRate      float64 `json:"success_rate"`
	SuccessRateValid bool    `json:"success_rate_valid"`
	AvgDuration      float64 `json:"avg_duration"`
	AvgDurationValid bool    `json:"avg_duration_valid"`
}

// AttemptStats aggregates all records sharing the same attempt number,
// pooled across callers.
type AttemptStats struct {
	Attempt           int     `json:"attempt"`
	TotalCalls        int     `json:"total_calls"`
	PickedUp          int     `json:"picked_up"`
	GoalMet           int     `json:"goal_met"`
	NegativeSentiment int     `json:"negative_sentiment"`
	PickupRate        float64 `json:"pickup_rate"`
	// GoalSuccessOnPicked is 0 (not undefined) when PickedUp is 0. That is a
	// display choice, not a missing-data marker.
	GoalSuccessOnPicked float64 `json:"goal_success_on_picked"`
}

// HeatmapMode selects which per-user outcome the heatmap columns count.
type HeatmapMode int

const (
	// HeatmapCompleted buckets users by (total calls, completed calls).
	HeatmapCompleted HeatmapMode = iota
	// HeatmapTaskSuccess buckets users by (total calls, task-true count)
	// with exact integer columns.
	HeatmapTaskSuccess
)

// HeatmapCell is one cell of the row-normalized percentage matrix. Masked
// cells are structurally impossible combinations and carry no value.
type HeatmapCell struct {
	Masked bool    `json:"masked"`
	Users  int     `json:"users"`
	Pct    float64 `json:"pct"`
}

// Heatmap is the full matrix with its axis labels. Cells[i][j] corresponds
// to RowLabels[i] and ColLabels[j].
type Heatmap struct {
	Mode      HeatmapMode     `json:"mode"`
	RowLabels []string        `json:"row_labels"`
	ColLabels []string        `json:"col_labels"`
	Cells     [][]HeatmapCell `json:"cells"`
}

// Dimension is a categorical grouping axis for the table builder.
type Dimension int

const (
	DimNone Dimension = iota
	DimUseCase
	DimCallStatus
	DimTaskCompletion
	DimSentiment
	DimHour
	DimDayOfWeek
)

func (d Dimension) String() string {
	switch d {
	case DimUseCase:
		return "Use Case"
	case DimCallStatus:
		return "Call Status"
	case DimTaskCompletion:
		return "Task Completion"
	case DimSentiment:
		return "User Sentiment"
	case DimHour:
		return "Hour"
	case DimDayOfWeek:
		return "Day of Week"
	default:
		return ""
	}
}

// ParseDimension resolves a dimension from its display name or a snake_case
// alias. Returns DimNone for unknown names.
func ParseDimension(s string) Dimension {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "use case", "use_case":
		return DimUseCase
	case "call status", "call_status":
		return DimCallStatus
	case "task completion", "task_completion":
		return DimTaskCompletion
	case "user sentiment", "user_sentiment", "sentiment":
		return DimSentiment
	case "hour":
		return DimHour
	case "day of week", "day_of_week", "dayofweek":
		return DimDayOfWeek
	default:
		return DimNone
	}
}

// MetricKind enumerates the fixed calculated-field catalog of the table
// builder. Each kind knows its base field and aggregation; a kind that does
// not apply to a group yields 0, never an error.
type MetricKind int

const (
	MetricCount MetricKind = iota
	MetricCompletedCalls
	MetricCouldNotConnect
	MetricTaskSuccessCount
	MetricTaskSuccessPct
	MetricAvgDuration
	MetricTotalDuration
	MetricMaxDuration
	MetricNegativeSentiment
	MetricPickupRate
)

func (m MetricKind) String() string {
	switch m {
	case MetricCount:
		return "Count"
	case MetricCompletedCalls:
		return "Completed Calls"
	case MetricCouldNotConnect:
		return "Could Not Connect"
	case MetricTaskSuccessCount:
		return "Task Success Count"
	case MetricTaskSuccessPct:
		return "Task Success %"
	case MetricAvgDuration:
		return "Avg Duration (s)"
	case MetricTotalDuration:
		return "Total Duration (s)"
	case MetricMaxDuration:
		return "Max Duration (s)"
	case MetricNegativeSentiment:
		return "Negative Sentiment"
	case MetricPickupRate:
		return "Pickup Rate %"
	default:
		return ""
	}
}

// ParseMetricKind resolves a catalog metric from its display name. The bool
// reports whether the name was recognized.
func ParseMetricKind(s string) (MetricKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "count":
		return MetricCount, true
	case "completed calls":
		return MetricCompletedCalls, true
	case "could not connect":
		return MetricCouldNotConnect, true
	case "task success count":
		return MetricTaskSuccessCount, true
	case "task success %":
		return MetricTaskSuccessPct, true
	case "avg duration", "avg duration (s)":
		return MetricAvgDuration, true
	case "total duration", "total duration (s)":
		return MetricTotalDuration, true
	case "max duration", "max duration (s)":
		return MetricMaxDuration, true
	case "negative sentiment count", "negative sentiment":
		return MetricNegativeSentiment, true
	case "pickup rate %":
		return MetricPickupRate, true
	default:
		return MetricCount, false
	}
}

// PivotSpec configures one table: a row dimension, an optional column
// dimension (DimNone when unused), and an ordered metric list.
type PivotSpec struct {
	RowDim  Dimension
	ColDim  Dimension
	Metrics []MetricKind
}

// PivotRow is one output row of a built table.
type PivotRow struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// PivotResult is a built table, or an inline message when the configuration
// could not produce one. A non-empty Message never aborts sibling tables.
type PivotResult struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns,omitempty"`
	Rows    []PivotRow `json:"rows,omitempty"`
	Message string     `json:"message,omitempty"`
}
