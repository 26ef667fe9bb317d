// Package metrics provides Prometheus observability metrics for the call
// analytics engine: ingestion health, dataset inventory, and aggregation
// latency.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// ParserRecordsTotal tracks total records successfully normalized.
var ParserRecordsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "records_total",
	Help:      "Total CSV records successfully parsed and normalized",
})

// ParserErrorsTotal tracks fatal ingestion errors by error type.
var ParserErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "errors_total",
	Help:      "Total fatal ingestion errors by error type",
}, []string{"error_type"})

// ParseDurationSeconds tracks time to parse an uploaded file.
var ParseDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "parser",
	Name:      "duration_seconds",
	Help:      "Time taken to parse an uploaded CSV file",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
})

// DatasetsLoaded tracks the number of datasets currently held in memory.
var DatasetsLoaded = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "store",
	Name:      "datasets_loaded",
	Help:      "Number of datasets currently held in the session store",
})

// RecordsLoaded tracks the total records across all loaded datasets.
var RecordsLoaded = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "store",
	Name:      "records_loaded",
	Help:      "Total call records across all loaded datasets",
})

// UploadsMemoized counts uploads answered from the content-hash cache
// without re-parsing.
var UploadsMemoized = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "store",
	Name:      "uploads_memoized_total",
	Help:      "Uploads that matched an already-loaded dataset by content hash",
})

// AggregationDurationSeconds tracks recomputation latency per stage
// (summary, attempts, heatmap, pivot).
var AggregationDurationSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "analytics",
	Name:      "aggregation_duration_seconds",
	Help:      "Time taken to recompute an aggregation stage over the filtered view",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
}, []string{"stage"})

// PivotTablesBuilt counts tables successfully produced by the table builder.
var PivotTablesBuilt = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "analytics",
	Name:      "pivot_tables_built_total",
	Help:      "Pivot tables successfully built",
})

// PivotTablesSkipped counts table configurations rejected with an
// informational message.
var PivotTablesSkipped = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "analytics",
	Name:      "pivot_tables_skipped_total",
	Help:      "Pivot table configurations that produced a message instead of a table",
})

// HTTPRequestsTotal counts API requests by route pattern and status code.
var HTTPRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "http",
	Name:      "requests_total",
	Help:      "API requests by route pattern and status code",
}, []string{"route", "code"})
