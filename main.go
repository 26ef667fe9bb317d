package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/parvayadav-star/atcsv/attempts"
	"github.com/parvayadav-star/atcsv/config"
	"github.com/parvayadav-star/atcsv/filter"
	"github.com/parvayadav-star/atcsv/formatter"
	"github.com/parvayadav-star/atcsv/metrics"
	"github.com/parvayadav-star/atcsv/models"
	"github.com/parvayadav-star/atcsv/parser"
	"github.com/parvayadav-star/atcsv/server"
	"github.com/parvayadav-star/atcsv/store"
	"github.com/parvayadav-star/atcsv/summary"
)

func main() {
	// Define flags
	input := flag.String("input", "", "Input call log CSV file (one-shot mode)")
	format := flag.String("format", "text", "Output format: text|json|csv")
	serveMode := flag.Bool("serve", false, "Serve the analytics API over HTTP (port from config); overrides one-shot mode")
	configPath := flag.String("config", "", "Path to YAML config file (server mode)")
	useCases := flag.String("use-case", "", "Comma-separated use cases to keep (default: all)")
	statuses := flag.String("status", "", "Comma-separated call statuses to keep (default: all)")
	exclude := flag.String("exclude", "", "Comma-separated phone numbers to exclude")
	minDuration := flag.Float64("min-duration", -1, "Minimum duration in seconds, inclusive (-1 = no bound)")
	maxDuration := flag.Float64("max-duration", -1, "Maximum duration in seconds, inclusive (-1 = no bound)")
	metricsAddr := flag.String("metrics-addr", "", "Address to expose Prometheus metrics (e.g., :9090)")
	pushGateway := flag.String("push-url", "", "Pushgateway URL to push metrics to (e.g., http://localhost:9091)")
	wait := flag.Bool("wait", false, "Keep process running after completion to allow for metric scraping")

	// Parse command-line flags
	flag.Parse()

	if *serveMode {
		serve(*configPath)
		return
	}

	// Start metrics server if address provided
	if *metricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
			fmt.Printf("Metrics server listening on %s/metrics\n", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				fmt.Printf("Metrics server error: %v\n", err)
			}
		}()
	}

	// Validate required input flag
	if *input == "" {
		fmt.Println("Error: -input flag is required (or use -serve for server mode)")
		fmt.Println("\nUsage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Validate format enum
	validFormats := map[string]bool{"text": true, "json": true, "csv": true}
	if !validFormats[*format] {
		fmt.Printf("Error: format must be one of: text, json, csv (got: %s)\n", *format)
		os.Exit(1)
	}

	// Open input file
	file, err := os.Open(*input)
	if err != nil {
		fmt.Printf("Error opening file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	records, err := parser.Parse(file)
	if err != nil {
		fmt.Printf("Error parsing file: %v\n", err)
		os.Exit(1)
	}

	criteria := criteriaFromFlags(*useCases, *statuses, *exclude, *minDuration, *maxDuration)
	view := filter.Apply(records, criteria)

	report := formatter.Report{
		Summary:  summary.Summarize(view),
		Attempts: attempts.Analyze(view),
	}

	// Output based on format
	switch *format {
	case "json":
		fmt.Print(formatter.FormatJSON(report))
	case "csv":
		fmt.Print(formatter.FormatCSV(report))
	default: // "text"
		fmt.Print(formatter.FormatText(report))
	}

	// Handle metrics pushing or waiting
	if *pushGateway != "" {
		jobName := "call_analytics"
		if err := push.New(*pushGateway, jobName).Gatherer(metrics.Registry).Push(); err != nil {
			fmt.Fprintf(os.Stderr, "Error pushing to Pushgateway: %v\n", err)
		} else {
			fmt.Println("\nMetrics successfully pushed to Pushgateway")
		}
	}

	if *wait && *metricsAddr != "" {
		fmt.Println("\nProcess kept alive for metric scraping. Press Ctrl+C to exit.")
		// Wait for interrupt signal
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		fmt.Println("\nExiting...")
	} else if *metricsAddr != "" && *pushGateway == "" {
		// Small delay to allow final scrape if not waiting explicitly
		// but typically batch jobs should use pushgateway or wait
		time.Sleep(100 * time.Millisecond)
	}
}

// criteriaFromFlags maps CLI filter flags to criteria. An empty flag leaves
// its dimension unrestricted; the CLI cannot express an empty selection.
func criteriaFromFlags(useCases, statuses, exclude string, minDur, maxDur float64) models.FilterCriteria {
	var c models.FilterCriteria
	if useCases != "" {
		c.UseCases = splitFlag(useCases)
	}
	if statuses != "" {
		c.Statuses = splitFlag(statuses)
	}
	if exclude != "" {
		c.ExcludeNumbers = splitFlag(exclude)
	}
	if minDur >= 0 || maxDur >= 0 {
		dr := models.DurationRange{Min: 0, Max: math.Inf(1)}
		if minDur >= 0 {
			dr.Min = minDur
		}
		if maxDur >= 0 {
			dr.Max = maxDur
		}
		c.Duration = &dr
	}
	return c
}

func splitFlag(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func serve(configPath string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	st := store.NewMemoryStore()
	h := server.New(logger, st, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting server", slog.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
