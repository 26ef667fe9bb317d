// Package server exposes the analytics engine over HTTP. It is the boundary
// the presentation layer talks to: upload a dataset once, then query
// aggregations against it with filter criteria supplied per request.
package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/parvayadav-star/atcsv/attempts"
	"github.com/parvayadav-star/atcsv/config"
	"github.com/parvayadav-star/atcsv/filter"
	"github.com/parvayadav-star/atcsv/formatter"
	"github.com/parvayadav-star/atcsv/heatmap"
	"github.com/parvayadav-star/atcsv/metrics"
	"github.com/parvayadav-star/atcsv/models"
	"github.com/parvayadav-star/atcsv/parser"
	"github.com/parvayadav-star/atcsv/pivot"
	"github.com/parvayadav-star/atcsv/store"
	"github.com/parvayadav-star/atcsv/summary"
)

type server struct {
	log *slog.Logger
	st  *store.MemoryStore
	cfg config.Config
}

// New builds the HTTP handler for the analytics API.
func New(log *slog.Logger, st *store.MemoryStore, cfg config.Config) http.Handler {
	s := &server{log: log, st: st, cfg: cfg}

	mux := chi.NewRouter()
	mux.Use(RequestID)
	mux.Use(Logger(log))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if cfg.MetricsEnabled {
		mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	}

	mux.Route("/datasets", func(r chi.Router) {
		r.Post("/", s.handleUpload)
		r.Get("/", s.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", s.handleDelete)
			r.Get("/summary", s.handleSummary)
			r.Get("/attempts", s.handleAttempts)
			r.Get("/attempts/export", s.handleAttemptsExport)
			r.Get("/heatmap", s.handleHeatmap)
			r.Post("/pivot", s.handlePivot)
			r.Get("/export", s.handleExport)
		})
	})

	return mux
}

type uploadResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Records  int    `json:"records"`
	Memoized bool   `json:"memoized"`
}

func (s *server) handleUpload(w http.ResponseWriter, r *http.Request) {
	raw, err := readUpload(r, s.cfg.MaxUploadBytes)
	if err != nil {
		errJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload"
	}

	hash := store.Hash(raw)
	if ds, ok := s.st.Lookup(hash); ok {
		metrics.UploadsMemoized.Inc()
		writeJSON(w, http.StatusOK, uploadResponse{ID: ds.ID, Name: ds.Name, Records: ds.Count, Memoized: true})
		return
	}

	records, err := parser.Parse(bytes.NewReader(raw))
	if err != nil {
		errJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	ds, memoized := s.st.Put(name, hash, records)
	s.log.Info("dataset loaded",
		slog.String("id", ds.ID),
		slog.String("name", ds.Name),
		slog.Int("records", ds.Count))
	writeJSON(w, http.StatusCreated, uploadResponse{ID: ds.ID, Name: ds.Name, Records: ds.Count, Memoized: memoized})
}

func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.st.List())
}

func (s *server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !s.st.Delete(chi.URLParam(r, "id")) {
		errJSON(w, http.StatusNotFound, "dataset not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleSummary(w http.ResponseWriter, r *http.Request) {
	view, ok := s.filteredView(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"filtered_count": len(view),
		"summary":        summary.Summarize(view),
	})
}

func (s *server) handleAttempts(w http.ResponseWriter, r *http.Request) {
	view, ok := s.filteredView(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"filtered_count": len(view),
		"attempts":       attempts.Analyze(view),
	})
}

func (s *server) handleAttemptsExport(w http.ResponseWriter, r *http.Request) {
	view, ok := s.filteredView(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="nth_call_analysis.csv"`)
	if err := formatter.WriteAttempts(w, attempts.Analyze(view)); err != nil {
		s.log.Error("attempts export", slog.String("err", err.Error()))
	}
}

func (s *server) handleExport(w http.ResponseWriter, r *http.Request) {
	view, ok := s.filteredView(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="filtered_calls.csv"`)
	if err := formatter.WriteRecords(w, view); err != nil {
		s.log.Error("records export", slog.String("err", err.Error()))
	}
}

func (s *server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	opts := heatmap.Options{}
	switch r.URL.Query().Get("mode") {
	case "", "completed":
		opts.Mode = models.HeatmapCompleted
	case "task_success":
		opts.Mode = models.HeatmapTaskSuccess
	default:
		errJSON(w, http.StatusBadRequest, fmt.Sprintf("unknown heatmap mode %q", r.URL.Query().Get("mode")))
		return
	}
	if v := r.URL.Query().Get("dedup"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errJSON(w, http.StatusBadRequest, fmt.Sprintf("invalid dedup value %q", v))
			return
		}
		opts.Deduplicate = b
	}

	view, ok := s.filteredView(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, heatmap.Build(view, opts))
}

type pivotRequest struct {
	Tables []pivot.Request `json:"tables"`
}

func (s *server) handlePivot(w http.ResponseWriter, r *http.Request) {
	var req pivotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errJSON(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Tables) == 0 || len(req.Tables) > pivot.MaxTables {
		errJSON(w, http.StatusBadRequest, fmt.Sprintf("configure between 1 and %d tables", pivot.MaxTables))
		return
	}

	view, ok := s.filteredView(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"filtered_count": len(view),
		"tables":         pivot.BuildAll(view, req.Tables),
	})
}

// filteredView resolves the dataset and applies the request's filter
// criteria. On failure it writes the error response and returns ok=false.
func (s *server) filteredView(w http.ResponseWriter, r *http.Request) ([]models.CallRecord, bool) {
	ds, ok := s.st.Get(chi.URLParam(r, "id"))
	if !ok {
		errJSON(w, http.StatusNotFound, "dataset not found")
		return nil, false
	}
	criteria, err := criteriaFromQuery(r.URL.Query())
	if err != nil {
		errJSON(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return filter.Apply(ds.Records, criteria), true
}

func readUpload(r *http.Request, maxBytes int64) ([]byte, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("missing multipart field %q: %w", "file", err)
		}
		defer f.Close()
		return io.ReadAll(f)
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty upload body")
	}
	return raw, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}

func errJSON(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
