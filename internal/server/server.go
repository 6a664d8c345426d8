package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/iwvelando/sales-analytics/internal/config"
	"github.com/iwvelando/sales-analytics/internal/dataset"
	"github.com/iwvelando/sales-analytics/internal/observability"
	"github.com/iwvelando/sales-analytics/internal/report"
	"github.com/iwvelando/sales-analytics/pkg/output"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"
)

//go:embed static/*
var staticFiles embed.FS

// Options wires the handler to its collaborators. Dataset is required.
type Options struct {
	Logger   *zap.Logger
	Dataset  *dataset.Dataset
	Report   report.Options
	Config   *Config
	Metrics  *observability.Metrics
	Version  string
	Settings *config.Configuration
}

type handler struct {
	logger   *zap.Logger
	dataset  *dataset.Dataset
	opts     report.Options
	cfg      *Config
	metrics  *observability.Metrics
	version  string
	settings *config.Configuration
	group    singleflight.Group
}

// NewHandler constructs the HTTP handler that serves the web UI and report API.
func NewHandler(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg, _ = NewConfig(config.ServerConfig{})
	}
	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:   logger,
		dataset:  opts.Dataset,
		opts:     opts.Report,
		cfg:      cfg,
		metrics:  opts.Metrics,
		version:  trimmedVersion,
		settings: opts.Settings,
	}
	opts.Metrics.SetDatasetRows(opts.Dataset.Len())

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(secureMiddleware.Handler)
	r.Use(opts.Metrics.Middleware)

	r.Get("/healthz", h.handleHealth)
	r.Get("/api/version", h.handleVersion)
	r.Handle("/metrics", opts.Metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(cfg.RateLimitPerMinute, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				h.respondError(w, r, http.StatusTooManyRequests, "rate limit exceeded", "server.rateLimit")
			}),
		))
		r.Get("/api/filters", h.handleFilters)
		r.Get("/api/report", h.handleReportQuery)
		r.Post("/api/report", h.handleReportBody)
		r.Get("/api/report.csv", h.handleReportCSV)
		r.Get("/api/config.yaml", h.handleConfigExport)
	})

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	r.Handle("/*", http.FileServer(http.FS(sub)))

	return r
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"rows":   h.dataset.Len(),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

type filtersResponse struct {
	report.Filters
	DefaultSelection  report.Selection   `json:"defaultSelection"`
	DefaultComparison *report.Comparison `json:"defaultComparison,omitempty"`
}

// handleFilters lists every year and category, with the drill categories of
// the rows the default selection keeps.
func (h *handler) handleFilters(w http.ResponseWriter, r *http.Request) {
	sel := report.DefaultSelection(h.dataset)
	h.writeJSON(w, http.StatusOK, filtersResponse{
		Filters:           report.FilterOptions(h.dataset, sel.Apply(h.dataset)),
		DefaultSelection:  sel,
		DefaultComparison: report.DefaultComparison(h.dataset),
	})
}

func (h *handler) handleReportQuery(w http.ResponseWriter, r *http.Request) {
	sel, err := h.selectionFromQuery(r)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error(), "server.handleReportQuery")
		return
	}
	h.serveReport(w, r, sel, "server.handleReportQuery", func(rep *report.Report) {
		h.writeJSON(w, http.StatusOK, rep)
	})
}

func (h *handler) handleReportBody(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleReportBody"
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.RequestSizeBytes())

	var sel report.Selection
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(&sel)
	switch {
	case errors.Is(err, io.EOF):
		sel = report.DefaultSelection(h.dataset)
	case err != nil:
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.cfg.RequestSizeBytes()), op)
			return
		}
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode selection: %v", err), op)
		return
	}

	h.serveReport(w, r, sel, op, func(rep *report.Report) {
		h.writeJSON(w, http.StatusOK, rep)
	})
}

func (h *handler) handleReportCSV(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleReportCSV"
	sel, err := h.selectionFromQuery(r)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}
	h.serveReport(w, r, sel, op, func(rep *report.Report) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"reporte-%s.csv\"", rep.ID))
		if err := output.CSV(w, rep); err != nil {
			h.logger.Error("failed to write CSV response", zap.String("op", op), zap.Error(err))
		}
	})
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigExport"
	if h.settings == nil {
		h.respondError(w, r, http.StatusNotFound, "configuration export is not available", op)
		return
	}

	redacted := *h.settings
	if redacted.Data.DSN != "" {
		redacted.Data.DSN = "********"
	}
	body, err := yaml.Marshal(redacted)
	if err != nil {
		h.respondError(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// serveReport builds the report for sel, coalescing identical selections in
// flight, and hands it to write.
func (h *handler) serveReport(w http.ResponseWriter, r *http.Request, sel report.Selection, op string, write func(*report.Report)) {
	start := time.Now()
	rep, err := h.buildReport(r.Context(), sel)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, report.ErrInvalidSelection):
			status = http.StatusBadRequest
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			status = http.StatusServiceUnavailable
		}
		h.respondError(w, r, status, err.Error(), op)
		return
	}

	h.logger.Info("report served",
		zap.String("op", op),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("report_id", rep.ID),
		zap.Int("notices", len(rep.Notices)),
		zap.Duration("elapsed", time.Since(start)),
	)
	write(rep)
}

func (h *handler) buildReport(ctx context.Context, sel report.Selection) (*report.Report, error) {
	resultChan := h.group.DoChan(sel.Key(), func() (interface{}, error) {
		start := time.Now()
		rep, err := report.Build(h.logger, h.dataset, sel, h.opts)
		h.metrics.ObserveReport(time.Since(start), err)
		return rep, err
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			h.metrics.ReportShared()
		}
		return withSelection(res.Val.(*report.Report), sel), nil
	}
}

// withSelection returns a copy of rep echoing sel. Selections that differ only
// in order share a key, so a coalesced report may carry another caller's.
func withSelection(rep *report.Report, sel report.Selection) *report.Report {
	out := *rep
	out.Selection = sel
	return &out
}

// selectionFromQuery reads years, categories, growthYear, compare and drill.
// A request without any of them gets the default selection.
func (h *handler) selectionFromQuery(r *http.Request) (report.Selection, error) {
	q := r.URL.Query()
	if len(q) == 0 {
		return report.DefaultSelection(h.dataset), nil
	}

	var sel report.Selection
	for _, raw := range q["years"] {
		years, err := report.ParseYears(raw)
		if err != nil {
			return sel, err
		}
		sel.Years = append(sel.Years, years...)
	}
	for _, raw := range q["categories"] {
		if c := strings.TrimSpace(raw); c != "" {
			sel.Categories = append(sel.Categories, c)
		}
	}
	if raw := strings.TrimSpace(q.Get("growthYear")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return sel, fmt.Errorf("%w: invalid growthYear %q", report.ErrInvalidSelection, raw)
		}
		sel.GrowthYear = year
	}
	cmp, err := report.ParseComparison(q.Get("compare"))
	if err != nil {
		return sel, err
	}
	sel.Compare = cmp
	sel.DrillCategory = q.Get("drill")
	return sel, nil
}

func (h *handler) respondError(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

// Run serves handler on cfg.Address until ctx is cancelled, then shuts the
// server down gracefully.
func Run(ctx context.Context, logger *zap.Logger, cfg *Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("op", "server.Run"), zap.String("address", cfg.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down", zap.String("op", "server.Run"))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
