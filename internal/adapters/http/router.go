package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MagicMike0112/Project-Study-BSH/internal/config"
	"github.com/MagicMike0112/Project-Study-BSH/internal/core/ports"
	"github.com/MagicMike0112/Project-Study-BSH/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	cfg       config.Config
	scanner   ports.InventoryScanner
	expiry    ports.ExpiryPredictor
	exporter  ports.InventoryExporter
	submitter ports.ScanJobSubmitter
	jobs      ports.ScanJobReader
	metrics   *metrics.HTTPServerMetrics
	logger    *slog.Logger
}

type Option func(*Router)

// WithScanJobs enables the asynchronous scan endpoints.
func WithScanJobs(submitter ports.ScanJobSubmitter, jobs ports.ScanJobReader) Option {
	return func(rt *Router) {
		rt.submitter = submitter
		rt.jobs = jobs
	}
}

func WithMetrics(m *metrics.HTTPServerMetrics) Option {
	return func(rt *Router) { rt.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(rt *Router) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

func NewRouter(
	cfg config.Config,
	scanner ports.InventoryScanner,
	expiry ports.ExpiryPredictor,
	exporter ports.InventoryExporter,
	opts ...Option,
) *Router {
	rt := &Router{
		cfg:      cfg,
		scanner:  scanner,
		expiry:   expiry,
		exporter: exporter,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	api := mux.NewRouter()
	api.HandleFunc("/v1/inventory/scan", rt.scanInventory).Methods(http.MethodPost)
	api.HandleFunc("/v1/inventory/scan/export", rt.exportInventoryScan).Methods(http.MethodPost)
	api.HandleFunc("/v1/inventory/expiry", rt.predictExpiry).Methods(http.MethodPost)
	api.HandleFunc("/v1/scan-jobs", rt.submitScanJob).Methods(http.MethodPost)
	api.HandleFunc("/v1/scan-jobs/{id}", rt.getScanJob).Methods(http.MethodGet)
	api.HandleFunc("/v1/scan-jobs/{id}/export", rt.exportScanJob).Methods(http.MethodGet)

	var v1 http.Handler = api
	if rt.cfg.APIRequestValidationEnabled {
		if validator, err := loadOpenAPIRouter(); err != nil {
			rt.logger.Error("http.openapi.disabled", "error", err)
		} else {
			v1 = requestValidationMiddleware(v1, validator)
		}
	}
	v1 = bodyLimitMiddleware(v1, maxBodyBytes(rt.cfg))
	v1 = backpressureMiddleware(v1, rt.cfg.APIBackpressureMaxInFlight, rt.cfg.APIBackpressureWait, rt.recordRejected)
	v1 = rateLimitMiddleware(v1, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.recordRejected)

	root := mux.NewRouter()
	root.HandleFunc("/healthz", rt.healthz).Methods(http.MethodGet)
	root.HandleFunc("/openapi.yaml", serveOpenAPI).Methods(http.MethodGet)
	if rt.metrics != nil {
		root.Handle("/metrics", rt.metrics.Handler()).Methods(http.MethodGet)
	}
	root.PathPrefix("/v1/").Handler(v1)

	var handler http.Handler = root
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) recordRejected(reason string) {
	if rt.metrics != nil {
		rt.metrics.RecordRejected(serviceName, reason)
	}
}

// maxBodyBytes leaves room for every image at its base64 size plus text.
func maxBodyBytes(cfg config.Config) int64 {
	images := max(cfg.MaxScanImages, 1)
	perImage := max(cfg.MaxImageBytes, 1<<20)
	return int64(images)*int64(perImage)*4/3 + 2<<20
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"encode response"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
