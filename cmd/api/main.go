package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"

	httpadapter "github.com/MagicMike0112/Project-Study-BSH/internal/adapters/http"
	"github.com/MagicMike0112/Project-Study-BSH/internal/bootstrap"
	"github.com/MagicMike0112/Project-Study-BSH/internal/config"
	"github.com/MagicMike0112/Project-Study-BSH/internal/observability/logging"
	"github.com/MagicMike0112/Project-Study-BSH/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics := metrics.NewHTTPServerMetrics("api")
	pipelineMetrics := metrics.NewPipelineMetrics("api", httpMetrics.Registry())

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		Logger:          logger,
		Observer:        pipelineMetrics,
		BreakerListener: pipelineMetrics.BreakerStateChanged,
	})
	if err != nil {
		logger.Error("bootstrap.failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	opts := []httpadapter.Option{
		httpadapter.WithLogger(logger),
		httpadapter.WithMetrics(httpMetrics),
	}
	if app.SubmitUC != nil {
		opts = append(opts, httpadapter.WithScanJobs(app.SubmitUC, app.JobsUC))
	}
	router := httpadapter.NewRouter(cfg, app.Scanner, app.Expiry, app.Exporter, opts...).Handler()

	listener, err := net.Listen("tcp", ":"+cfg.APIPort)
	if err != nil {
		logger.Error("api.listen.failed", "port", cfg.APIPort, "error", err)
		os.Exit(1)
	}
	if cfg.APIMaxConnections > 0 {
		listener = netutil.LimitListener(listener, cfg.APIMaxConnections)
	}

	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      cfg.LLMTimeout + cfg.LLMRepairTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("api.listening", "port", cfg.APIPort, "max_connections", cfg.APIMaxConnections)
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api.serve.failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api.shutdown.failed", "error", err)
	}
}
