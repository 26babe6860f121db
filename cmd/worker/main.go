package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MagicMike0112/Project-Study-BSH/internal/bootstrap"
	"github.com/MagicMike0112/Project-Study-BSH/internal/config"
	"github.com/MagicMike0112/Project-Study-BSH/internal/observability/logging"
	"github.com/MagicMike0112/Project-Study-BSH/internal/observability/metrics"
)

const jobTimeout = 5 * time.Minute

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	pipelineMetrics := metrics.NewPipelineMetrics("worker", workerMetrics.Registry())

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
	if app.ProcessUC == nil {
		logger.Error("bootstrap.failed", "error", bootstrap.ErrAsyncScansDisabled)
		os.Exit(1)
	}

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker.metrics.failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker.subscribed", "subject", cfg.NATSSubject, "metrics_port", cfg.WorkerMetricsPort)
	err = app.Queue.SubscribeScanRequested(ctx, func(handlerCtx context.Context, jobID string) error {
		if job, err := app.JobsUC.GetByID(handlerCtx, jobID); err == nil {
			workerMetrics.ObserveQueueLag("worker", time.Since(job.CreatedAt))
		}

		processCtx, cancel := context.WithTimeout(handlerCtx, jobTimeout)
		defer cancel()

		started := time.Now()
		workerMetrics.StartJob()
		err := app.ProcessUC.ProcessByID(logging.WithLogger(processCtx, logger.With("job_id", jobID)), jobID)
		workerMetrics.FinishJob("worker", time.Since(started), err)
		if err == nil {
			logger.Info("scan_job.processed", "job_id", jobID, "elapsed_ms", time.Since(started).Milliseconds())
		}
		return err
	})
	if err != nil {
		logger.Error("worker.subscribe.failed", "error", err)
		os.Exit(1)
	}
}
