package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/davidalcaide/proposalia/internal/bootstrap"
	"github.com/davidalcaide/proposalia/internal/config"
	"github.com/davidalcaide/proposalia/internal/core/domain"
	"github.com/davidalcaide/proposalia/internal/observability/logging"
	"github.com/davidalcaide/proposalia/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker_metrics_server_error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeExtractionJobs(ctx, func(handlerCtx context.Context, job domain.ExtractionJob) error {
		stageCtx, cancel := context.WithTimeout(handlerCtx, 10*time.Minute)
		defer cancel()

		workerMetrics.StartStage()
		start := time.Now()

		var stageErr error
		switch job.Kind {
		case domain.JobCatalogScan:
			stageErr = app.Extraction.ScanCatalog(stageCtx, job)
		case domain.JobDeepExtraction:
			stageErr = app.Extraction.ExtractDetails(stageCtx, job)
		default:
			logger.Warn("unknown_job_kind", "kind", string(job.Kind), "document_id", job.DocumentID)
		}

		workerMetrics.FinishStage("worker", string(job.Kind), time.Since(start), stageErr)
		return stageErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
