package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/davidalcaide/proposalia/internal/adapters/http"
	"github.com/davidalcaide/proposalia/internal/bootstrap"
	"github.com/davidalcaide/proposalia/internal/config"
	"github.com/davidalcaide/proposalia/internal/observability/logging"
	"github.com/davidalcaide/proposalia/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	httpMetrics := metrics.NewHTTPServerMetrics("api")
	router := httpadapter.NewRouter(
		app.Ingest,
		app.Trigger,
		app.Proposals,
		app.DocRepo,
		app.ProposalRepo,
		app.AssetRepo,
		app.Exporter,
		httpMetrics,
		httpadapter.Options{
			ServiceName:        "api",
			APIToken:           cfg.APIToken,
			MaxUploadBytes:     cfg.MaxUploadBytes,
			RateLimitPerSecond: cfg.RateLimitPerSecond,
			RateLimitBurst:     cfg.RateLimitBurst,
			MaxConcurrent:      cfg.MaxConcurrent,
		},
	).Handler()

	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
		// Generation runs synchronously inside the request; the write timeout
		// has to outlast a slow model call.
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_error", "error", err)
	}
}
