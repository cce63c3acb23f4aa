package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/davidalcaide/proposalia/internal/config"
	"github.com/davidalcaide/proposalia/internal/core/ports"
	"github.com/davidalcaide/proposalia/internal/core/usecase"
	"github.com/davidalcaide/proposalia/internal/infrastructure/export/xlsx"
	"github.com/davidalcaide/proposalia/internal/infrastructure/llm/gemini"
	"github.com/davidalcaide/proposalia/internal/infrastructure/preflight"
	"github.com/davidalcaide/proposalia/internal/infrastructure/queue/nats"
	"github.com/davidalcaide/proposalia/internal/infrastructure/repository/postgres"
	"github.com/davidalcaide/proposalia/internal/infrastructure/resilience"
	"github.com/davidalcaide/proposalia/internal/infrastructure/storage/localfs"
	miniostorage "github.com/davidalcaide/proposalia/internal/infrastructure/storage/minio"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue        *nats.Queue
	DocRepo      ports.DocumentRepository
	ProposalRepo ports.ProposalRepository
	AssetRepo    ports.AssetRepository

	Ingest     ports.DocumentIngestor
	Trigger    ports.PipelineTrigger
	Proposals  ports.ProposalService
	Extraction ports.ExtractionPipeline

	Exporter *xlsx.Exporter

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	docRepo := postgres.NewDocumentRepository(db)
	proposalRepo := postgres.NewProposalRepository(db)
	assetRepo := postgres.NewAssetRepository(db)

	storage, err := buildStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	extractionClient := gemini.New(cfg.GeminiURL, cfg.GeminiAPIKey, cfg.GeminiModel, executor)
	generateClient := gemini.New(cfg.GeminiURL, cfg.GeminiAPIKey, cfg.GenerateModel, executor)
	analyzer := gemini.NewAnalyzer(extractionClient)
	extractor := gemini.NewExtractor(extractionClient)
	composer := gemini.NewComposer(generateClient)

	inspector := preflight.New()
	modelTimeout := time.Duration(cfg.ModelTimeout) * time.Second

	ingest := usecase.NewIngestDocumentUseCase(docRepo, storage, inspector, logger)
	trigger := usecase.NewTriggerUseCase(docRepo, queue, logger)
	extraction := usecase.NewExtractionUseCase(docRepo, assetRepo, storage, analyzer, extractor, logger, modelTimeout)
	proposals := usecase.NewProposalUseCase(proposalRepo, docRepo, composer, logger)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue:        queue,
		DocRepo:      docRepo,
		ProposalRepo: proposalRepo,
		AssetRepo:    assetRepo,

		Ingest:     ingest,
		Trigger:    trigger,
		Proposals:  proposals,
		Extraction: extraction,

		Exporter: xlsx.New(),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func buildStorage(ctx context.Context, cfg config.Config) (ports.ObjectStorage, error) {
	if cfg.StorageBackend == "minio" {
		storage, err := miniostorage.New(miniostorage.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, err
		}
		if err := storage.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return storage, nil
	}
	return localfs.New(cfg.StoragePath)
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
