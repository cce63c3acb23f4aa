package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/davidalcaide/proposalia/internal/core/domain"
	"github.com/davidalcaide/proposalia/internal/core/ports"
)

// TriggerUseCase is the api-side half of the pipeline: flip the row to
// processing, resolve the output language, and enqueue the stage. The HTTP
// handler acks 202 as soon as the job is published; completion is observed
// on the row, never on the request.
type TriggerUseCase struct {
	repo   ports.DocumentRepository
	queue  ports.MessageQueue
	logger *slog.Logger
}

func NewTriggerUseCase(repo ports.DocumentRepository, queue ports.MessageQueue, logger *slog.Logger) *TriggerUseCase {
	return &TriggerUseCase{repo: repo, queue: queue, logger: logger}
}

func (uc *TriggerUseCase) TriggerCatalogScan(ctx context.Context, documentID, storagePath, language string) error {
	meta := domain.StageMetadata{
		Stage:     "webhook_trigger",
		Message:   "Iniciando procesamiento...",
		UpdatedAt: time.Now().UTC(),
	}
	return uc.trigger(ctx, domain.ExtractionJob{
		Kind:        domain.JobCatalogScan,
		DocumentID:  documentID,
		StoragePath: storagePath,
		Language:    language,
	}, meta)
}

func (uc *TriggerUseCase) TriggerDeepExtraction(ctx context.Context, documentID, storagePath, programTitle, language string) error {
	if programTitle == "" {
		return domain.WrapError(domain.ErrInvalidInput, "trigger deep extraction", fmt.Errorf("program_title is required"))
	}
	meta := domain.StageMetadata{
		Stage:     "deep_extraction",
		Message:   fmt.Sprintf("Extrayendo detalles de %s...", programTitle),
		UpdatedAt: time.Now().UTC(),
	}
	return uc.trigger(ctx, domain.ExtractionJob{
		Kind:         domain.JobDeepExtraction,
		DocumentID:   documentID,
		StoragePath:  storagePath,
		ProgramTitle: programTitle,
		Language:     language,
	}, meta)
}

func (uc *TriggerUseCase) trigger(ctx context.Context, job domain.ExtractionJob, meta domain.StageMetadata) error {
	doc, err := uc.repo.GetByID(ctx, job.DocumentID)
	if err != nil {
		return fmt.Errorf("fetch document: %w", err)
	}
	if job.StoragePath == "" {
		job.StoragePath = doc.StoragePath
	}
	if job.Language == "" {
		job.Language = doc.OutputLanguage
	}
	if job.Language == "" {
		job.Language = domain.DefaultLanguageCode
	}

	if err := uc.repo.SetStatus(ctx, job.DocumentID, domain.StatusProcessing, meta); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	if err := uc.queue.PublishExtractionJob(ctx, job); err != nil {
		if markErr := uc.repo.MarkError(ctx, job.DocumentID, err.Error()); markErr != nil {
			uc.logger.Error("mark_error_failed", "document_id", job.DocumentID, "error", markErr)
		}
		return fmt.Errorf("publish extraction job: %w", err)
	}

	uc.logger.Info("extraction_job_published",
		"document_id", job.DocumentID,
		"kind", string(job.Kind),
		"language", job.Language,
	)
	return nil
}
