package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/davidalcaide/proposalia/internal/core/domain"
	"github.com/davidalcaide/proposalia/internal/core/ports"
)

// Spanish progress strings shown verbatim in the client UI.
const (
	msgScanStarting       = "Iniciando análisis..."
	msgScanIdentifying    = "Identificando programas..."
	msgScanAwaitSelection = "Programas detectados. Pendiente de selección."
	msgExtractionDone     = "Análisis profundo completado"
)

// ExtractionUseCase runs the two worker stages: catalog scan and deep
// extraction. A scan that finds exactly one program chains straight into
// deep extraction so single-program documents never need a selection click.
type ExtractionUseCase struct {
	repo      ports.DocumentRepository
	assets    ports.AssetRepository
	storage   ports.ObjectStorage
	analyzer  ports.CatalogAnalyzer
	extractor ports.ProgramExtractor
	logger    *slog.Logger

	// Wall-clock ceiling for each document-processing model call. The whole
	// stage fails when the model does not answer in time; no partial output
	// is kept.
	modelCallTimeout time.Duration
}

func NewExtractionUseCase(
	repo ports.DocumentRepository,
	assets ports.AssetRepository,
	storage ports.ObjectStorage,
	analyzer ports.CatalogAnalyzer,
	extractor ports.ProgramExtractor,
	logger *slog.Logger,
	modelCallTimeout time.Duration,
) *ExtractionUseCase {
	if modelCallTimeout <= 0 {
		modelCallTimeout = 2 * time.Minute
	}
	return &ExtractionUseCase{
		repo:             repo,
		assets:           assets,
		storage:          storage,
		analyzer:         analyzer,
		extractor:        extractor,
		logger:           logger,
		modelCallTimeout: modelCallTimeout,
	}
}

func (uc *ExtractionUseCase) ScanCatalog(ctx context.Context, job domain.ExtractionJob) error {
	doc, err := uc.repo.GetByID(ctx, job.DocumentID)
	if err != nil {
		return uc.fail(ctx, job.DocumentID, fmt.Errorf("fetch document: %w", err))
	}
	language := uc.resolveLanguage(job, doc)

	if err := uc.progress(ctx, job.DocumentID, "starting", msgScanStarting); err != nil {
		return uc.fail(ctx, job.DocumentID, err)
	}

	pdf, err := uc.downloadPDF(ctx, job.StoragePath)
	if err != nil {
		return uc.fail(ctx, job.DocumentID, err)
	}

	if err := uc.progress(ctx, job.DocumentID, "model_call", msgScanIdentifying); err != nil {
		return uc.fail(ctx, job.DocumentID, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, uc.modelCallTimeout)
	scan, err := uc.analyzer.ScanCatalog(callCtx, pdf, language, doc.AdditionalContext)
	cancel()
	if err != nil {
		return uc.fail(ctx, job.DocumentID, fmt.Errorf("catalog scan: %w", err))
	}

	// A single hit skips the selection screen: chain deep extraction with
	// the already-resolved language and carry the program list through.
	if len(scan.Programs) == 1 {
		return uc.extractProgram(ctx, doc, job.StoragePath, scan.Programs[0].Title, scan.Programs, language)
	}

	meta := domain.StageMetadata{
		Stage:     "complete",
		Message:   msgScanAwaitSelection,
		UpdatedAt: time.Now().UTC(),
	}
	if err := uc.repo.SaveAvailablePrograms(ctx, job.DocumentID, scan.Programs, meta); err != nil {
		return uc.fail(ctx, job.DocumentID, fmt.Errorf("save available programs: %w", err))
	}

	uc.logger.Info("catalog_scan_complete",
		"document_id", job.DocumentID,
		"programs", len(scan.Programs),
		"multi_program", scan.IsMultiProgram,
	)
	return nil
}

func (uc *ExtractionUseCase) ExtractDetails(ctx context.Context, job domain.ExtractionJob) error {
	doc, err := uc.repo.GetByID(ctx, job.DocumentID)
	if err != nil {
		return uc.fail(ctx, job.DocumentID, fmt.Errorf("fetch document: %w", err))
	}
	language := uc.resolveLanguage(job, doc)

	// nil carried list: the selection set already on the row stays as is.
	return uc.extractProgram(ctx, doc, job.StoragePath, job.ProgramTitle, nil, language)
}

func (uc *ExtractionUseCase) extractProgram(
	ctx context.Context,
	doc *domain.Document,
	storagePath, programTitle string,
	carried []domain.ProgramSummary,
	language domain.LanguageOption,
) error {
	message := fmt.Sprintf("Extrayendo detalles de: %s...", programTitle)
	if err := uc.progress(ctx, doc.ID, "deep_extraction", message); err != nil {
		return uc.fail(ctx, doc.ID, err)
	}

	pdf, err := uc.downloadPDF(ctx, storagePath)
	if err != nil {
		return uc.fail(ctx, doc.ID, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, uc.modelCallTimeout)
	intelligence, err := uc.extractor.ExtractProgram(callCtx, pdf, programTitle, language)
	cancel()
	if err != nil {
		return uc.fail(ctx, doc.ID, fmt.Errorf("deep extraction: %w", err))
	}

	briefing := intelligence.MapToBriefing()
	meta := domain.StageMetadata{
		Stage:     "complete",
		Message:   msgExtractionDone,
		UpdatedAt: time.Now().UTC(),
	}
	if err := uc.repo.SaveBriefing(ctx, doc.ID, briefing, carried, meta); err != nil {
		return uc.fail(ctx, doc.ID, fmt.Errorf("save briefing: %w", err))
	}

	uc.insertAssets(ctx, doc, intelligence)

	uc.logger.Info("deep_extraction_complete",
		"document_id", doc.ID,
		"program_title", programTitle,
		"language", language.Code,
	)
	return nil
}

// insertAssets is a best-effort post-commit hook: asset rows feed the
// marketing hub, losing them must never fail the extraction itself.
func (uc *ExtractionUseCase) insertAssets(ctx context.Context, doc *domain.Document, intelligence domain.ProgramIntelligence) {
	assets := intelligence.CommercialAssets(doc.AgencyID, doc.ID)
	if len(assets) == 0 {
		return
	}
	// The fan-out builds bare rows; id and created_at are assigned here, the
	// same place the upload path mints document identity.
	now := time.Now().UTC()
	for i := range assets {
		assets[i].ID = uuid.NewString()
		assets[i].CreatedAt = now
	}
	if err := uc.assets.Insert(ctx, assets); err != nil {
		uc.logger.Error("commercial_assets_insert_failed",
			"document_id", doc.ID,
			"assets", len(assets),
			"error", err,
		)
		return
	}
	uc.logger.Info("commercial_assets_inserted", "document_id", doc.ID, "assets", len(assets))
}

func (uc *ExtractionUseCase) resolveLanguage(job domain.ExtractionJob, doc *domain.Document) domain.LanguageOption {
	code := job.Language
	if code == "" {
		code = doc.OutputLanguage
	}
	return domain.ResolveLanguage(code)
}

func (uc *ExtractionUseCase) downloadPDF(ctx context.Context, storagePath string) ([]byte, error) {
	reader, err := uc.storage.Open(ctx, storagePath)
	if err != nil {
		return nil, fmt.Errorf("download pdf: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return raw, nil
}

func (uc *ExtractionUseCase) progress(ctx context.Context, documentID, stage, message string) error {
	meta := domain.StageMetadata{Stage: stage, Message: message, UpdatedAt: time.Now().UTC()}
	if err := uc.repo.UpdateProgress(ctx, documentID, meta); err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

func (uc *ExtractionUseCase) fail(ctx context.Context, documentID string, stageErr error) error {
	if markErr := uc.repo.MarkError(ctx, documentID, stageErr.Error()); markErr != nil {
		return fmt.Errorf("%w; mark error status: %v", stageErr, markErr)
	}
	return stageErr
}
