package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davidalcaide/proposalia/internal/core/domain"
	"github.com/davidalcaide/proposalia/internal/core/ports"
)

type IngestDocumentUseCase struct {
	repo      ports.DocumentRepository
	storage   ports.ObjectStorage
	inspector ports.DocumentInspector
	logger    *slog.Logger
}

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	inspector ports.DocumentInspector,
	logger *slog.Logger,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		repo:      repo,
		storage:   storage,
		inspector: inspector,
		logger:    logger,
	}
}

func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	filename, language, additionalContext string,
	body io.Reader,
) (*domain.Document, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read upload body: %w", err)
	}
	if len(raw) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", fmt.Errorf("empty file"))
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	// Preflight is informational only: a preview that fails to extract must
	// not block the upload, the model reads the raw PDF anyway.
	pageCount, preview, err := uc.inspector.Inspect(raw)
	if err != nil {
		uc.logger.Warn("pdf_preflight_failed", "document_id", id, "filename", filename, "error", err)
	}

	if err := uc.storage.Save(ctx, storageKey, bytes.NewReader(raw), int64(len(raw)), "application/pdf"); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	if language == "" {
		language = domain.DefaultLanguageCode
	}

	doc := &domain.Document{
		ID:                id,
		Filename:          filename,
		StoragePath:       storageKey,
		Status:            domain.StatusPending,
		OutputLanguage:    language,
		AdditionalContext: additionalContext,
		Metadata: domain.StageMetadata{
			Stage:     "uploaded",
			Message:   "Documento recibido",
			UpdatedAt: now,
		},
		PageCount:   pageCount,
		TextPreview: preview,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document row: %w", err)
	}
	return doc, nil
}

func (uc *IngestDocumentUseCase) Delete(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document: %w", err)
	}
	if err := uc.storage.Remove(ctx, doc.StoragePath); err != nil {
		uc.logger.Warn("remove_stored_object_failed", "document_id", documentID, "storage_path", doc.StoragePath, "error", err)
	}
	if err := uc.repo.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("delete document row: %w", err)
	}
	return nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.pdf"
	}
	return base
}
