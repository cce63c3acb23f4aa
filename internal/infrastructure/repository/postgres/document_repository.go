package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/davidalcaide/proposalia/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, agency_id, filename, storage_path, status, briefing, available_programs,
output_language, additional_context, processing_error, metadata, page_count, text_preview, created_at, updated_at`

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	metaJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, agency_id, filename, storage_path, status, output_language, additional_context,
	processing_error, metadata, page_count, text_preview, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
`,
		doc.ID, nullable(doc.AgencyID), doc.Filename, doc.StoragePath, string(doc.Status),
		doc.OutputLanguage, doc.AdditionalContext, doc.ProcessingError, metaJSON,
		doc.PageCount, doc.TextPreview, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1
`, id)

	var doc domain.Document
	var agencyID sql.NullString
	var briefingRaw, programsRaw, metaRaw []byte
	var status string

	err := row.Scan(
		&doc.ID, &agencyID, &doc.Filename, &doc.StoragePath, &status, &briefingRaw, &programsRaw,
		&doc.OutputLanguage, &doc.AdditionalContext, &doc.ProcessingError, &metaRaw,
		&doc.PageCount, &doc.TextPreview, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}

	doc.Status = domain.DocumentStatus(status)
	doc.AgencyID = agencyID.String
	if len(briefingRaw) > 0 {
		var briefing domain.Briefing
		if err := json.Unmarshal(briefingRaw, &briefing); err != nil {
			return nil, fmt.Errorf("unmarshal briefing: %w", err)
		}
		doc.Briefing = &briefing
	}
	if len(programsRaw) > 0 {
		if err := json.Unmarshal(programsRaw, &doc.AvailablePrograms); err != nil {
			return nil, fmt.Errorf("unmarshal available programs: %w", err)
		}
	}
	if len(metaRaw) > 0 {
		if err := json.Unmarshal(metaRaw, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &doc, nil
}

func (r *DocumentRepository) SetStatus(ctx context.Context, id string, status domain.DocumentStatus, meta domain.StageMetadata) error {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, metadata = $3, updated_at = $4
WHERE id = $1
`, id, string(status), metaJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return nil
}

func (r *DocumentRepository) UpdateProgress(ctx context.Context, id string, meta domain.StageMetadata) error {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
UPDATE documents
SET metadata = $2, updated_at = $3
WHERE id = $1
`, id, metaJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document progress: %w", err)
	}
	return nil
}

func (r *DocumentRepository) SaveAvailablePrograms(ctx context.Context, id string, programs []domain.ProgramSummary, meta domain.StageMetadata) error {
	if programs == nil {
		programs = []domain.ProgramSummary{}
	}
	programsJSON, err := json.Marshal(programs)
	if err != nil {
		return fmt.Errorf("marshal available programs: %w", err)
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
UPDATE documents
SET available_programs = $2, status = $3, metadata = $4, updated_at = $5
WHERE id = $1
`, id, programsJSON, string(domain.StatusProcessed), metaJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save available programs: %w", err)
	}
	return nil
}

func (r *DocumentRepository) SaveBriefing(ctx context.Context, id string, briefing domain.Briefing, carried []domain.ProgramSummary, meta domain.StageMetadata) error {
	briefingJSON, err := json.Marshal(briefing)
	if err != nil {
		return fmt.Errorf("marshal briefing: %w", err)
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	// The selection set is re-written only when the scan stage carried one
	// in; a direct deep-extraction trigger leaves it untouched.
	if carried != nil {
		programsJSON, err := json.Marshal(carried)
		if err != nil {
			return fmt.Errorf("marshal carried programs: %w", err)
		}
		_, err = r.db.ExecContext(ctx, `
UPDATE documents
SET briefing = $2, available_programs = $3, status = $4, metadata = $5, processing_error = '', updated_at = $6
WHERE id = $1
`, id, briefingJSON, programsJSON, string(domain.StatusProcessed), metaJSON, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("save briefing: %w", err)
		}
		return nil
	}

	_, err = r.db.ExecContext(ctx, `
UPDATE documents
SET briefing = $2, status = $3, metadata = $4, processing_error = '', updated_at = $5
WHERE id = $1
`, id, briefingJSON, string(domain.StatusProcessed), metaJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save briefing: %w", err)
	}
	return nil
}

func (r *DocumentRepository) MarkError(ctx context.Context, id, message string) error {
	meta := domain.StageMetadata{Stage: "error", Message: message, UpdatedAt: time.Now().UTC()}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, processing_error = $3, metadata = $4, updated_at = $5
WHERE id = $1
`, id, string(domain.StatusError), message, metaJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark document error: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "delete document", fmt.Errorf("id %s", id))
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
