package ports

import (
	"context"
	"io"

	"github.com/davidalcaide/proposalia/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, language, additionalContext string, body io.Reader) (*domain.Document, error)
	Delete(ctx context.Context, documentID string) error
}

// PipelineTrigger accepts the HTTP trigger surface: mark the row processing
// and enqueue the stage. Returns once the job is published; the caller gets
// an immediate ack and watches the row for completion.
type PipelineTrigger interface {
	TriggerCatalogScan(ctx context.Context, documentID, storagePath, language string) error
	TriggerDeepExtraction(ctx context.Context, documentID, storagePath, programTitle, language string) error
}

// ExtractionPipeline is the worker-side contract for the two stages.
type ExtractionPipeline interface {
	ScanCatalog(ctx context.Context, job domain.ExtractionJob) error
	ExtractDetails(ctx context.Context, job domain.ExtractionJob) error
}

// ProposalService covers the proposal lifecycle: create the row, run the
// synchronous generation, apply chat edits.
type ProposalService interface {
	CreateProposal(ctx context.Context, documentID, tone, format string) (*domain.Proposal, error)
	Generate(ctx context.Context, proposalID string, opts domain.GenerationOptions) error
	Edit(ctx context.Context, proposalID, instruction string, images []string, target *domain.TargetElement) error
}
