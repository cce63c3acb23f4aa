package ports

import (
	"context"
	"io"

	"github.com/davidalcaide/proposalia/internal/core/domain"
)

// DocumentRepository persists document rows and their pipeline state. Every
// write is a full-field replacement keyed by id; there is no optimistic
// concurrency check.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	SetStatus(ctx context.Context, id string, status domain.DocumentStatus, meta domain.StageMetadata) error
	UpdateProgress(ctx context.Context, id string, meta domain.StageMetadata) error
	SaveAvailablePrograms(ctx context.Context, id string, programs []domain.ProgramSummary, meta domain.StageMetadata) error
	// SaveBriefing replaces the briefing wholesale and marks the document
	// processed. carried re-writes available_programs only when non-nil.
	SaveBriefing(ctx context.Context, id string, briefing domain.Briefing, carried []domain.ProgramSummary, meta domain.StageMetadata) error
	MarkError(ctx context.Context, id, message string) error
	Delete(ctx context.Context, id string) error
}

// ProposalRepository persists proposal rows.
type ProposalRepository interface {
	Create(ctx context.Context, proposal *domain.Proposal) error
	GetByID(ctx context.Context, id string) (*domain.Proposal, error)
	// GetWithBriefing loads a proposal together with its document's briefing.
	GetWithBriefing(ctx context.Context, id string) (*domain.Proposal, *domain.Briefing, error)
	// SaveContent is the terminal write of a generation run: content and
	// status land in one update.
	SaveContent(ctx context.Context, id string, content domain.ProposalContent, status domain.ProposalStatus) error
	// UpdateContent replaces content without touching status (edit path).
	UpdateContent(ctx context.Context, id string, content domain.ProposalContent) error
}

// AssetRepository stores write-once commercial assets.
type AssetRepository interface {
	Insert(ctx context.Context, assets []domain.CommercialAsset) error
	ListByDocument(ctx context.Context, documentID string) ([]domain.CommercialAsset, error)
}

// ObjectStorage stores source PDFs.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// MessageQueue carries extraction jobs from the trigger endpoints to the
// worker.
type MessageQueue interface {
	PublishExtractionJob(ctx context.Context, job domain.ExtractionJob) error
	SubscribeExtractionJobs(ctx context.Context, handler func(context.Context, domain.ExtractionJob) error) error
}

// DocumentInspector runs the upload preflight on a PDF payload.
type DocumentInspector interface {
	Inspect(data []byte) (pageCount int, preview string, err error)
}

// CatalogAnalyzer is the stage-1 model call: detect the programs a PDF holds.
type CatalogAnalyzer interface {
	ScanCatalog(ctx context.Context, pdf []byte, language domain.LanguageOption, additionalContext string) (domain.CatalogScan, error)
}

// ProgramExtractor is the stage-2 model call: full extraction of one program
// into the rich intelligence shape.
type ProgramExtractor interface {
	ExtractProgram(ctx context.Context, pdf []byte, programTitle string, language domain.LanguageOption) (domain.ProgramIntelligence, error)
}

// ProposalComposer generates and edits the block document.
type ProposalComposer interface {
	ComposeProposal(ctx context.Context, briefing domain.Briefing, tone string, opts domain.GenerationOptions, language domain.LanguageOption) (domain.ProposalContent, error)
	EditSections(ctx context.Context, sections []domain.Block, instruction string, images []string, target *domain.TargetElement) ([]domain.Block, error)
}
