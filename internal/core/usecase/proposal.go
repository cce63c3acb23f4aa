package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davidalcaide/proposalia/internal/core/domain"
	"github.com/davidalcaide/proposalia/internal/core/ports"
)

const defaultTone = "Profesional"

// ProposalUseCase covers the proposal lifecycle. Creation and generation are
// split so the row always exists before generation runs: a realtime
// subscription opened right after creation can never miss the status flip.
type ProposalUseCase struct {
	proposals ports.ProposalRepository
	documents ports.DocumentRepository
	composer  ports.ProposalComposer
	logger    *slog.Logger
}

func NewProposalUseCase(
	proposals ports.ProposalRepository,
	documents ports.DocumentRepository,
	composer ports.ProposalComposer,
	logger *slog.Logger,
) *ProposalUseCase {
	return &ProposalUseCase{
		proposals: proposals,
		documents: documents,
		composer:  composer,
		logger:    logger,
	}
}

func (uc *ProposalUseCase) CreateProposal(ctx context.Context, documentID, tone, format string) (*domain.Proposal, error) {
	doc, err := uc.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	if doc.Briefing == nil {
		return nil, domain.WrapError(domain.ErrBriefingMissing, "create proposal", fmt.Errorf("document %s", documentID))
	}

	if strings.TrimSpace(tone) == "" {
		tone = defaultTone
	}
	now := time.Now().UTC()
	proposal := &domain.Proposal{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		AgencyID:   doc.AgencyID,
		Title:      doc.Briefing.Title,
		Tone:       tone,
		Format:     format,
		Status:     domain.ProposalProcessing,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.proposals.Create(ctx, proposal); err != nil {
		return nil, fmt.Errorf("create proposal row: %w", err)
	}
	return proposal, nil
}

// Generate runs synchronously within the invocation and writes a terminal
// status before returning. Failures land in the content channel as
// {error: message}; the UI renders content.error directly.
func (uc *ProposalUseCase) Generate(ctx context.Context, proposalID string, opts domain.GenerationOptions) error {
	proposal, briefing, err := uc.proposals.GetWithBriefing(ctx, proposalID)
	if err != nil {
		return fmt.Errorf("fetch proposal: %w", err)
	}

	if briefing == nil {
		return uc.failGeneration(ctx, proposalID, domain.WrapError(domain.ErrBriefingMissing, "generate proposal", fmt.Errorf("proposal %s", proposalID)))
	}

	language := domain.ResolveLanguage(opts.Language)
	content, err := uc.composer.ComposeProposal(ctx, *briefing, proposal.Tone, opts, language)
	if err != nil {
		return uc.failGeneration(ctx, proposalID, fmt.Errorf("compose proposal: %w", err))
	}

	sections, err := content.Sections()
	if err != nil {
		return uc.failGeneration(ctx, proposalID, domain.WrapError(domain.ErrInvalidResponse, "generate proposal", err))
	}
	if err := domain.ValidateBlocks(sections); err != nil {
		return uc.failGeneration(ctx, proposalID, domain.WrapError(domain.ErrInvalidResponse, "generate proposal", err))
	}

	if err := uc.proposals.SaveContent(ctx, proposalID, content, domain.ProposalReady); err != nil {
		return fmt.Errorf("save proposal content: %w", err)
	}

	uc.logger.Info("proposal_generated",
		"proposal_id", proposalID,
		"sections", len(sections),
		"language", language.Code,
	)
	return nil
}

// Edit applies a chat instruction to the current sections. The write is a
// single replace-sections update gated on a successful parse, so a failed
// edit leaves the row exactly as it was, status included.
func (uc *ProposalUseCase) Edit(
	ctx context.Context,
	proposalID, instruction string,
	images []string,
	target *domain.TargetElement,
) error {
	if strings.TrimSpace(instruction) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "edit proposal", fmt.Errorf("instruction is required"))
	}

	proposal, err := uc.proposals.GetByID(ctx, proposalID)
	if err != nil {
		return fmt.Errorf("fetch proposal: %w", err)
	}

	sections, err := proposal.Content.Sections()
	if err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "edit proposal", err)
	}

	edited, err := uc.composer.EditSections(ctx, sections, instruction, images, target)
	if err != nil {
		return fmt.Errorf("edit sections: %w", err)
	}
	if err := domain.ValidateBlocks(edited); err != nil {
		return domain.WrapError(domain.ErrInvalidResponse, "edit proposal", err)
	}

	content, err := proposal.Content.ReplaceSections(edited)
	if err != nil {
		return fmt.Errorf("replace sections: %w", err)
	}
	if err := uc.proposals.UpdateContent(ctx, proposalID, content); err != nil {
		return fmt.Errorf("update proposal content: %w", err)
	}

	uc.logger.Info("proposal_edited",
		"proposal_id", proposalID,
		"sections", len(edited),
		"targeted", target != nil,
	)
	return nil
}

func (uc *ProposalUseCase) failGeneration(ctx context.Context, proposalID string, genErr error) error {
	content := domain.ErrorContent(genErr.Error())
	if saveErr := uc.proposals.SaveContent(ctx, proposalID, content, domain.ProposalError); saveErr != nil {
		return fmt.Errorf("%w; save error status: %v", genErr, saveErr)
	}
	return genErr
}
