package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/davidalcaide/proposalia/internal/core/domain"
)

func proposalFixture() (*ProposalUseCase, *memProposalRepo, *memDocRepo, *stubComposer) {
	docs := newMemDocRepo(&domain.Document{
		ID:       "d-1",
		Status:   domain.StatusProcessed,
		Briefing: &domain.Briefing{Title: "Master en IA"},
	})
	proposals := newMemProposalRepo()
	composer := &stubComposer{}
	uc := NewProposalUseCase(proposals, docs, composer, testLogger())
	return uc, proposals, docs, composer
}

func validContent() domain.ProposalContent {
	return domain.ProposalContent{
		"sections": json.RawMessage(`[
			{"id":"b1","type":"hero","settings":{"headline":"Master en IA"}},
			{"id":"b2","type":"solution","settings":{"title":"El reto"}},
			{"id":"b3","type":"features","settings":{"items":["claustro"]}},
			{"id":"b4","type":"cta","settings":{"headline":"Solicita info"}},
			{"id":"b5","type":"footer","settings":{"text":"legal"}}
		]`),
		"visual_suggestions": json.RawMessage(`[{"image_prompt":"campus at dusk"}]`),
	}
}

func TestCreateProposalDefaultsTone(t *testing.T) {
	uc, proposals, _, _ := proposalFixture()

	proposal, err := uc.CreateProposal(context.Background(), "d-1", "", "")
	if err != nil {
		t.Fatalf("CreateProposal() error = %v", err)
	}
	if proposal.Tone != "Profesional" {
		t.Fatalf("expected default tone, got %q", proposal.Tone)
	}
	if proposal.Status != domain.ProposalProcessing {
		t.Fatalf("expected processing status, got %s", proposal.Status)
	}
	if proposal.Title != "Master en IA" {
		t.Fatalf("expected title from briefing, got %q", proposal.Title)
	}
	if _, ok := proposals.proposals[proposal.ID]; !ok {
		t.Fatalf("expected proposal persisted")
	}
}

func TestCreateProposalRequiresBriefing(t *testing.T) {
	uc, _, docs, _ := proposalFixture()
	docs.docs["d-2"] = &domain.Document{ID: "d-2", Status: domain.StatusPending}

	_, err := uc.CreateProposal(context.Background(), "d-2", "Cercano", "")
	if !errors.Is(err, domain.ErrBriefingMissing) {
		t.Fatalf("expected ErrBriefingMissing, got %v", err)
	}
}

func TestGenerateSavesReadyContent(t *testing.T) {
	uc, proposals, _, composer := proposalFixture()
	proposals.proposals["p-1"] = &domain.Proposal{ID: "p-1", Tone: "Profesional", Status: domain.ProposalProcessing}
	proposals.briefings["p-1"] = &domain.Briefing{Title: "Master en IA"}
	composer.content = validContent()

	opts := domain.GenerationOptions{Language: "ca", IncludeInstitution: true}
	if err := uc.Generate(context.Background(), "p-1", opts); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if proposals.savedStatus != domain.ProposalReady {
		t.Fatalf("expected ready status, got %s", proposals.savedStatus)
	}
	sections, err := proposals.savedContent.Sections()
	if err != nil {
		t.Fatalf("saved content has no sections: %v", err)
	}
	if len(sections) != 5 {
		t.Fatalf("expected 5 sections, got %d", len(sections))
	}
	if _, ok := proposals.savedContent["visual_suggestions"]; !ok {
		t.Fatalf("expected visual_suggestions preserved in saved content")
	}
	if composer.lastOpts.Language != "ca" {
		t.Fatalf("expected options passed through, got %+v", composer.lastOpts)
	}
}

func TestGenerateComposerFailureWritesErrorContent(t *testing.T) {
	uc, proposals, _, composer := proposalFixture()
	proposals.proposals["p-1"] = &domain.Proposal{ID: "p-1", Status: domain.ProposalProcessing}
	proposals.briefings["p-1"] = &domain.Briefing{Title: "Master en IA"}
	composer.err = errors.New("model unavailable")

	err := uc.Generate(context.Background(), "p-1", domain.GenerationOptions{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if proposals.savedStatus != domain.ProposalError {
		t.Fatalf("expected error status, got %s", proposals.savedStatus)
	}
	raw, ok := proposals.savedContent["error"]
	if !ok {
		t.Fatalf("expected error surfaced through content, got %v", proposals.savedContent)
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err != nil || msg == "" {
		t.Fatalf("expected readable error message, got %s", raw)
	}
}

func TestGenerateInvalidBlocksWritesErrorContent(t *testing.T) {
	uc, proposals, _, composer := proposalFixture()
	proposals.proposals["p-1"] = &domain.Proposal{ID: "p-1", Status: domain.ProposalProcessing}
	proposals.briefings["p-1"] = &domain.Briefing{Title: "Master en IA"}
	composer.content = domain.ProposalContent{
		"sections": json.RawMessage(`[{"id":"b1","type":"carousel","settings":{}}]`),
	}

	err := uc.Generate(context.Background(), "p-1", domain.GenerationOptions{})
	if !errors.Is(err, domain.ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
	if proposals.savedStatus != domain.ProposalError {
		t.Fatalf("expected error status, got %s", proposals.savedStatus)
	}
}

func TestGenerateWithoutBriefingWritesErrorContent(t *testing.T) {
	uc, proposals, _, _ := proposalFixture()
	proposals.proposals["p-1"] = &domain.Proposal{ID: "p-1", Status: domain.ProposalProcessing}

	err := uc.Generate(context.Background(), "p-1", domain.GenerationOptions{})
	if !errors.Is(err, domain.ErrBriefingMissing) {
		t.Fatalf("expected ErrBriefingMissing, got %v", err)
	}
	if proposals.savedStatus != domain.ProposalError {
		t.Fatalf("expected error status, got %s", proposals.savedStatus)
	}
}

func TestEditReplacesOnlySections(t *testing.T) {
	uc, proposals, _, composer := proposalFixture()
	proposals.proposals["p-1"] = &domain.Proposal{
		ID:      "p-1",
		Status:  domain.ProposalReady,
		Content: validContent(),
	}
	composer.edited = []domain.Block{
		{ID: "b1", Type: domain.BlockHero, Settings: json.RawMessage(`{"headline":"Nuevo titular"}`)},
		{ID: "b2", Type: domain.BlockSolution, Settings: json.RawMessage(`{"title":"El reto"}`)},
		{ID: "b3", Type: domain.BlockFeatures, Settings: json.RawMessage(`{"items":["claustro"]}`)},
		{ID: "b4", Type: domain.BlockCTA, Settings: json.RawMessage(`{"headline":"Solicita info"}`)},
		{ID: "b5", Type: domain.BlockFooter, Settings: json.RawMessage(`{"text":"legal"}`)},
	}

	if err := uc.Edit(context.Background(), "p-1", "cambia el titular del hero", nil, nil); err != nil {
		t.Fatalf("Edit() error = %v", err)
	}

	if proposals.updateCount != 1 {
		t.Fatalf("expected one content update, got %d", proposals.updateCount)
	}
	if _, ok := proposals.updateContent["visual_suggestions"]; !ok {
		t.Fatalf("expected visual_suggestions survive the edit")
	}
	sections, _ := proposals.updateContent.Sections()
	ids := domain.BlockIDs(sections)
	want := []string{"b1", "b2", "b3", "b4", "b5"}
	for i, id := range want {
		if ids[i] != id {
			t.Fatalf("block ids changed: got %v", ids)
		}
	}
	// Status is untouched by edits.
	if proposals.proposals["p-1"].Status != domain.ProposalReady {
		t.Fatalf("edit must not touch status, got %s", proposals.proposals["p-1"].Status)
	}
}

func TestEditFailureLeavesContentUntouched(t *testing.T) {
	uc, proposals, _, composer := proposalFixture()
	proposals.proposals["p-1"] = &domain.Proposal{
		ID:      "p-1",
		Status:  domain.ProposalReady,
		Content: validContent(),
	}
	composer.editErr = errors.New("model unavailable")

	err := uc.Edit(context.Background(), "p-1", "haz el hero más corto", nil, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if proposals.updateCount != 0 {
		t.Fatalf("failed edit must not write content, got %d updates", proposals.updateCount)
	}
}

func TestEditRequiresInstruction(t *testing.T) {
	uc, _, _, _ := proposalFixture()
	err := uc.Edit(context.Background(), "p-1", "   ", nil, nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEditRejectsInvalidModelOutput(t *testing.T) {
	uc, proposals, _, composer := proposalFixture()
	proposals.proposals["p-1"] = &domain.Proposal{
		ID:      "p-1",
		Status:  domain.ProposalReady,
		Content: validContent(),
	}
	composer.edited = []domain.Block{{Type: domain.BlockHero}}

	err := uc.Edit(context.Background(), "p-1", "cambia el titular", nil, nil)
	if !errors.Is(err, domain.ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
	if proposals.updateCount != 0 {
		t.Fatalf("invalid edit must not write content")
	}
}
