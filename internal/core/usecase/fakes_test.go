package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/davidalcaide/proposalia/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memDocRepo struct {
	docs map[string]*domain.Document

	statusCalls   []domain.DocumentStatus
	progressCalls []domain.StageMetadata

	savedBriefing   *domain.Briefing
	savedCarried    []domain.ProgramSummary
	savedPrograms   []domain.ProgramSummary
	availableCalled bool
	markedError     string
	deleted         []string

	failSetStatus error
	failProgress  error
}

func newMemDocRepo(docs ...*domain.Document) *memDocRepo {
	repo := &memDocRepo{docs: map[string]*domain.Document{}}
	for _, doc := range docs {
		repo.docs[doc.ID] = doc
	}
	return repo
}

func (r *memDocRepo) Create(_ context.Context, doc *domain.Document) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *memDocRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := r.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id %s", id))
	}
	return doc, nil
}

func (r *memDocRepo) SetStatus(_ context.Context, id string, status domain.DocumentStatus, meta domain.StageMetadata) error {
	if r.failSetStatus != nil {
		return r.failSetStatus
	}
	r.statusCalls = append(r.statusCalls, status)
	if doc, ok := r.docs[id]; ok {
		doc.Status = status
		doc.Metadata = meta
	}
	return nil
}

func (r *memDocRepo) UpdateProgress(_ context.Context, id string, meta domain.StageMetadata) error {
	if r.failProgress != nil {
		return r.failProgress
	}
	r.progressCalls = append(r.progressCalls, meta)
	if doc, ok := r.docs[id]; ok {
		doc.Metadata = meta
	}
	return nil
}

func (r *memDocRepo) SaveAvailablePrograms(_ context.Context, id string, programs []domain.ProgramSummary, meta domain.StageMetadata) error {
	r.availableCalled = true
	r.savedPrograms = programs
	if doc, ok := r.docs[id]; ok {
		doc.AvailablePrograms = programs
		doc.Status = domain.StatusProcessed
		doc.Metadata = meta
	}
	return nil
}

func (r *memDocRepo) SaveBriefing(_ context.Context, id string, briefing domain.Briefing, carried []domain.ProgramSummary, meta domain.StageMetadata) error {
	r.savedBriefing = &briefing
	r.savedCarried = carried
	if doc, ok := r.docs[id]; ok {
		doc.Briefing = &briefing
		if carried != nil {
			doc.AvailablePrograms = carried
		}
		doc.Status = domain.StatusProcessed
		doc.Metadata = meta
	}
	return nil
}

func (r *memDocRepo) MarkError(_ context.Context, id, message string) error {
	r.markedError = message
	if doc, ok := r.docs[id]; ok {
		doc.Status = domain.StatusError
		doc.ProcessingError = message
	}
	return nil
}

func (r *memDocRepo) Delete(_ context.Context, id string) error {
	delete(r.docs, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type memProposalRepo struct {
	proposals map[string]*domain.Proposal
	briefings map[string]*domain.Briefing

	savedStatus   domain.ProposalStatus
	savedContent  domain.ProposalContent
	updateCount   int
	updateContent domain.ProposalContent
}

func newMemProposalRepo() *memProposalRepo {
	return &memProposalRepo{
		proposals: map[string]*domain.Proposal{},
		briefings: map[string]*domain.Briefing{},
	}
}

func (r *memProposalRepo) Create(_ context.Context, p *domain.Proposal) error {
	r.proposals[p.ID] = p
	return nil
}

func (r *memProposalRepo) GetByID(_ context.Context, id string) (*domain.Proposal, error) {
	p, ok := r.proposals[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrProposalNotFound, "get proposal", fmt.Errorf("id %s", id))
	}
	return p, nil
}

func (r *memProposalRepo) GetWithBriefing(ctx context.Context, id string) (*domain.Proposal, *domain.Briefing, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return p, r.briefings[id], nil
}

func (r *memProposalRepo) SaveContent(_ context.Context, id string, content domain.ProposalContent, status domain.ProposalStatus) error {
	r.savedContent = content
	r.savedStatus = status
	if p, ok := r.proposals[id]; ok {
		p.Content = content
		p.Status = status
	}
	return nil
}

func (r *memProposalRepo) UpdateContent(_ context.Context, id string, content domain.ProposalContent) error {
	r.updateCount++
	r.updateContent = content
	if p, ok := r.proposals[id]; ok {
		p.Content = content
	}
	return nil
}

type memAssetRepo struct {
	inserted []domain.CommercialAsset
	failWith error
}

func (r *memAssetRepo) Insert(_ context.Context, assets []domain.CommercialAsset) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.inserted = append(r.inserted, assets...)
	return nil
}

func (r *memAssetRepo) ListByDocument(context.Context, string) ([]domain.CommercialAsset, error) {
	return r.inserted, nil
}

type memStorage struct {
	objects map[string][]byte
	removed []string

	failRemove error
	failOpen   error
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (s *memStorage) Save(_ context.Context, key string, data io.Reader, _ int64, _ string) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.objects[key] = raw
	return nil
}

func (s *memStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if s.failOpen != nil {
		return nil, s.failOpen
	}
	raw, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (s *memStorage) Remove(_ context.Context, key string) error {
	if s.failRemove != nil {
		return s.failRemove
	}
	delete(s.objects, key)
	s.removed = append(s.removed, key)
	return nil
}

type stubInspector struct {
	pageCount int
	preview   string
	err       error
}

func (s stubInspector) Inspect([]byte) (int, string, error) {
	return s.pageCount, s.preview, s.err
}

type stubQueue struct {
	published []domain.ExtractionJob
	failWith  error
}

func (q *stubQueue) PublishExtractionJob(_ context.Context, job domain.ExtractionJob) error {
	if q.failWith != nil {
		return q.failWith
	}
	q.published = append(q.published, job)
	return nil
}

func (q *stubQueue) SubscribeExtractionJobs(context.Context, func(context.Context, domain.ExtractionJob) error) error {
	return nil
}

type stubAnalyzer struct {
	scan     domain.CatalogScan
	err      error
	language domain.LanguageOption
	context  string
}

func (a *stubAnalyzer) ScanCatalog(_ context.Context, _ []byte, language domain.LanguageOption, additionalContext string) (domain.CatalogScan, error) {
	a.language = language
	a.context = additionalContext
	if a.err != nil {
		return domain.CatalogScan{}, a.err
	}
	return a.scan, nil
}

type stubExtractor struct {
	intelligence domain.ProgramIntelligence
	err          error
	title        string
	language     domain.LanguageOption
}

func (e *stubExtractor) ExtractProgram(_ context.Context, _ []byte, programTitle string, language domain.LanguageOption) (domain.ProgramIntelligence, error) {
	e.title = programTitle
	e.language = language
	if e.err != nil {
		return domain.ProgramIntelligence{}, e.err
	}
	return e.intelligence, nil
}

type stubComposer struct {
	content  domain.ProposalContent
	edited   []domain.Block
	err      error
	editErr  error
	lastTone string
	lastOpts domain.GenerationOptions
}

func (c *stubComposer) ComposeProposal(_ context.Context, _ domain.Briefing, tone string, opts domain.GenerationOptions, _ domain.LanguageOption) (domain.ProposalContent, error) {
	c.lastTone = tone
	c.lastOpts = opts
	if c.err != nil {
		return nil, c.err
	}
	return c.content, nil
}

func (c *stubComposer) EditSections(_ context.Context, sections []domain.Block, _ string, _ []string, _ *domain.TargetElement) ([]domain.Block, error) {
	if c.editErr != nil {
		return nil, c.editErr
	}
	if c.edited != nil {
		return c.edited, nil
	}
	return sections, nil
}
