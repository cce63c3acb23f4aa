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

type ProposalRepository struct {
	db *sql.DB
}

func NewProposalRepository(db *sql.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

func (r *ProposalRepository) Create(ctx context.Context, proposal *domain.Proposal) error {
	var contentJSON []byte
	if proposal.Content != nil {
		var err error
		contentJSON, err = json.Marshal(proposal.Content)
		if err != nil {
			return fmt.Errorf("marshal proposal content: %w", err)
		}
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO proposals (id, document_id, agency_id, title, tone, format, status, content, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
		proposal.ID, proposal.DocumentID, nullable(proposal.AgencyID), proposal.Title,
		proposal.Tone, proposal.Format, string(proposal.Status), contentJSON,
		proposal.CreatedAt, proposal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert proposal: %w", err)
	}
	return nil
}

func (r *ProposalRepository) GetByID(ctx context.Context, id string) (*domain.Proposal, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, document_id, agency_id, title, tone, format, status, content, created_at, updated_at
FROM proposals
WHERE id = $1
`, id)
	return scanProposal(row, id)
}

// GetWithBriefing loads the proposal together with the owning document's
// briefing in one round trip. The briefing may be nil when the document was
// never deep-extracted.
func (r *ProposalRepository) GetWithBriefing(ctx context.Context, id string) (*domain.Proposal, *domain.Briefing, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT p.id, p.document_id, p.agency_id, p.title, p.tone, p.format, p.status, p.content,
       p.created_at, p.updated_at, d.briefing
FROM proposals p
JOIN documents d ON d.id = p.document_id
WHERE p.id = $1
`, id)

	var p domain.Proposal
	var agencyID sql.NullString
	var contentRaw, briefingRaw []byte
	var status string

	err := row.Scan(
		&p.ID, &p.DocumentID, &agencyID, &p.Title, &p.Tone, &p.Format, &status, &contentRaw,
		&p.CreatedAt, &p.UpdatedAt, &briefingRaw,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.WrapError(domain.ErrProposalNotFound, "get proposal", fmt.Errorf("id %s", id))
		}
		return nil, nil, fmt.Errorf("scan proposal with briefing: %w", err)
	}

	p.Status = domain.ProposalStatus(status)
	p.AgencyID = agencyID.String
	if len(contentRaw) > 0 {
		if err := json.Unmarshal(contentRaw, &p.Content); err != nil {
			return nil, nil, fmt.Errorf("unmarshal proposal content: %w", err)
		}
	}

	var briefing *domain.Briefing
	if len(briefingRaw) > 0 {
		briefing = &domain.Briefing{}
		if err := json.Unmarshal(briefingRaw, briefing); err != nil {
			return nil, nil, fmt.Errorf("unmarshal briefing: %w", err)
		}
	}
	return &p, briefing, nil
}

func (r *ProposalRepository) SaveContent(ctx context.Context, id string, content domain.ProposalContent, status domain.ProposalStatus) error {
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("marshal proposal content: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
UPDATE proposals
SET content = $2, status = $3, updated_at = $4
WHERE id = $1
`, id, contentJSON, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save proposal content: %w", err)
	}
	return nil
}

func (r *ProposalRepository) UpdateContent(ctx context.Context, id string, content domain.ProposalContent) error {
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("marshal proposal content: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
UPDATE proposals
SET content = $2, updated_at = $3
WHERE id = $1
`, id, contentJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update proposal content: %w", err)
	}
	return nil
}

func scanProposal(row *sql.Row, id string) (*domain.Proposal, error) {
	var p domain.Proposal
	var agencyID sql.NullString
	var contentRaw []byte
	var status string

	err := row.Scan(
		&p.ID, &p.DocumentID, &agencyID, &p.Title, &p.Tone, &p.Format, &status, &contentRaw,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrProposalNotFound, "get proposal", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan proposal: %w", err)
	}

	p.Status = domain.ProposalStatus(status)
	p.AgencyID = agencyID.String
	if len(contentRaw) > 0 {
		if err := json.Unmarshal(contentRaw, &p.Content); err != nil {
			return nil, fmt.Errorf("unmarshal proposal content: %w", err)
		}
	}
	return &p, nil
}
