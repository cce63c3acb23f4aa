package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/davidalcaide/proposalia/internal/core/domain"
)

type AssetRepository struct {
	db *sql.DB
}

func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

func (r *AssetRepository) Insert(ctx context.Context, assets []domain.CommercialAsset) error {
	if len(assets) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin asset tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO commercial_assets (id, type, content, agency_id, document_id, metadata, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`)
	if err != nil {
		return fmt.Errorf("prepare asset insert: %w", err)
	}
	defer stmt.Close()

	for _, asset := range assets {
		metaJSON, err := json.Marshal(asset.Metadata)
		if err != nil {
			return fmt.Errorf("marshal asset metadata: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			asset.ID, string(asset.Type), asset.Content, nullable(asset.AgencyID),
			asset.DocumentID, metaJSON, asset.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert asset: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit asset tx: %w", err)
	}
	return nil
}

func (r *AssetRepository) ListByDocument(ctx context.Context, documentID string) ([]domain.CommercialAsset, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, type, content, agency_id, document_id, metadata, created_at
FROM commercial_assets
WHERE document_id = $1
ORDER BY created_at, id
`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query assets: %w", err)
	}
	defer rows.Close()

	var assets []domain.CommercialAsset
	for rows.Next() {
		var asset domain.CommercialAsset
		var agencyID sql.NullString
		var assetType string
		var metaRaw []byte

		err := rows.Scan(&asset.ID, &assetType, &asset.Content, &agencyID, &asset.DocumentID, &metaRaw, &asset.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		asset.Type = domain.AssetType(assetType)
		asset.AgencyID = agencyID.String
		if len(metaRaw) > 0 {
			if err := json.Unmarshal(metaRaw, &asset.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal asset metadata: %w", err)
			}
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}
	return assets, nil
}
