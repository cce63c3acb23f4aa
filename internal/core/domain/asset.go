package domain

import "time"

type AssetType string

const (
	AssetKeyHighlight     AssetType = "key_highlight"
	AssetSellingPoint     AssetType = "unique_selling_point"
	AssetEmotionalHook    AssetType = "emotional_hook"
	AssetSEOKeyword       AssetType = "seo_keyword"
	AssetLinkedInPost     AssetType = "linkedin_post"
	AssetInstagramCaption AssetType = "instagram_caption"
	AssetEmailSubject     AssetType = "email_subject"
)

type AssetMetadata struct {
	ProgramTitle string `json:"program_title"`
}

// CommercialAsset is a denormalized marketing snippet fanned out from deep
// extraction. Rows are insert-only and live independently of the document.
type CommercialAsset struct {
	ID         string        `json:"id"`
	Type       AssetType     `json:"type"`
	Content    string        `json:"content"`
	AgencyID   string        `json:"agency_id,omitempty"`
	DocumentID string        `json:"document_id"`
	Metadata   AssetMetadata `json:"metadata"`
	CreatedAt  time.Time     `json:"created_at"`
}
