package domain

// ProgramIntelligence is the rich shape deep extraction requests from the
// model. The legacy Briefing is derived from it with MapToBriefing, and the
// marketing/social groups fan out into commercial_assets rows. Both halves
// matter: the marketing hub reads the asset rows, proposal generation reads
// the briefing.
type ProgramIntelligence struct {
	CoreData        CoreData        `json:"core_data"`
	MarketingAssets MarketingAssets `json:"marketing_assets"`
	SocialRaw       SocialRaw       `json:"social_raw"`
}

type CoreData struct {
	Title              string   `json:"title"`
	OriginalTitle      string   `json:"original_title,omitempty"`
	Objectives         []string `json:"objectives"`
	TargetAudience     string   `json:"target_audience"`
	Duration           string   `json:"duration"`
	Modules            []Module `json:"modules"`
	Methodology        string   `json:"methodology"`
	Location           Location `json:"location"`
	InstitutionSummary string   `json:"institution_summary"`
}

type MarketingAssets struct {
	KeyHighlights       []string `json:"key_highlights"`
	UniqueSellingPoints []string `json:"unique_selling_points"`
	EmotionalHooks      []string `json:"emotional_hooks"`
	SEOKeywords         []string `json:"seo_keywords"`
}

type SocialRaw struct {
	LinkedInPost      string   `json:"linkedin_post"`
	InstagramCaption  string   `json:"instagram_caption"`
	EmailSubjectLines []string `json:"email_subject_lines"`
}

// MapToBriefing is the deterministic remap from the rich extraction shape to
// the legacy Briefing consumed by proposal generation.
func (pi ProgramIntelligence) MapToBriefing() Briefing {
	return Briefing{
		Title:              pi.CoreData.Title,
		OriginalTitle:      pi.CoreData.OriginalTitle,
		Objectives:         pi.CoreData.Objectives,
		TargetAudience:     pi.CoreData.TargetAudience,
		Duration:           pi.CoreData.Duration,
		KeyHighlights:      pi.MarketingAssets.KeyHighlights,
		Modules:            pi.CoreData.Modules,
		Methodology:        pi.CoreData.Methodology,
		Location:           pi.CoreData.Location,
		InstitutionSummary: pi.CoreData.InstitutionSummary,
	}
}

// CommercialAssets flattens the marketing and social groups into write-once
// asset rows. Empty entries are skipped so the fan-out never inserts blanks.
func (pi ProgramIntelligence) CommercialAssets(agencyID, documentID string) []CommercialAsset {
	programTitle := pi.CoreData.Title

	var assets []CommercialAsset
	add := func(assetType AssetType, content string) {
		if content == "" {
			return
		}
		assets = append(assets, CommercialAsset{
			Type:       assetType,
			Content:    content,
			AgencyID:   agencyID,
			DocumentID: documentID,
			Metadata:   AssetMetadata{ProgramTitle: programTitle},
		})
	}

	for _, highlight := range pi.MarketingAssets.KeyHighlights {
		add(AssetKeyHighlight, highlight)
	}
	for _, usp := range pi.MarketingAssets.UniqueSellingPoints {
		add(AssetSellingPoint, usp)
	}
	for _, hook := range pi.MarketingAssets.EmotionalHooks {
		add(AssetEmotionalHook, hook)
	}
	for _, keyword := range pi.MarketingAssets.SEOKeywords {
		add(AssetSEOKeyword, keyword)
	}
	add(AssetLinkedInPost, pi.SocialRaw.LinkedInPost)
	add(AssetInstagramCaption, pi.SocialRaw.InstagramCaption)
	for _, subject := range pi.SocialRaw.EmailSubjectLines {
		add(AssetEmailSubject, subject)
	}
	return assets
}
