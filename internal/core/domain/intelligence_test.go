package domain

import "testing"

func sampleIntelligence() ProgramIntelligence {
	return ProgramIntelligence{
		CoreData: CoreData{
			Title:          "Master en IA",
			OriginalTitle:  "Master in AI",
			Objectives:     []string{"dominar ML"},
			TargetAudience: "ingenieros",
			Duration:       "12 meses",
			Modules:        []Module{{Name: "Fundamentos", Summary: "bases"}},
			Methodology:    "online",
			Location:       Location{City: "Barcelona", Country: "España"},
		},
		MarketingAssets: MarketingAssets{
			KeyHighlights:       []string{"claustro internacional", ""},
			UniqueSellingPoints: []string{"doble titulación"},
			EmotionalHooks:      []string{"impulsa tu carrera"},
			SEOKeywords:         []string{"master ia online"},
		},
		SocialRaw: SocialRaw{
			LinkedInPost:      "post",
			InstagramCaption:  "",
			EmailSubjectLines: []string{"asunto 1", "asunto 2"},
		},
	}
}

func TestMapToBriefingCarriesHighlightsFromMarketing(t *testing.T) {
	briefing := sampleIntelligence().MapToBriefing()

	if briefing.Title != "Master en IA" {
		t.Fatalf("unexpected title %q", briefing.Title)
	}
	if len(briefing.KeyHighlights) != 2 || briefing.KeyHighlights[0] != "claustro internacional" {
		t.Fatalf("expected highlights from marketing assets, got %v", briefing.KeyHighlights)
	}
	if briefing.Location.City != "Barcelona" {
		t.Fatalf("unexpected location %+v", briefing.Location)
	}
	if len(briefing.Modules) != 1 || briefing.Modules[0].Name != "Fundamentos" {
		t.Fatalf("unexpected modules %+v", briefing.Modules)
	}
}

func TestCommercialAssetsSkipsEmptyEntries(t *testing.T) {
	assets := sampleIntelligence().CommercialAssets("a-1", "d-1")

	// 1 highlight (empty one skipped) + 1 usp + 1 hook + 1 keyword +
	// linkedin + 2 subjects; the empty instagram caption is skipped.
	if len(assets) != 7 {
		t.Fatalf("expected 7 assets, got %d", len(assets))
	}
	counts := map[AssetType]int{}
	for _, asset := range assets {
		counts[asset.Type]++
		if asset.DocumentID != "d-1" || asset.AgencyID != "a-1" {
			t.Fatalf("asset missing ownership fields: %+v", asset)
		}
		if asset.Metadata.ProgramTitle != "Master en IA" {
			t.Fatalf("asset missing program title: %+v", asset)
		}
	}
	if counts[AssetKeyHighlight] != 1 {
		t.Fatalf("expected 1 key highlight, got %d", counts[AssetKeyHighlight])
	}
	if counts[AssetInstagramCaption] != 0 {
		t.Fatalf("expected empty caption skipped, got %d", counts[AssetInstagramCaption])
	}
	if counts[AssetEmailSubject] != 2 {
		t.Fatalf("expected 2 email subjects, got %d", counts[AssetEmailSubject])
	}
}

func TestCommercialAssetsEmptyIntelligence(t *testing.T) {
	if assets := (ProgramIntelligence{}).CommercialAssets("", "d-1"); len(assets) != 0 {
		t.Fatalf("expected no assets, got %d", len(assets))
	}
}
