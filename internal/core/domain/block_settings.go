package domain

import (
	"encoding/json"
	"fmt"
)

// Typed settings for each block tag. These mirror the wire contract the
// generation and edit prompts promise to the rendering layer; field names
// must not drift.

type HeroSettings struct {
	Headline       string  `json:"headline"`
	Intro          string  `json:"intro"`
	ImagePrompt    string  `json:"image_prompt,omitempty"`
	LogoPosition   string  `json:"logo_position"`
	TextAlign      string  `json:"text_align"`
	OverlayOpacity float64 `json:"overlay_opacity"`
	HeadlineSize   string  `json:"headline_size,omitempty"`
	IntroSize      string  `json:"intro_size,omitempty"`
}

type SolutionSettings struct {
	Title     string `json:"title"`
	Text      string `json:"text"`
	TextAlign string `json:"text_align"`
	TitleSize string `json:"title_size,omitempty"`
	TextSize  string `json:"text_size,omitempty"`
}

type FeaturesSettings struct {
	Title     string   `json:"title"`
	Items     []string `json:"items"`
	TextAlign string   `json:"text_align"`
	TitleSize string   `json:"title_size,omitempty"`
}

type ColumnContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type ColumnsSettings struct {
	Layout       string         `json:"layout"`
	LeftContent  ColumnContent  `json:"left_content"`
	RightContent ColumnContent  `json:"right_content"`
	ThirdContent *ColumnContent `json:"third_content,omitempty"`
}

type ImageFullSettings struct {
	ImageURL    string `json:"image_url,omitempty"`
	ImagePrompt string `json:"image_prompt,omitempty"`
	Caption     string `json:"caption,omitempty"`
}

type CTASettings struct {
	Headline   string `json:"headline"`
	ButtonText string `json:"button_text"`
	ButtonLink string `json:"button_link,omitempty"`
	Type       string `json:"type,omitempty"`
	IsPopup    bool   `json:"is_popup,omitempty"`
}

type FooterSettings struct {
	Text       string `json:"text"`
	ShowSocial bool   `json:"show_social,omitempty"`
}

type PageBreakSettings struct{}

// DecodeSettings unmarshals the settings payload into the typed struct for
// the block's tag.
func (b Block) DecodeSettings() (any, error) {
	decode := func(out any) (any, error) {
		if len(b.Settings) == 0 {
			return out, nil
		}
		if err := json.Unmarshal(b.Settings, out); err != nil {
			return nil, fmt.Errorf("decode %s settings: %w", b.Type, err)
		}
		return out, nil
	}

	switch b.Type {
	case BlockHero:
		return decode(&HeroSettings{})
	case BlockSolution:
		return decode(&SolutionSettings{})
	case BlockFeatures:
		return decode(&FeaturesSettings{})
	case BlockColumns:
		return decode(&ColumnsSettings{})
	case BlockImageFull:
		return decode(&ImageFullSettings{})
	case BlockCTA:
		return decode(&CTASettings{})
	case BlockFooter:
		return decode(&FooterSettings{})
	case BlockPageBreak:
		return decode(&PageBreakSettings{})
	default:
		return nil, fmt.Errorf("unknown block type %q", b.Type)
	}
}
