package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type ProposalStatus string

const (
	ProposalProcessing ProposalStatus = "processing"
	ProposalReady      ProposalStatus = "ready"
	ProposalError      ProposalStatus = "error"
)

type Proposal struct {
	ID         string          `json:"id"`
	DocumentID string          `json:"document_id"`
	AgencyID   string          `json:"agency_id,omitempty"`
	Title      string          `json:"title,omitempty"`
	Tone       string          `json:"tone"`
	Format     string          `json:"format"`
	Status     ProposalStatus  `json:"status"`
	Content    ProposalContent `json:"content,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ProposalContent holds the top-level keys of the generated document
// ("sections", "visual_suggestions", legacy flat fields, or "error"). Keeping
// it keyed raw JSON lets a sections replacement preserve every other key
// untouched.
type ProposalContent map[string]json.RawMessage

const sectionsKey = "sections"

func (c ProposalContent) Sections() ([]Block, error) {
	raw, ok := c[sectionsKey]
	if !ok {
		return nil, fmt.Errorf("proposal content has no sections")
	}
	var blocks []Block
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil, fmt.Errorf("decode sections: %w", err)
	}
	return blocks, nil
}

// ReplaceSections returns a copy of the content with only the sections key
// swapped out. Edit operations go through here so visual_suggestions and any
// other top-level keys survive.
func (c ProposalContent) ReplaceSections(blocks []Block) (ProposalContent, error) {
	raw, err := json.Marshal(blocks)
	if err != nil {
		return nil, fmt.Errorf("encode sections: %w", err)
	}
	out := make(ProposalContent, len(c)+1)
	for key, value := range c {
		out[key] = value
	}
	out[sectionsKey] = raw
	return out, nil
}

// ErrorContent surfaces a generation failure through the content channel,
// which is what the consuming UI renders.
func ErrorContent(message string) ProposalContent {
	raw, _ := json.Marshal(message)
	return ProposalContent{"error": raw}
}

type BlockType string

const (
	BlockHero      BlockType = "hero"
	BlockSolution  BlockType = "solution"
	BlockFeatures  BlockType = "features"
	BlockColumns   BlockType = "columns"
	BlockImageFull BlockType = "image_full"
	BlockCTA       BlockType = "cta"
	BlockFooter    BlockType = "footer"
	BlockPageBreak BlockType = "page_break"
)

// Block is one typed section of a proposal document. The id is stable across
// edits; the settings shape depends on the type tag.
type Block struct {
	ID       string          `json:"id"`
	Type     BlockType       `json:"type"`
	Settings json.RawMessage `json:"settings"`
}

// ValidateBlocks checks the contract of a generated sections array: every
// block carries an id, a known type tag, and a settings payload that decodes
// into that type's schema.
func ValidateBlocks(blocks []Block) error {
	if len(blocks) == 0 {
		return errors.New("sections array is empty")
	}
	for i, block := range blocks {
		if block.ID == "" {
			return fmt.Errorf("block %d has no id", i)
		}
		if _, err := block.DecodeSettings(); err != nil {
			return fmt.Errorf("block %q: %w", block.ID, err)
		}
	}
	return nil
}

// BlockIDs returns the ids of a sections array in order.
func BlockIDs(blocks []Block) []string {
	ids := make([]string, 0, len(blocks))
	for _, block := range blocks {
		ids = append(ids, block.ID)
	}
	return ids
}

type CTAConfig struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// GenerationOptions are the user-chosen knobs for proposal generation.
type GenerationOptions struct {
	IncludeInstitution bool      `json:"include_institution"`
	IncludeLocation    bool      `json:"include_location"`
	CTAConfig          CTAConfig `json:"cta_config"`
	Language           string    `json:"language"`
}

// TargetElement narrows a chat edit to one block, optionally one field path
// inside its settings.
type TargetElement struct {
	BlockID string `json:"block_id"`
	Path    string `json:"path,omitempty"`
}
