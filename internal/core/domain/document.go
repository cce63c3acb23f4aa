package domain

import "time"

type DocumentStatus string

const (
	StatusPending    DocumentStatus = "pending"
	StatusProcessing DocumentStatus = "processing"
	StatusProcessed  DocumentStatus = "processed"
	StatusError      DocumentStatus = "error"
)

// StageMetadata is the human-readable progress ping pushed to the document
// row before and after every pipeline step.
type StageMetadata struct {
	Stage     string    `json:"stage"`
	Message   string    `json:"message"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Document struct {
	ID                string           `json:"id"`
	AgencyID          string           `json:"agency_id,omitempty"`
	Filename          string           `json:"filename"`
	StoragePath       string           `json:"storage_path"`
	Status            DocumentStatus   `json:"status"`
	Briefing          *Briefing        `json:"briefing,omitempty"`
	AvailablePrograms []ProgramSummary `json:"available_programs,omitempty"`
	OutputLanguage    string           `json:"output_language"`
	AdditionalContext string           `json:"additional_context,omitempty"`
	ProcessingError   string           `json:"processing_error,omitempty"`
	Metadata          StageMetadata    `json:"metadata"`
	PageCount         int              `json:"page_count,omitempty"`
	TextPreview       string           `json:"text_preview,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// ProgramSummary is a catalog-scan candidate. When a document holds several
// programs the user picks one and deep extraction runs against it.
type ProgramSummary struct {
	Title          string `json:"title"`
	OriginalTitle  string `json:"original_title,omitempty"`
	TargetAudience string `json:"target_audience"`
	Summary        string `json:"summary"`
	Duration       string `json:"duration"`
}

// CatalogScan is the parsed result of the stage-1 model call.
type CatalogScan struct {
	IsMultiProgram bool             `json:"is_multi_program"`
	Programs       []ProgramSummary `json:"programs"`
}

type Module struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Briefing is the legacy extraction shape proposal generation reads. It is
// replaced wholesale on re-extraction, never patched field by field.
type Briefing struct {
	Title              string   `json:"title"`
	OriginalTitle      string   `json:"original_title,omitempty"`
	Objectives         []string `json:"objectives"`
	TargetAudience     string   `json:"target_audience"`
	Duration           string   `json:"duration"`
	KeyHighlights      []string `json:"key_highlights"`
	Modules            []Module `json:"modules"`
	Methodology        string   `json:"methodology"`
	Location           Location `json:"location"`
	InstitutionSummary string   `json:"institution_summary"`
}
