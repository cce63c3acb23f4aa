package domain

type JobKind string

const (
	JobCatalogScan    JobKind = "catalog_scan"
	JobDeepExtraction JobKind = "deep_extraction"
)

// ExtractionJob is the queue payload between the trigger endpoints and the
// worker. Language is already resolved at trigger time so the worker never
// re-reads it from the row.
type ExtractionJob struct {
	Kind         JobKind `json:"kind"`
	DocumentID   string  `json:"document_id"`
	StoragePath  string  `json:"storage_path"`
	ProgramTitle string  `json:"program_title,omitempty"`
	Language     string  `json:"language"`
}
