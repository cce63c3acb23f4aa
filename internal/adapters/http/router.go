package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/davidalcaide/proposalia/internal/core/domain"
	"github.com/davidalcaide/proposalia/internal/core/ports"
	"github.com/davidalcaide/proposalia/internal/observability/metrics"
)

// AssetExporter renders a document's commercial assets as a downloadable
// workbook.
type AssetExporter interface {
	Export(assets []domain.CommercialAsset) ([]byte, error)
}

type Router struct {
	ingest    ports.DocumentIngestor
	trigger   ports.PipelineTrigger
	proposals ports.ProposalService

	docRepo      ports.DocumentRepository
	proposalRepo ports.ProposalRepository
	assetRepo    ports.AssetRepository
	exporter     AssetExporter

	metrics *metrics.HTTPServerMetrics
	opts    Options
}

type Options struct {
	ServiceName    string
	APIToken       string
	MaxUploadBytes int64

	RateLimitPerSecond float64
	RateLimitBurst     int
	MaxConcurrent      int
	BackpressureWait   time.Duration
}

func NewRouter(
	ingest ports.DocumentIngestor,
	trigger ports.PipelineTrigger,
	proposals ports.ProposalService,
	docRepo ports.DocumentRepository,
	proposalRepo ports.ProposalRepository,
	assetRepo ports.AssetRepository,
	exporter AssetExporter,
	m *metrics.HTTPServerMetrics,
	opts Options,
) *Router {
	if opts.ServiceName == "" {
		opts.ServiceName = "api"
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 25 << 20
	}
	if opts.BackpressureWait <= 0 {
		opts.BackpressureWait = 2 * time.Second
	}
	return &Router{
		ingest:       ingest,
		trigger:      trigger,
		proposals:    proposals,
		docRepo:      docRepo,
		proposalRepo: proposalRepo,
		assetRepo:    assetRepo,
		exporter:     exporter,
		metrics:      m,
		opts:         opts,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/", rt.documentSubtree)
	mux.HandleFunc("/v1/proposals", rt.createProposal)
	mux.HandleFunc("/v1/proposals/", rt.proposalSubtree)
	mux.HandleFunc("/process-document", rt.processDocument)
	mux.HandleFunc("/extract-details", rt.extractDetails)

	var handler http.Handler = mux
	handler = authMiddleware(handler, rt.opts.APIToken)
	if rt.opts.MaxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.opts.MaxConcurrent, rt.opts.BackpressureWait)
	}
	if rt.opts.RateLimitPerSecond > 0 {
		handler = rateLimitMiddleware(handler, rt.opts.RateLimitPerSecond, rt.opts.RateLimitBurst)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.opts.ServiceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, rt.opts.MaxUploadBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingest.Upload(
		r.Context(),
		fileHeader.Filename,
		r.FormValue("language"),
		r.FormValue("additional_context"),
		file,
	)
	if rt.metrics != nil {
		size := int64(0)
		if doc != nil {
			size = fileHeader.Size
		}
		rt.metrics.RecordUpload(rt.opts.ServiceName, size, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// documentSubtree routes /v1/documents/{id}[/assets[/export]].
func (rt *Router) documentSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if parts[0] == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}
	id := parts[0]

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			rt.getDocument(w, r, id)
		case http.MethodDelete:
			rt.deleteDocument(w, r, id)
		default:
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		}
	case len(parts) == 2 && parts[1] == "assets":
		rt.listAssets(w, r, id)
	case len(parts) == 3 && parts[1] == "assets" && parts[2] == "export":
		rt.exportAssets(w, r, id)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request, id string) {
	doc, err := rt.docRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request, id string) {
	if err := rt.ingest.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) listAssets(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	assets, err := rt.assetRepo.ListByDocument(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if assets == nil {
		assets = []domain.CommercialAsset{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": assets})
}

func (rt *Router) exportAssets(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	assets, err := rt.assetRepo.ListByDocument(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := rt.exporter.Export(assets)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="assets_`+id+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// processDocument is the catalog-scan trigger. It acks 202 once the job is
// queued; the client watches the document row for progress.
func (rt *Router) processDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		DocumentID     string `json:"document_id"`
		StoragePath    string `json:"storage_path"`
		TargetLanguage string `json:"target_language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.DocumentID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document_id is required"})
		return
	}

	if err := rt.trigger.TriggerCatalogScan(r.Context(), req.DocumentID, req.StoragePath, req.TargetLanguage); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "processing", "document_id": req.DocumentID})
}

func (rt *Router) extractDetails(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		DocumentID     string `json:"document_id"`
		ProgramTitle   string `json:"program_title"`
		StoragePath    string `json:"storage_path"`
		TargetLanguage string `json:"target_language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.DocumentID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document_id is required"})
		return
	}

	if err := rt.trigger.TriggerDeepExtraction(r.Context(), req.DocumentID, req.StoragePath, req.ProgramTitle, req.TargetLanguage); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "processing", "document_id": req.DocumentID})
}

func (rt *Router) createProposal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		DocumentID string `json:"document_id"`
		Tone       string `json:"tone"`
		Format     string `json:"format"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.DocumentID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document_id is required"})
		return
	}

	proposal, err := rt.proposals.CreateProposal(r.Context(), req.DocumentID, req.Tone, req.Format)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, proposal)
}

// proposalSubtree routes /v1/proposals/{id}[/generate|/edit].
func (rt *Router) proposalSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/proposals/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if parts[0] == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "proposal id is required"})
		return
	}
	id := parts[0]

	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		rt.getProposal(w, r, id)
	case len(parts) == 2 && parts[1] == "generate":
		rt.generateProposal(w, r, id)
	case len(parts) == 2 && parts[1] == "edit":
		rt.editProposal(w, r, id)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (rt *Router) getProposal(w http.ResponseWriter, r *http.Request, id string) {
	proposal, err := rt.proposalRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}

func (rt *Router) generateProposal(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	// An empty body means default options.
	var opts domain.GenerationOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	err := rt.proposals.Generate(r.Context(), id, opts)
	if rt.metrics != nil {
		rt.metrics.RecordProposalGeneration(rt.opts.ServiceName, time.Since(start), err)
	}
	if err != nil {
		// Generation failures are already persisted on the row; a not-found
		// is the only case the caller can act on differently.
		if domain.IsKind(err, domain.ErrProposalNotFound) {
			writeError(w, err)
			return
		}
	}
	proposal, getErr := rt.proposalRepo.GetByID(r.Context(), id)
	if getErr != nil {
		writeError(w, getErr)
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}

func (rt *Router) editProposal(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Instruction   string                `json:"instruction"`
		Images        []string              `json:"images"`
		TargetElement *domain.TargetElement `json:"target_element"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	err := rt.proposals.Edit(r.Context(), id, req.Instruction, req.Images, req.TargetElement)
	if rt.metrics != nil {
		rt.metrics.RecordProposalEdit(rt.opts.ServiceName, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	proposal, err := rt.proposalRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFromError(err), map[string]string{"error": err.Error()})
}

func statusFromError(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrDocumentNotFound), domain.IsKind(err, domain.ErrProposalNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrBriefingMissing):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrInvalidResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
