package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/davidalcaide/proposalia/internal/core/domain"
	"github.com/davidalcaide/proposalia/internal/infrastructure/resilience"
)

// Client talks to the hosted Gemini generateContent API. Document-bearing
// calls inline the PDF as base64 next to the prompt text.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, apiKey, model string, executor *resilience.Executor) *Client {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 180 * time.Second},
		executor:   executor,
	}
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *content  `json:"system_instruction,omitempty"`
	Contents          []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generateWithPDF(ctx context.Context, system, prompt string, pdf []byte) (string, error) {
	parts := []part{
		{Text: prompt},
		{InlineData: &inlineData{
			MimeType: "application/pdf",
			Data:     base64.StdEncoding.EncodeToString(pdf),
		}},
	}
	return c.generate(ctx, system, parts)
}

func (c *Client) generateText(ctx context.Context, system, prompt string) (string, error) {
	return c.generate(ctx, system, []part{{Text: prompt}})
}

func (c *Client) generate(ctx context.Context, system string, parts []part) (string, error) {
	request := generateRequest{
		Contents: []content{{Parts: parts}},
	}
	if system != "" {
		request.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}

	path := fmt.Sprintf("/v1beta/models/%s:generateContent", c.model)

	var response generateResponse
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, path, request, &response, "generate")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "gemini.generate", call, classifyGeminiError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("gemini generate", err)
	}

	text := collectText(response)
	if text == "" {
		return "", domain.WrapError(domain.ErrInvalidResponse, "gemini generate", fmt.Errorf("empty candidate text"))
	}
	return text, nil
}

func collectText(response generateResponse) string {
	var builder strings.Builder
	for _, candidate := range response.Candidates {
		for _, p := range candidate.Content.Parts {
			builder.WriteString(p.Text)
		}
		// Only the first candidate is requested; stop either way.
		break
	}
	return strings.TrimSpace(builder.String())
}

// Analyzer implements the catalog-scan model call.
type Analyzer struct {
	client *Client
}

func NewAnalyzer(client *Client) *Analyzer {
	return &Analyzer{client: client}
}

func (a *Analyzer) ScanCatalog(
	ctx context.Context,
	pdf []byte,
	language domain.LanguageOption,
	additionalContext string,
) (domain.CatalogScan, error) {
	raw, err := a.client.generateWithPDF(ctx, buildSystemInstruction(language), buildCatalogScanPrompt(additionalContext), pdf)
	if err != nil {
		return domain.CatalogScan{}, err
	}

	payload, err := ExtractJSON(raw)
	if err != nil {
		return domain.CatalogScan{}, err
	}

	var scan domain.CatalogScan
	if err := json.Unmarshal([]byte(payload), &scan); err != nil {
		return domain.CatalogScan{}, domain.WrapError(domain.ErrInvalidResponse, "parse catalog scan", err)
	}
	if scan.Programs == nil {
		scan.Programs = []domain.ProgramSummary{}
	}
	return scan, nil
}

// Extractor implements the deep-extraction model call.
type Extractor struct {
	client *Client
}

func NewExtractor(client *Client) *Extractor {
	return &Extractor{client: client}
}

func (e *Extractor) ExtractProgram(
	ctx context.Context,
	pdf []byte,
	programTitle string,
	language domain.LanguageOption,
) (domain.ProgramIntelligence, error) {
	raw, err := e.client.generateWithPDF(ctx, buildExtractionSystemInstruction(language), buildDeepExtractionPrompt(programTitle), pdf)
	if err != nil {
		return domain.ProgramIntelligence{}, err
	}

	payload, err := ExtractJSON(raw)
	if err != nil {
		return domain.ProgramIntelligence{}, err
	}

	var intelligence domain.ProgramIntelligence
	if err := json.Unmarshal([]byte(payload), &intelligence); err != nil {
		return domain.ProgramIntelligence{}, domain.WrapError(domain.ErrInvalidResponse, "parse deep extraction", err)
	}
	return intelligence, nil
}

// Composer implements proposal generation and chat edits.
type Composer struct {
	client *Client
}

func NewComposer(client *Client) *Composer {
	return &Composer{client: client}
}

func (c *Composer) ComposeProposal(
	ctx context.Context,
	briefing domain.Briefing,
	tone string,
	opts domain.GenerationOptions,
	language domain.LanguageOption,
) (domain.ProposalContent, error) {
	prompt, err := buildProposalPrompt(briefing, tone, opts)
	if err != nil {
		return nil, err
	}

	raw, err := c.client.generateText(ctx, buildSystemInstruction(language), prompt)
	if err != nil {
		return nil, err
	}

	payload, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	var proposalContent domain.ProposalContent
	if err := json.Unmarshal([]byte(payload), &proposalContent); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidResponse, "parse proposal content", err)
	}
	return proposalContent, nil
}

func (c *Composer) EditSections(
	ctx context.Context,
	sections []domain.Block,
	instruction string,
	images []string,
	target *domain.TargetElement,
) ([]domain.Block, error) {
	prompt, err := buildEditPrompt(sections, instruction, images, target)
	if err != nil {
		return nil, err
	}

	raw, err := c.client.generateText(ctx, "", prompt)
	if err != nil {
		return nil, err
	}

	payload, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	var edited struct {
		Sections []domain.Block `json:"sections"`
	}
	if err := json.Unmarshal([]byte(payload), &edited); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidResponse, "parse edited sections", err)
	}
	return edited.Sections, nil
}
