package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/davidalcaide/proposalia/internal/core/domain"
)

// Prompt builders are pure functions of their inputs so they can be
// golden-tested without touching the model.

func buildSystemInstruction(language domain.LanguageOption) string {
	return fmt.Sprintf(`You write every piece of output text in %s.
%s
Respond only with the JSON object requested by the prompt. No commentary.`, language.Name, language.ToneRule)
}

func buildExtractionSystemInstruction(language domain.LanguageOption) string {
	return fmt.Sprintf(`You write every piece of output text in %s, translating the source document faithfully and completely into that language. Never mix languages in the output.
%s
Respond only with the JSON object requested by the prompt. No commentary.`, language.Name, language.ToneRule)
}

func buildCatalogScanPrompt(additionalContext string) string {
	var builder strings.Builder
	builder.WriteString(`You are an expert analyst of educational catalogs.
Analyze the attached PDF document.

GOAL: quickly and precisely identify the educational programs it contains.

INSTRUCTIONS:
1. Detect whether the document covers a SINGLE program or a CATALOG with several.
2. For EACH program detected, extract ONLY:
   - "title": program name in the output language.
   - "original_title": program name exactly as printed in the document, when it differs.
   - "target_audience": who it is aimed at (brief).
   - "summary": an executive summary of 3-4 sentences about the program.
   - "duration": approximate duration, when stated.
`)

	if additionalContext != "" {
		builder.WriteString("\nADDITIONAL CONTEXT FROM THE AGENCY:\n")
		builder.WriteString(additionalContext)
		builder.WriteString("\n")
	}

	builder.WriteString(`
RESPONSE: return a JSON object with this structure:
{
  "is_multi_program": boolean,
  "programs": [
    { "title": "...", "original_title": "...", "target_audience": "...", "summary": "...", "duration": "..." }
  ]
}

IMPORTANT: respond ONLY with the valid JSON. No extra text.`)
	return builder.String()
}

func buildDeepExtractionPrompt(programTitle string) string {
	return fmt.Sprintf(`Analyze this educational PDF focused EXCLUSIVELY on the program titled: %q.

Return a JSON object with exactly three top-level groups:

1. "core_data":
   - "title": official program name in the output language.
   - "original_title": name exactly as printed, when it differs.
   - "objectives": list of the main learning objectives.
   - "target_audience": detailed profile of the ideal student.
   - "duration": duration and workload.
   - "modules": list of modules or thematic units, each with "name" and "summary".
   - "methodology": brief description of the methodology (on-site, online, case studies, etc).
   - "location": { "city": "...", "country": "..." }.
   - "institution_summary": short summary of the institution behind the program.

2. "marketing_assets":
   - "key_highlights": 4-5 strong points or unique benefits of the program.
   - "unique_selling_points": what sets it apart from competing programs.
   - "emotional_hooks": short phrases appealing to the student's aspiration.
   - "seo_keywords": search keywords a prospect would use.

3. "social_raw":
   - "linkedin_post": a ready-to-publish LinkedIn post promoting the program.
   - "instagram_caption": a ready-to-publish Instagram caption.
   - "email_subject_lines": 3 subject lines for a promotional email.

IMPORTANT: do not invent facts. When something is missing, write coherent text grounded in the document's context. Respond ONLY with the JSON.`, programTitle)
}

// blockCatalog is the authoritative settings contract between the generation
// and edit prompts and the rendering layer. Field names must not drift.
const blockCatalog = `hero:     { headline, intro, image_prompt?, logo_position: left|center|right,
            text_align: left|center|right, overlay_opacity: 0-100,
            headline_size?: "N%", intro_size?: "N%" }
solution: { title, text, text_align, title_size?, text_size? }
features: { title, items: string[], text_align, title_size? }
columns:  { layout: "4-8"|"8-4"|"6-6"|"4-4-4",
            left_content:{type: text|image, value}, right_content:{...}, third_content?:{...} }
image_full: { image_url | image_prompt, caption? }
cta:      { headline, button_text, button_link?, type?, is_popup? }
footer:   { text, show_social?: boolean }
page_break: {}`

func buildProposalPrompt(briefing domain.Briefing, tone string, opts domain.GenerationOptions) (string, error) {
	briefingJSON, err := json.Marshal(briefing)
	if err != nil {
		return "", fmt.Errorf("marshal briefing: %w", err)
	}

	var rules strings.Builder
	if opts.IncludeInstitution {
		rules.WriteString("- Weave the institution summary into the narrative to build authority.\n")
	}
	if opts.IncludeLocation {
		rules.WriteString("- Mention the program location where it strengthens the offer.\n")
	}
	if opts.CTAConfig.Value != "" {
		fmt.Fprintf(&rules, "- The cta block must use this destination (%s): %s\n", opts.CTAConfig.Type, opts.CTAConfig.Value)
	}

	return fmt.Sprintf(`You are an elite educational marketing strategist. Transform the following BRIEFING into an irresistible commercial proposal built from typed content blocks.

FRAMEWORK:
- Leadership and transformation: focus on the change the student will experience.
- AIDA: capture attention immediately and guide the reader to desire.
- Tone: %s (rich, dynamic, persuasive vocabulary).

PROGRAM BRIEFING:
%s

BLOCK CATALOG (the only valid types; settings must follow these schemas exactly):
%s

RESPONSE RULES:
1. Return ONLY a JSON object shaped as:
   { "sections": [ { "id": "...", "type": "...", "settings": { ... } } ], "visual_suggestions": "..." }
2. Every block carries a unique, descriptive "id" (for example "hero-main", "features-benefits").
3. Open with a hero block and close with a cta followed by a footer.
4. "image_prompt" values are descriptive ENGLISH prompts for stock photography (for example "cinematic photo of visionary leader in modern city office, sunrise light, 8k").
5. Headlines must have impact, never generic ("Master the Art of..." instead of "Course of...").
%s
Respond ONLY with the JSON.`, tone, briefingJSON, blockCatalog, rules.String()), nil
}

func buildEditPrompt(
	sections []domain.Block,
	instruction string,
	images []string,
	target *domain.TargetElement,
) (string, error) {
	sectionsJSON, err := json.Marshal(sections)
	if err != nil {
		return "", fmt.Errorf("marshal sections: %w", err)
	}

	var extras strings.Builder
	if target != nil {
		fmt.Fprintf(&extras, "\nTARGET ELEMENT: prefer modifying the block with id %q", target.BlockID)
		if target.Path != "" {
			fmt.Fprintf(&extras, ", field path %q", target.Path)
		}
		extras.WriteString(". Leave every other block untouched unless the instruction demands otherwise.\n")
	}
	if len(images) > 0 {
		extras.WriteString("\nIMAGES UPLOADED BY THE USER (use their URLs where the instruction calls for images):\n")
		for _, url := range images {
			extras.WriteString("- " + url + "\n")
		}
	}

	return fmt.Sprintf(`You are an elite educational marketing strategist editing a block-based commercial proposal.

CURRENT SECTIONS:
%s

USER INSTRUCTION:
%q
%s
BLOCK CATALOG (the only valid types; settings must follow these schemas exactly):
%s

RESPONSE RULES:
1. Return ONLY a JSON object shaped as: { "sections": [ { "id": "...", "type": "...", "settings": { ... } } ] }.
2. CRITICAL: blocks you do not conceptually change MUST keep their exact "id" string. Only newly added blocks get a fresh descriptive unique id.
3. Apply the instruction faithfully; do not rewrite content the instruction does not touch.
4. Do not invent facts that contradict the existing content.
Respond ONLY with the JSON.`, sectionsJSON, instruction, extras.String(), blockCatalog), nil
}
