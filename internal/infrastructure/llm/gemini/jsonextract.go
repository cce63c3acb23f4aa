package gemini

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/davidalcaide/proposalia/internal/core/domain"
)

// ExtractJSON pulls the JSON object out of a raw model response. Responses
// may arrive wrapped in Markdown code fences (optionally tagged json) or with
// prose around the object. The rule: prefer the first fenced body, otherwise
// the first top-level {...} span. Anything that does not yield a valid JSON
// object fails the whole operation; there is no partial recovery.
func ExtractJSON(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", domain.WrapError(domain.ErrInvalidResponse, "extract json", errors.New("empty response"))
	}

	if strings.Contains(text, "```") {
		text = unfence(text)
	} else {
		text = firstObjectSpan(text)
	}

	text = strings.TrimSpace(text)
	if text == "" || !json.Valid([]byte(text)) {
		return "", domain.WrapError(domain.ErrInvalidResponse, "extract json", errors.New("no parseable JSON object in response"))
	}
	return text, nil
}

func unfence(text string) string {
	start := strings.Index(text, "```")
	body := text[start+3:]
	// Optional language tag directly after the opening fence.
	body = strings.TrimPrefix(body, "json")
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return body
}

// firstObjectSpan returns the first balanced top-level {...} span, tracking
// string literals so braces inside values do not end the scan early.
func firstObjectSpan(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
