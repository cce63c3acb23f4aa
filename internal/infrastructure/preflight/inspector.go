package preflight

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	pdf "github.com/ledongthuc/pdf"
)

const previewLimit = 500

// Inspector runs a cheap structural check on uploaded PDFs before they enter
// the pipeline: confirms the payload parses, counts pages, and pulls a short
// first-page text preview for the document row.
type Inspector struct{}

func New() *Inspector {
	return &Inspector{}
}

func (Inspector) Inspect(data []byte) (int, string, error) {
	if !isPDF(data) {
		return 0, "", fmt.Errorf("payload is not a PDF")
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, "", fmt.Errorf("pdf reader: %w", err)
	}

	pageCount := r.NumPage()
	if pageCount < 1 {
		return 0, "", fmt.Errorf("pdf has no pages")
	}

	preview := ""
	page := r.Page(1)
	if !page.V.IsNull() {
		// Text extraction fails on scanned or malformed pages; the preview
		// is informational, so a parse error leaves it empty.
		if text, err := page.GetPlainText(nil); err == nil {
			preview = truncate(collapseWhitespace(text), previewLimit)
		}
	}
	return pageCount, preview, nil
}

func isPDF(b []byte) bool {
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	// Never split a multi-byte rune at the cut point.
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	cut := s[:limit]
	if i := strings.LastIndexByte(cut, ' '); i > limit/2 {
		cut = cut[:i]
	}
	return cut
}
