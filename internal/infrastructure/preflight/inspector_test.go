package preflight

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestInspectRejectsNonPDFPayload(t *testing.T) {
	inspector := New()
	_, _, err := inspector.Inspect([]byte("plain text, not a pdf"))
	if err == nil {
		t.Fatalf("expected error for non-PDF payload")
	}
}

func TestInspectRejectsTruncatedPDF(t *testing.T) {
	inspector := New()
	_, _, err := inspector.Inspect([]byte("%PDF-1.7\ngarbage"))
	if err == nil {
		t.Fatalf("expected error for truncated PDF")
	}
}

func TestCollapseWhitespace(t *testing.T) {
	got := collapseWhitespace("  Master \n\t en  IA \n")
	if got != "Master en IA" {
		t.Fatalf("collapseWhitespace() = %q", got)
	}
}

func TestTruncateCutsAtWordBoundary(t *testing.T) {
	text := strings.Repeat("palabra ", 100)
	got := truncate(text, 50)
	if len(got) > 50 {
		t.Fatalf("expected at most 50 bytes, got %d", len(got))
	}
	if strings.HasSuffix(got, " ") {
		t.Fatalf("expected no trailing space, got %q", got)
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	// No spaces past limit/2, so the cut lands inside the rune sequence.
	text := strings.Repeat("á", 40)
	got := truncate(text, 51)
	if !utf8.ValidString(got) {
		t.Fatalf("truncate produced invalid UTF-8: %q", got)
	}
	if len(got) > 51 {
		t.Fatalf("expected at most 51 bytes, got %d", len(got))
	}
}

func TestTruncateKeepsShortText(t *testing.T) {
	if got := truncate("corto", 50); got != "corto" {
		t.Fatalf("truncate() = %q", got)
	}
}
