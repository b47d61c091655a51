package note

import (
	"strings"
	"testing"
)

func TestNormalize_LineEndings(t *testing.T) {
	got := Normalize("line one\r\nline two\rline three")
	want := "line one\nline two\nline three"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNormalize_TrailingWhitespace(t *testing.T) {
	got := Normalize("header:   \n  body\t\t")
	want := "header:\n  body"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNormalize_CollapsesBlankRuns(t *testing.T) {
	got := Normalize("a\n\n\n\n\nb")
	want := "a\n\nb"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	// A single blank line is section-break evidence and must survive.
	if got := Normalize("a\n\nb"); got != "a\n\nb" {
		t.Errorf("single blank line was not preserved: %q", got)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	input := "  CC: chest pain\r\n\r\n\r\nHPI: started yesterday   \n"
	once := Normalize(input)
	twice := Normalize(once)
	if once != twice {
		t.Errorf("normalize is not idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
}

func TestNormalize_EmptyInput(t *testing.T) {
	if got := Normalize(""); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
	if got := Normalize("   \n\t\n  "); got != "" {
		t.Errorf("expected whitespace-only input to normalize empty, got %q", got)
	}
}

func TestNormalizeBounded_Truncation(t *testing.T) {
	input := strings.Repeat("a", MaxNoteLength+100)
	got, truncated := normalizeBounded(input)
	if !truncated {
		t.Fatal("expected truncation flag for oversized input")
	}
	if len(got) > MaxNoteLength {
		t.Errorf("expected at most %d chars, got %d", MaxNoteLength, len(got))
	}

	_, truncated = normalizeBounded("short note")
	if truncated {
		t.Error("unexpected truncation flag for short input")
	}
}
