package news

import (
	"strings"
	"testing"
)

func TestGenerateSummaryPrefersDescription(t *testing.T) {
	if got := GenerateSummary("short description", "long content"); got != "short description" {
		t.Fatalf("expected description, got %q", got)
	}
	if got := GenerateSummary("", "content only"); got != "content only" {
		t.Fatalf("expected content fallback, got %q", got)
	}
	if got := GenerateSummary("", ""); got != NoDetailsSummary {
		t.Fatalf("expected no-details fallback, got %q", got)
	}
}

func TestGenerateSummaryStripsTruncationSuffix(t *testing.T) {
	got := GenerateSummary("Big story unfolds [+1234 chars]", "")
	if got != "Big story unfolds" {
		t.Fatalf("expected suffix stripped, got %q", got)
	}

	// The marker alone carries no information.
	if got := GenerateSummary("[+99 chars]", ""); got != NoDetailsSummary {
		t.Fatalf("expected no-details fallback, got %q", got)
	}
}

func TestGenerateSummaryTruncatesToFortyWords(t *testing.T) {
	long := strings.Repeat("word ", 50)
	got := GenerateSummary(long, "")

	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis marker, got %q", got)
	}
	if n := len(strings.Fields(got)); n != 40 {
		t.Fatalf("expected exactly 40 words, got %d", n)
	}

	short := "just a few words"
	if got := GenerateSummary(short, ""); got != short {
		t.Fatalf("expected short text unchanged, got %q", got)
	}
}

func TestGenerateSummaryIdempotent(t *testing.T) {
	inputs := []string{
		strings.Repeat("lorem ipsum ", 30),
		"Already short.",
		"Trailing marker here [+512 chars]",
	}
	for _, in := range inputs {
		once := GenerateSummary(in, "")
		twice := GenerateSummary(once, "")
		if once != twice {
			t.Errorf("not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}
