package urlnorm

import (
	"strings"
	"testing"

	"github.com/samachar-app/samachar/internal/domain"
)

func TestNormalizeImageURLSentinels(t *testing.T) {
	n := New()
	for _, raw := range []string{"", "   ", "null", "undefined", " null "} {
		if got := n.NormalizeImageURL(raw); got != domain.PlaceholderImage {
			t.Errorf("NormalizeImageURL(%q) = %q, want placeholder", raw, got)
		}
	}
}

func TestNormalizeImageURLUpgradesProtocolRelative(t *testing.T) {
	n := New()
	got := n.NormalizeImageURL("//cdn.example.com/a.jpg")
	if got != "https://cdn.example.com/a.jpg" {
		t.Fatalf("protocol-relative upgrade: got %q", got)
	}
}

func TestNormalizeImageURLStripsTrackingKeepsCDNParams(t *testing.T) {
	n := New()
	got := n.NormalizeImageURL("http://x.com/i.jpg?utm_source=x&w=200")
	if got != "https://x.com/i.jpg?w=200" {
		t.Fatalf("tracking strip: got %q", got)
	}

	got = n.NormalizeImageURL("https://x.com/i.jpg?fbclid=abc&gclid=def&h=300&utm_campaign=c")
	if got != "https://x.com/i.jpg?h=300" {
		t.Fatalf("tracking strip: got %q", got)
	}
}

func TestNormalizeImageURLStripsFragment(t *testing.T) {
	n := New()
	if got := n.NormalizeImageURL("https://x.com/a.jpg#section"); got != "https://x.com/a.jpg" {
		t.Fatalf("fragment strip: got %q", got)
	}
}

func TestNormalizeImageURLEncodesWhitespace(t *testing.T) {
	n := New()
	got := n.NormalizeImageURL("https://cdn.example.com/my image.jpg")
	if strings.ContainsAny(got, " \t") {
		t.Fatalf("expected whitespace to be encoded, got %q", got)
	}
	if !strings.Contains(got, "my%20image.jpg") {
		t.Fatalf("expected %%20 encoding, got %q", got)
	}
}

func TestNormalizeImageURLUnrecoverableInput(t *testing.T) {
	n := New()
	cases := []string{
		"http://bad\x00url",
		"example.com/no-scheme.jpg",
		"ftp://files.example.com/a.jpg",
	}
	for _, raw := range cases {
		if got := n.NormalizeImageURL(raw); got != domain.PlaceholderImage {
			t.Errorf("NormalizeImageURL(%q) = %q, want placeholder", raw, got)
		}
	}
}

func TestNormalizeImageURLRejectsPathologicalLength(t *testing.T) {
	n := New()
	long := "https://x.com/" + strings.Repeat("a", 2100)
	if got := n.NormalizeImageURL(long); got != domain.PlaceholderImage {
		t.Fatalf("expected placeholder for oversized URL, got %d chars", len(got))
	}
}

func TestNormalizeImageURLIdempotent(t *testing.T) {
	n := New()
	inputs := []string{
		"",
		"null",
		"//cdn.example.com/a.jpg",
		"http://x.com/i.jpg?utm_source=x&w=200",
		"https://cdn.example.com/my image.jpg",
		"https://x.com/a.jpg#frag",
		"not a url at all",
		domain.PlaceholderImage,
	}
	for _, raw := range inputs {
		once := n.NormalizeImageURL(raw)
		twice := n.NormalizeImageURL(once)
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", raw, once, twice)
		}
	}
}

func TestNormalizeImageURLMemoizes(t *testing.T) {
	n := New()
	raw := "http://x.com/i.jpg?w=1"
	first := n.NormalizeImageURL(raw)
	if _, ok := n.imageMemo[raw]; !ok {
		t.Fatal("expected memo entry after first call")
	}
	if second := n.NormalizeImageURL(raw); second != first {
		t.Fatalf("memoized result mismatch: %q vs %q", first, second)
	}

	n.Reset()
	if len(n.imageMemo) != 0 {
		t.Fatal("expected memo table cleared after Reset")
	}
}

func TestNormalizeLinkURL(t *testing.T) {
	n := New()
	cases := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"null", ""},
		{"undefined", ""},
		{"https://example.com/story#comments", "https://example.com/story"},
		{"example.com/story", "https://example.com/story"},
		{"://example.com/story", "https://example.com/story"},
		{"//example.com/story", "https://example.com/story"},
		{"http://example.com/story", "http://example.com/story"},
		{"http://bad\x00url", ""},
	}
	for _, tc := range cases {
		if got := n.NormalizeLinkURL(tc.raw); got != tc.want {
			t.Errorf("NormalizeLinkURL(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
