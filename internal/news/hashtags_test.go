package news

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeHashtagFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefaultHashtags(t *testing.T) {
	reg := DefaultHashtags()

	m, ok := reg.Lookup("#bitcoin")
	if !ok {
		t.Fatal("expected #bitcoin in the default table")
	}
	if m.Keyword != "bitcoin cryptocurrency" {
		t.Errorf("unexpected keyword %q", m.Keyword)
	}
	if m.Category != "business" {
		t.Errorf("unexpected category %q", m.Category)
	}

	if len(reg.Entries()) != len(defaultHashtagMappings) {
		t.Fatalf("expected %d entries, got %d", len(defaultHashtagMappings), len(reg.Entries()))
	}
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	reg := DefaultHashtags()
	for _, tag := range []string{"#Apple", "#APPLE", "  #apple  "} {
		if _, ok := reg.Lookup(tag); !ok {
			t.Errorf("expected lookup hit for %q", tag)
		}
	}
	if _, ok := reg.Lookup("#nosuchtag"); ok {
		t.Error("unexpected lookup hit for undeclared tag")
	}
}

func TestLoadHashtagsYAML(t *testing.T) {
	path := writeHashtagFile(t, "hashtags.yaml", `
hashtags:
  - tag: "#GoLang"
    category: Technology
    keyword: golang programming
  - tag: ai
    keyword: artificial intelligence
`)

	reg, err := LoadHashtags(path)
	if err != nil {
		t.Fatalf("LoadHashtags: %v", err)
	}

	m, ok := reg.Lookup("#golang")
	if !ok {
		t.Fatal("expected sanitized lowercase tag")
	}
	if m.Category != "technology" {
		t.Errorf("category not lowercased: %q", m.Category)
	}

	// A bare token gains the # prefix.
	if _, ok := reg.Lookup("#ai"); !ok {
		t.Error("expected #ai after prefix sanitization")
	}

	entries := reg.Entries()
	if len(entries) != 2 || entries[0].Tag != "#golang" {
		t.Fatalf("declaration order lost: %+v", entries)
	}
}

func TestLoadHashtagsJSON(t *testing.T) {
	path := writeHashtagFile(t, "hashtags.json",
		`{"hashtags":[{"tag":"#ev","category":"business","keyword":"electric vehicles"}]}`)

	reg, err := LoadHashtags(path)
	if err != nil {
		t.Fatalf("LoadHashtags: %v", err)
	}
	if _, ok := reg.Lookup("#ev"); !ok {
		t.Fatal("expected #ev from JSON file")
	}
}

func TestLoadHashtagsRejectsDuplicates(t *testing.T) {
	path := writeHashtagFile(t, "dup.yaml", `
hashtags:
  - tag: "#news"
    keyword: news
  - tag: "NEWS"
    keyword: more news
`)

	if _, err := LoadHashtags(path); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate tag error, got %v", err)
	}
}

func TestLoadHashtagsRejectsMissingKeyword(t *testing.T) {
	path := writeHashtagFile(t, "bad.yaml", `
hashtags:
  - tag: "#empty"
`)

	if _, err := LoadHashtags(path); err == nil {
		t.Fatal("expected validation error for missing keyword")
	}
}

func TestLoadHashtagsErrors(t *testing.T) {
	if _, err := LoadHashtags(""); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := LoadHashtags(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	empty := writeHashtagFile(t, "empty.yaml", "hashtags: []\n")
	if _, err := LoadHashtags(empty); err == nil {
		t.Error("expected error for empty hashtag list")
	}

	garbage := writeHashtagFile(t, "garbage.json", "{not json")
	if _, err := LoadHashtags(garbage); err == nil {
		t.Error("expected error for unparseable file")
	}
}
