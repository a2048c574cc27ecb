package news

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// HashtagMapping translates a hashtag token into an upstream category plus
// search keyword.
type HashtagMapping struct {
	Tag      string `json:"tag" yaml:"tag"`
	Category string `json:"category" yaml:"category"`
	Keyword  string `json:"keyword" yaml:"keyword"`
}

// HashtagRegistry holds hashtag mappings in declaration order. Order matters:
// trending-hashtag ties are broken by it.
type HashtagRegistry struct {
	entries []HashtagMapping
	idx     map[string]HashtagMapping
}

// hashtagFile is the shape of an override file.
type hashtagFile struct {
	Hashtags []HashtagMapping `json:"hashtags" yaml:"hashtags"`
}

// defaultHashtagMappings is the built-in hashtag table.
var defaultHashtagMappings = []HashtagMapping{
	{Tag: "#technology", Category: "technology", Keyword: "technology"},
	{Tag: "#tech", Category: "technology", Keyword: "tech"},
	{Tag: "#sports", Category: "sports", Keyword: "sports"},
	{Tag: "#politics", Category: "general", Keyword: "politics"},
	{Tag: "#business", Category: "business", Keyword: "business"},
	{Tag: "#entertainment", Category: "entertainment", Keyword: "entertainment"},
	{Tag: "#health", Category: "health", Keyword: "health"},
	{Tag: "#science", Category: "science", Keyword: "science"},
	{Tag: "#bitcoin", Category: "business", Keyword: "bitcoin cryptocurrency"},
	{Tag: "#cryptocurrency", Category: "business", Keyword: "cryptocurrency"},
	{Tag: "#digitalcurrency", Category: "business", Keyword: "digital currency"},
	{Tag: "#apple", Category: "technology", Keyword: "Apple"},
}

// DefaultHashtags returns the built-in hashtag registry.
func DefaultHashtags() *HashtagRegistry {
	reg, err := newHashtagRegistry(defaultHashtagMappings)
	if err != nil {
		// The built-in table is validated by tests; this cannot happen at runtime.
		panic(err)
	}
	return reg
}

// LoadHashtags loads a hashtag registry from a YAML or JSON override file.
func LoadHashtags(path string) (*HashtagRegistry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("hashtags file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hashtags file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read hashtags file: %w", err)
	}

	parsed, err := parseHashtagFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Hashtags) == 0 {
		return nil, errors.New("hashtags file contains no hashtag entries")
	}

	return newHashtagRegistry(parsed.Hashtags)
}

func parseHashtagFile(data []byte, ext string) (hashtagFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var parsed hashtagFile
		if err := d.fn(data, &parsed); err == nil {
			return parsed, nil
		}
	}

	return hashtagFile{}, errors.New("hashtags file format not recognized (expected YAML or JSON)")
}

func newHashtagRegistry(mappings []HashtagMapping) (*HashtagRegistry, error) {
	reg := &HashtagRegistry{
		entries: make([]HashtagMapping, 0, len(mappings)),
		idx:     make(map[string]HashtagMapping, len(mappings)),
	}

	for i, m := range mappings {
		m = sanitizeHashtagMapping(m)
		if err := validateHashtagMapping(m); err != nil {
			return nil, fmt.Errorf("hashtag[%d]: %w", i, err)
		}
		if _, exists := reg.idx[m.Tag]; exists {
			return nil, fmt.Errorf("duplicate hashtag %q", m.Tag)
		}
		reg.entries = append(reg.entries, m)
		reg.idx[m.Tag] = m
	}

	return reg, nil
}

func sanitizeHashtagMapping(m HashtagMapping) HashtagMapping {
	m.Tag = strings.ToLower(strings.TrimSpace(m.Tag))
	if m.Tag != "" && !strings.HasPrefix(m.Tag, "#") {
		m.Tag = "#" + m.Tag
	}
	m.Category = strings.ToLower(strings.TrimSpace(m.Category))
	m.Keyword = strings.TrimSpace(m.Keyword)
	return m
}

func validateHashtagMapping(m HashtagMapping) error {
	if m.Tag == "" || m.Tag == "#" {
		return errors.New("tag is required")
	}
	if m.Keyword == "" {
		return fmt.Errorf("keyword is required for hashtag %q", m.Tag)
	}
	return nil
}

// Lookup returns the mapping for tag (case-insensitive), if declared.
func (r *HashtagRegistry) Lookup(tag string) (HashtagMapping, bool) {
	if r == nil {
		return HashtagMapping{}, false
	}
	m, ok := r.idx[strings.ToLower(strings.TrimSpace(tag))]
	return m, ok
}

// Entries returns the mappings in declaration order.
func (r *HashtagRegistry) Entries() []HashtagMapping {
	if r == nil {
		return nil
	}
	out := make([]HashtagMapping, len(r.entries))
	copy(out, r.entries)
	return out
}
