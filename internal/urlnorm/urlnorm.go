package urlnorm

import (
	"net/url"
	"strings"
	"sync"
	"unicode"

	"github.com/samachar-app/samachar/internal/domain"
)

// Package urlnorm repairs image and link URLs returned by the upstream API.
// Upstream article data is untrusted and frequently malformed (protocol-relative
// URLs, tracking junk, occasionally unparseable strings); every caller receives
// a safe value and never an error.

const maxURLLength = 2000

// Normalizer validates and repairs URLs, memoizing image results by raw input
// for the lifetime of the instance.
type Normalizer struct {
	mu        sync.RWMutex
	imageMemo map[string]string
}

// New builds a Normalizer with an empty memo table.
func New() *Normalizer {
	return &Normalizer{imageMemo: make(map[string]string)}
}

// NormalizeImageURL returns a safe image URL for raw, or the placeholder
// sentinel when the input is unusable. The result is idempotent and memoized
// by the raw input string.
func (n *Normalizer) NormalizeImageURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if isSentinel(trimmed) {
		return domain.PlaceholderImage
	}

	n.mu.RLock()
	cached, ok := n.imageMemo[raw]
	n.mu.RUnlock()
	if ok {
		return cached
	}

	fixed := repairImageURL(trimmed)

	n.mu.Lock()
	n.imageMemo[raw] = fixed
	n.mu.Unlock()
	return fixed
}

// NormalizeLinkURL returns a safe article link for raw, or the empty string
// when the input is unusable. Links have no visual fallback, so unlike the
// image variant there is no placeholder.
func (n *Normalizer) NormalizeLinkURL(raw string) string {
	s := strings.TrimSpace(raw)
	if isSentinel(s) {
		return ""
	}

	if strings.HasPrefix(s, "//") {
		s = "https:" + s
	} else if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "https://" + strings.TrimPrefix(s, "://")
	}

	u, ok := parseAbsolute(s)
	if !ok {
		u, ok = parseAbsolute(encodeWhitespace(s))
		if !ok {
			return ""
		}
	}

	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// Reset clears the memo table. Used by the explicit cache-clear path.
func (n *Normalizer) Reset() {
	n.mu.Lock()
	n.imageMemo = make(map[string]string)
	n.mu.Unlock()
}

// repairImageURL applies the repair pipeline to a trimmed, non-sentinel input.
func repairImageURL(s string) string {
	if strings.HasPrefix(s, "//") {
		s = "https:" + s
	}

	u, ok := parseAbsolute(s)
	if !ok {
		u, ok = parseAbsolute(encodeWhitespace(s))
		if !ok {
			return domain.PlaceholderImage
		}
	}

	if u.Scheme == "http" {
		u.Scheme = "https"
	}

	// Drop tracking parameters but keep everything else: remaining query
	// params may encode CDN resize directives and must survive.
	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			if isTrackingParam(key) {
				q.Del(key)
			}
		}
		u.RawQuery = q.Encode()
	}

	u.Fragment = ""
	u.RawFragment = ""

	fixed := u.String()
	if len(fixed) > maxURLLength {
		return domain.PlaceholderImage
	}
	return fixed
}

// parseAbsolute parses s and requires an http(s) URL with a host.
func parseAbsolute(s string) (*url.URL, bool) {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	return u, true
}

// isTrackingParam matches the fixed set of tracking query parameters.
func isTrackingParam(key string) bool {
	key = strings.ToLower(key)
	return strings.HasPrefix(key, "utm_") || key == "fbclid" || key == "gclid"
}

// isSentinel reports whether s is one of the unusable upstream values.
func isSentinel(s string) bool {
	return s == "" || s == "null" || s == "undefined"
}

// encodeWhitespace percent-encodes whitespace so a second parse attempt can
// succeed on otherwise valid URLs containing raw spaces.
func encodeWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			b.WriteString("%20")
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
