package news

import (
	"regexp"
	"strings"
)

// NoDetailsSummary is returned when an article carries neither description
// nor content.
const NoDetailsSummary = "No details available. Tap to read full article."

const summaryWordLimit = 40

// truncationSuffix matches the "[+1234 chars]" marker NewsAPI appends to
// truncated content fields.
var truncationSuffix = regexp.MustCompile(`\[\+\d+\s+chars\]$`)

// GenerateSummary derives an article summary from its description, falling
// back to content. Pure and idempotent: a once-truncated summary is at most
// 40 words plus the ellipsis marker, so a second pass leaves it unchanged.
func GenerateSummary(description, content string) string {
	text := strings.TrimSpace(description)
	if text == "" {
		text = strings.TrimSpace(content)
	}
	if text == "" {
		return NoDetailsSummary
	}

	text = strings.TrimSpace(truncationSuffix.ReplaceAllString(text, ""))
	if text == "" {
		return NoDetailsSummary
	}

	words := strings.Fields(text)
	if len(words) > summaryWordLimit {
		return strings.Join(words[:summaryWordLimit], " ") + "..."
	}
	return text
}
