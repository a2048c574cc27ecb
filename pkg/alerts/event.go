package alerts

import (
	"time"

	"github.com/samachar-app/samachar/internal/domain"
)

// Alert is the payload published when a refresh surfaces a new top story.
type Alert struct {
	Feed       string         `json:"feed"`
	Article    domain.Article `json:"article"`
	Score      int            `json:"score"`
	DetectedAt time.Time      `json:"detected_at"`
}

// NewAlert constructs an Alert for the given feed + article.
func NewAlert(feed string, article domain.Article, score int) Alert {
	return Alert{
		Feed:       feed,
		Article:    article,
		Score:      score,
		DetectedAt: time.Now().UTC(),
	}
}
