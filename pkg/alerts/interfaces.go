package alerts

import "context"

// Publisher delivers alerts to a downstream sink (HTTP webhook, queue, etc).
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, alert Alert) error
}
