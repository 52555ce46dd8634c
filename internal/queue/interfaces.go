package queue

import "context"

// Consumer turns queued notify requests into native notifications until ctx
// ends.
type Consumer interface {
	Start(ctx context.Context) error
}

// Publisher sends a JSON payload to the notifications exchange.
type Publisher interface {
	Publish(ctx context.Context, payload []byte, routingKey string) error
}
