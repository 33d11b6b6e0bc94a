package messagequeue

import "context"

// MessageQueue defines the interface for broadcast messaging between service instances.
type MessageQueue interface {
	// Publish sends body to every consumer bound to exchange.
	Publish(ctx context.Context, exchange string, body []byte) error
	// Consume delivers messages from exchange to handler until ctx is done.
	Consume(ctx context.Context, exchange string, handler func(body []byte)) error
	Close() error
}
