package messaging

import (
	"context"
)

// Broker defines the interface for message brokers. Publish is at-most-once,
// best effort: callers must not depend on delivery.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}
