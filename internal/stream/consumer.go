package stream

import "context"

// StreamConsumer turns stream entries into generation replies.
type StreamConsumer interface {
	// Setup creates the consumer group and request stream when missing.
	Setup(ctx context.Context) error
	// Start first drains entries left pending for this consumer, then reads
	// new ones until ctx is cancelled.
	Start(ctx context.Context) error
	Stop() error
}
