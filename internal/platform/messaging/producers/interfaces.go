package producers

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// MessagePublisher publishes balance sync requests to the primary topic.
// The key is the budget id so requests for one budget stay ordered.
type MessagePublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

// DeadLetterPublisher parks sync requests the worker could not decode on the
// DLQ topic, tagged with the failure reason
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error
	Close() error
}

// KafkaWriter is the slice of kafka.Writer the publishers use; tests swap in
// a fake
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
