package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/envelope-ledger/internal/config"
)

// SyncReqMessageProducer publishes balance-sync requests from the API to the
// sync worker. Publishing is synchronous: the API acknowledges a sync trigger
// only after the request is on the topic.
type SyncReqMessageProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewSyncReqMessageProducer creates the producer and ensures the topic exists
func NewSyncReqMessageProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*SyncReqMessageProducer, error) {
	if cfg.SyncTopic == "" {
		return nil, fmt.Errorf("kafka sync topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for sync producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.SyncTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure sync topic %s exists: %w", cfg.SyncTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.SyncTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return &SyncReqMessageProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.SyncTopic,
	}, nil
}

// Publish writes a sync request keyed by budget so requests for one budget
// stay ordered on a single partition
func (p *SyncReqMessageProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal sync request: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish sync request",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish sync request to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published sync request",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *SyncReqMessageProducer) Close() error {
	p.logger.Info("Closing sync request Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
