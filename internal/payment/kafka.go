package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// KafkaRequester publishes payment requests to a Kafka topic, keyed by bill ID.
// The writer is asynchronous; delivery failures are logged from the
// completion callback.
type KafkaRequester struct {
	writer *kafka.Writer
}

// NewKafkaRequester creates a requester writing to topic on brokers.
func NewKafkaRequester(brokers []string, topic string) *KafkaRequester {
	return &KafkaRequester{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
			Async:    true,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					slog.Error("Failed to deliver payment requests",
						"count", len(messages),
						"error", err,
					)
				}
			},
		},
	}
}

// Request enqueues req for delivery.
func (k *KafkaRequester) Request(ctx context.Context, req Request) error {
	msg, err := message(req)
	if err != nil {
		return err
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write payment request: %w", err)
	}
	return nil
}

func message(req Request) (kafka.Message, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal payment request: %w", err)
	}
	return kafka.Message{
		Key:   []byte(req.BillID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte("payment_requested")},
		},
	}, nil
}

// Close flushes pending messages and closes the writer.
func (k *KafkaRequester) Close() error {
	return k.writer.Close()
}
