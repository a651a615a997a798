package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaEmitter writes auth events to a Kafka topic using segmentio/kafka-go.
type KafkaEmitter struct {
	writer *kafka.Writer
}

// NewKafkaEmitter creates a Kafka emitter for the given topic. Returns nil if
// brokers or topic are unset so callers can treat Kafka as optional. Call
// Close when shutting down.
func NewKafkaEmitter(brokers []string, topic string) *KafkaEmitter {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaEmitter{writer: writer}
}

// Emit serializes the event as JSON and writes it to the topic, keyed by user
// id so a user's events land in one partition.
func (e *KafkaEmitter) Emit(ctx context.Context, event *Event) error {
	if e == nil || e.writer == nil || event == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	var key []byte
	if event.UserID != "" {
		key = []byte(event.UserID)
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return e.writer.WriteMessages(writeCtx, kafka.Message{Key: key, Value: payload})
}

// Close closes the Kafka writer. Safe to call on a nil emitter.
func (e *KafkaEmitter) Close() error {
	if e == nil || e.writer == nil {
		return nil
	}
	return e.writer.Close()
}
