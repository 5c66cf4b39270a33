package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/vijaypawar2007-git/liftingdiarycourse/internal/events"
)

// KafkaInvalidator publishes ViewsInvalidated events for cache tiers that
// subscribe rather than accept callbacks. Publishing happens inline with
// the request; there is no buffering or retry.
type KafkaInvalidator struct {
	writer *kafka.Writer
}

// NewKafkaInvalidator constructs a KafkaInvalidator for the topic.
func NewKafkaInvalidator(brokers []string, topic string) *KafkaInvalidator {
	return &KafkaInvalidator{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			Async:        false,
		},
	}
}

// Invalidate publishes one event naming all stale views. The partition
// key is the joined view list so repeated signals for the same views stay
// ordered.
func (k *KafkaInvalidator) Invalidate(ctx context.Context, views ...string) error {
	if len(views) == 0 {
		return nil
	}

	payload, err := json.Marshal(events.ViewsInvalidated{
		Views:      views,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strings.Join(views, ",")),
		Value: payload,
	})
}

// Close releases the underlying writer.
func (k *KafkaInvalidator) Close() error {
	return k.writer.Close()
}
