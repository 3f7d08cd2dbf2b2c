package notify

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"example.com/mergington/internal/events"
)

type messageWriter interface {
	WriteMessages(context.Context, ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes roster changes to a single topic, keyed by activity name
// so every change to one roster lands on the same partition.
type KafkaNotifier struct {
	writer messageWriter
}

// NewKafkaNotifier creates a KafkaNotifier writing synchronously to topic.
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: true,
		Async:                  false,
	}}
}

// Notify implements Notifier.
func (k *KafkaNotifier) Notify(ctx context.Context, evt events.RosterChanged) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.Activity),
		Value: payload,
		Time:  evt.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("activity.roster_changed")},
			{Key: "action", Value: []byte(evt.Action)},
		},
	})
}

// Close releases the underlying writer.
func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}
