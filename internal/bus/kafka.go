package bus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/caseflow-io/caseflow/pkg/schema"
)

// KafkaPublisher writes event envelopes to Kafka.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    zerolog.Logger
}

// NewKafkaPublisher builds a publisher for the given brokers. Topics are
// auto-created on first publish so a fresh broker needs no setup step.
func NewKafkaPublisher(brokers []string, clientID string, log zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			Transport:              &kafka.Transport{ClientID: clientID},
		},
		log: log,
	}
}

// Publish sends one envelope. The message key is the acting user id when the
// event carries one, which pins a user's events to a single partition.
func (p *KafkaPublisher) Publish(ctx context.Context, topic string, event schema.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var key []byte
	if event.Metadata != nil && event.Metadata.UserID != 0 {
		key = []byte(strconv.FormatInt(event.Metadata.UserID, 10))
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
	})
	if err != nil {
		p.log.Error().Err(err).Str("topic", topic).Str("eventType", event.EventType).
			Msg("Failed to publish event")
		return err
	}

	p.log.Info().Str("topic", topic).Str("eventType", event.EventType).Msg("Event published")
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// KafkaConsumer is a long-lived group consumer over a fixed set of topics.
// It starts at the latest offset and commits after every message, processed
// or not, so a malformed payload never blocks the partition.
type KafkaConsumer struct {
	reader *kafka.Reader
	log    zerolog.Logger
}

// NewKafkaConsumer subscribes groupID to topics on the given brokers.
func NewKafkaConsumer(brokers []string, clientID, groupID string, topics []string, log zerolog.Logger) *KafkaConsumer {
	dialer := kafka.DefaultDialer
	if clientID != "" {
		d := *kafka.DefaultDialer
		d.ClientID = clientID
		dialer = &d
	}
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     brokers,
			GroupID:     groupID,
			GroupTopics: topics,
			StartOffset: kafka.LastOffset,
			Dialer:      dialer,
		}),
		log: log,
	}
}

// Run pulls messages sequentially and dispatches them to handler until the
// context is cancelled or the reader is closed. The host process should run
// it in its own goroutine and watch the returned error.
func (c *KafkaConsumer) Run(ctx context.Context, handler Handler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		var event schema.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.log.Warn().Err(err).Str("topic", msg.Topic).Msg("Dropping malformed event payload")
		} else if err := handler(ctx, msg.Topic, event); err != nil {
			c.log.Error().Err(err).Str("topic", msg.Topic).Str("eventType", event.EventType).
				Msg("Event handler failed, message skipped")
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}

// Close terminates the subscription and unblocks Run.
func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
