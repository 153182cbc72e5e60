// Package stream publishes accepted events to Kafka for consumers that want
// the full firehose rather than filtered webhook deliveries.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"pinksync/internal/event"
)

// record is the wire shape of one accepted event on the stream. Records are
// keyed by app_id so per-application ordering survives partitioning.
type record struct {
	EventID   string         `json:"event_id"`
	AppID     string         `json:"app_id"`
	UserID    string         `json:"user_id,omitempty"`
	Intent    string         `json:"intent"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Signature string         `json:"signature"`
}

// Publisher produces accepted events to a single topic. Publishing is
// fire-and-forget from the broker's point of view; a produce failure is
// logged, never surfaced to the submitter.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewPublisher connects to the brokers and makes sure the topic exists.
func NewPublisher(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}

	return &Publisher{client: client, topic: topic, logger: logger}, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, 3, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, res := range resp {
		// Already-exists is fine, anything else is not.
		if res.Err != nil && !errors.Is(res.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", topic, res.Err)
		}
	}
	return nil
}

// Publish implements the broker's stream sink.
func (p *Publisher) Publish(ctx context.Context, ev event.Event) {
	value, err := json.Marshal(record{
		EventID:   ev.EventID,
		AppID:     string(ev.AppID),
		UserID:    string(ev.UserID),
		Intent:    ev.Intent.String(),
		Timestamp: ev.Timestamp,
		Metadata:  ev.Metadata,
		Signature: ev.Signature,
	})
	if err != nil {
		p.logger.ErrorContext(ctx, "stream marshal failed", "event_id", ev.EventID, "error", err)
		return
	}

	rec := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(ev.AppID),
		Value: value,
	}
	p.client.Produce(ctx, rec, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("stream produce failed",
				"event_id", ev.EventID,
				"topic", p.topic,
				"error", err,
			)
		}
	})
}

// Close flushes pending records and releases the client.
func (p *Publisher) Close(ctx context.Context) error {
	if err := p.client.Flush(ctx); err != nil {
		p.client.Close()
		return err
	}
	p.client.Close()
	return nil
}
