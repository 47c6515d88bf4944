// Package kafka publishes catalog-change events for downstream consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/turbine-catalog/internal/config"
	"github.com/couchcryptid/turbine-catalog/internal/domain"
)

// Publisher produces turbine upsert events to a Kafka topic.
// It implements pipeline.EventPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured events topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// upsertEvent is the wire shape of a catalog-change event.
type upsertEvent struct {
	Action     string         `json:"action"` // "inserted" or "updated"
	Turbine    domain.Turbine `json:"turbine"`
	ID         string         `json:"id"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// PublishUpsert emits one event for a reconciled record. The record name is
// the message key so that events for the same turbine stay ordered within a
// partition.
func (p *Publisher) PublishUpsert(ctx context.Context, action string, rec domain.StoredTurbine) error {
	msg, err := buildMessage(action, rec)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

// buildMessage marshals a reconciled record into a Kafka message.
func buildMessage(action string, rec domain.StoredTurbine) (kafkago.Message, error) {
	event := upsertEvent{
		Action:     action,
		Turbine:    rec.Turbine,
		ID:         rec.ID,
		OccurredAt: rec.ImportedAt,
	}
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize upsert event: %w", err)
	}

	return kafkago.Message{
		Key:   []byte(rec.Name),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "action", Value: []byte(action)},
		},
	}, nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
