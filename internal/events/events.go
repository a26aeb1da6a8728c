// Package events publishes batch jobs for the worker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"productgen/internal/config"
	"productgen/internal/logger"
)

const (
	TypeBatchImport = "batch.import"
	TypeBatchExport = "batch.export"
)

type Event struct {
	Type      string                 `json:"type"`
	BatchID   uint                   `json:"batch_id"`
	JobID     string                 `json:"job_id"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Decode parses a message value into an Event.
func Decode(value []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(value, &event); err != nil {
		return event, fmt.Errorf("decode event: %w", err)
	}
	return event, nil
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type KafkaPublisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewKafkaPublisher(cfg *config.Config, logger *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.KafkaBrokerList()...),
			Topic:        cfg.KafkaTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		logger: logger,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	key := event.JobID
	if key == "" {
		key = uuid.New().String()
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: value}); err != nil {
		return fmt.Errorf("publish %s for batch %d: %w", event.Type, event.BatchID, err)
	}
	p.logger.Debug("Published %s for batch %d", event.Type, event.BatchID)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
