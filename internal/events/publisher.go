// Package events publishes hand-completion notifications onto Kafka so
// downstream consumers (analytics pipelines, fraud review, loyalty
// accrual) can react without coupling to the table controller directly.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"poker-platform/internal/engine"
)

const handCompletedTopic = "poker.hand.completed"

// HandCompleted is the wire shape of one completed-hand event. The command
// gateway publishes one, for the table's last archived hand, when a cash-out
// produces the table's GameSummary; other archived hands are not published.
type HandCompleted struct {
	TableID    string    `json:"tableId"`
	HandNumber int       `json:"handNumber"`
	WinnerType string    `json:"winnerType"`
	Winners    []int     `json:"winners"`
	PotAmount  string    `json:"potAmount"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher publishes domain events to Kafka using a synchronous producer,
// so a publish failure surfaces to the caller rather than being silently
// dropped.
type Publisher struct {
	producer sarama.SyncProducer
}

// NewPublisher dials the given Kafka brokers and returns a Publisher.
func NewPublisher(brokers []string) (*Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("events: dial kafka: %w", err)
	}
	return &Publisher{producer: producer}, nil
}

// PublishHandCompleted emits one HandCompleted event, keyed by table so a
// single partition preserves ordering per table.
func (p *Publisher) PublishHandCompleted(tableID string, record engine.HandRecord) error {
	evt := HandCompleted{
		TableID:    tableID,
		HandNumber: record.HandNumber,
		WinnerType: record.WinnerInfo.Type,
		Winners:    record.WinnerInfo.Winners,
		PotAmount:  record.WinnerInfo.PotAmount.String(),
		OccurredAt: time.Now().UTC(),
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("events: marshal hand completed: %w", err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: handCompletedTopic,
		Key:   sarama.StringEncoder(tableID),
		Value: sarama.ByteEncoder(data),
	})
	if err != nil {
		return fmt.Errorf("events: publish hand completed: %w", err)
	}
	return nil
}

// Close releases the underlying producer connection.
func (p *Publisher) Close() error {
	return p.producer.Close()
}
