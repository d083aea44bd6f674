// SPDX-License-Identifier: MIT
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eeg/internal/record"

	"github.com/segmentio/kafka-go"
)

// KafkaConfig configures the producer.
type KafkaConfig struct {
	Brokers   []string
	Topic     string
	BatchSize int
}

// MessageWriter is the subset of *kafka.Writer used by KafkaStore.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter builds a synchronous, hash-balanced producer so that every
// row of a channel lands on the same partition in order.
func NewKafkaWriter(cfg KafkaConfig) (*kafka.Writer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("store: kafka brokers are required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("store: kafka topic is required")
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 1000
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           200 * time.Millisecond,
		BatchSize:              batch,
		RequiredAcks:           kafka.RequireAll,
		Async:                  false,
		AllowAutoTopicCreation: true,
	}, nil
}

// KafkaStore publishes one JSON message per row, keyed by channel.
type KafkaStore struct {
	writer      MessageWriter
	participant string
}

var _ Backend = (*KafkaStore)(nil)

func NewKafkaStore(w MessageWriter, participant string) *KafkaStore {
	return &KafkaStore{writer: w, participant: participant}
}

// AppendBatch sends the batch with a single WriteMessages call.
func (k *KafkaStore) AppendBatch(ctx context.Context, rows []record.Row) error {
	msgs := make([]kafka.Message, len(rows))
	for i, rec := range Stamp(k.participant, rows) {
		value, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("store: encode row %d: %w", i, err)
		}
		msgs[i] = kafka.Message{
			Key:   []byte(rec.Channel),
			Value: value,
			Headers: []kafka.Header{
				{Key: "participant_id", Value: []byte(k.participant)},
			},
		}
	}
	if err := k.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("store: kafka write: %w", err)
	}
	return nil
}

func (k *KafkaStore) Close() error {
	return k.writer.Close()
}
