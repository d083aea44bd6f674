// SPDX-License-Identifier: MIT

// Package store provides loader.Store backends that persist canonical rows
// stamped with a participant identifier.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"eeg/internal/loader"
	applog "eeg/internal/log"
	"eeg/internal/record"

	parquet "github.com/parquet-go/parquet-go"
)

// Record is a persisted row.
type Record struct {
	ParticipantID string  `parquet:"participant_id,dict" json:"participant_id"`
	Channel       string  `parquet:"chan,dict" json:"chan"`
	Seconds       float64 `parquet:"seconds" json:"seconds"`
	Voltage       float64 `parquet:"voltage" json:"voltage"`
}

// Stamp converts rows to records for participant.
func Stamp(participant string, rows []record.Row) []Record {
	out := make([]Record, len(rows))
	for i, r := range rows {
		out[i] = Record{ParticipantID: participant, Channel: r.Channel, Seconds: r.Seconds, Voltage: r.Voltage}
	}
	return out
}

// Backend is a Store that holds resources until closed.
type Backend interface {
	loader.Store
	io.Closer
}

// Backend names accepted by Open.
const (
	KindMemory  = "memory"
	KindParquet = "parquet"
	KindS3      = "s3"
	KindKafka   = "kafka"
)

var ErrUnknownKind = errors.New("store: unknown backend")

// Config selects and configures a backend.
type Config struct {
	Kind          string
	ParticipantID string
	Parquet       ParquetConfig
	S3            S3Config
	Kafka         KafkaConfig
}

// Open constructs the backend named by cfg.Kind.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	kind := strings.ToLower(strings.TrimSpace(cfg.Kind))
	applog.Debugw("store: opening backend", "kind", kind, "participant", cfg.ParticipantID)

	switch kind {
	case "", KindMemory:
		return NewMemoryStore(cfg.ParticipantID), nil
	case KindParquet:
		return NewParquetStore(cfg.Parquet.Path, cfg.ParticipantID, cfg.Parquet.Compression)
	case KindS3:
		client, err := NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("store: s3 client: %w", err)
		}
		return NewS3Store(client, cfg.S3, cfg.ParticipantID)
	case KindKafka:
		w, err := NewKafkaWriter(cfg.Kafka)
		if err != nil {
			return nil, err
		}
		return NewKafkaStore(w, cfg.ParticipantID), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}

// compressionOption maps a codec name to a parquet writer option.
func compressionOption(name string) (parquet.WriterOption, error) {
	switch strings.ToLower(name) {
	case "", "zstd":
		return parquet.Compression(&parquet.Zstd), nil
	case "gzip":
		return parquet.Compression(&parquet.Gzip), nil
	case "snappy":
		return parquet.Compression(&parquet.Snappy), nil
	case "none", "uncompressed":
		return parquet.Compression(&parquet.Uncompressed), nil
	default:
		return nil, fmt.Errorf("store: unknown parquet compression %q", name)
	}
}
