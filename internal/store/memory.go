// SPDX-License-Identifier: MIT
package store

import (
	"context"
	"sync"

	"eeg/internal/record"
)

// MemoryStore keeps records in memory. It backs dry runs and tests.
type MemoryStore struct {
	participant string

	mu      sync.Mutex
	records []Record
	batches int
	closed  bool
}

var _ Backend = (*MemoryStore)(nil)

func NewMemoryStore(participant string) *MemoryStore {
	return &MemoryStore{participant: participant}
}

func (m *MemoryStore) AppendBatch(ctx context.Context, rows []record.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.records = append(m.records, Stamp(m.participant, rows)...)
	m.batches++
	return nil
}

// Records returns a copy of everything appended.
func (m *MemoryStore) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Record(nil), m.records...)
}

// Batches returns the number of committed batches.
func (m *MemoryStore) Batches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batches
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
