// SPDX-License-Identifier: MIT

// Package loader submits canonical rows to a Store in fixed-size,
// strictly ordered batches and reports progress after each commit.
package loader

import (
	"context"
	"errors"
	"fmt"
	"math"

	applog "eeg/internal/log"
	"eeg/internal/record"
)

// DefaultBatchSize is the number of rows per batch when none is given.
const DefaultBatchSize = 2000

var (
	// ErrBatchSubmission matches any *BatchError.
	ErrBatchSubmission = errors.New("loader: batch submission failed")
	// ErrUnsorted is returned for rows not in (Seconds, Channel) order.
	ErrUnsorted = errors.New("loader: rows are not sorted by (seconds, channel)")
)

// Store is the bulk-append primitive of a persistence backend. A nil return
// means every row of the batch is committed.
type Store interface {
	AppendBatch(ctx context.Context, rows []record.Row) error
}

// StoreFunc adapts a function to the Store interface.
type StoreFunc func(ctx context.Context, rows []record.Row) error

func (f StoreFunc) AppendBatch(ctx context.Context, rows []record.Row) error {
	return f(ctx, rows)
}

// ProgressFunc receives the percentage of rows committed so far.
type ProgressFunc func(percent int)

// BatchError reports the batch that failed. Committed and Percent describe
// the state after the last successful batch; nothing is rolled back.
type BatchError struct {
	Batch     int
	Committed int
	Percent   int
	Err       error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("loader: batch %d failed after %d rows (%d%%): %v", e.Batch, e.Committed, e.Percent, e.Err)
}

func (e *BatchError) Is(target error) bool { return target == ErrBatchSubmission }

func (e *BatchError) Unwrap() error { return e.Err }

// Percent returns round(committed*100/total).
func Percent(committed, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(float64(committed) * 100 / float64(total)))
}

// Batches returns the number of batches Ingest submits for n rows.
func Batches(n, batchSize int) int {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return (n + batchSize - 1) / batchSize
}

// Ingest submits rows to store in order, batchSize rows at a time,
// calling progress after every committed batch. The first failing batch
// aborts the run with a *BatchError. Cancellation is checked before each
// batch. Zero rows is a no-op.
func Ingest(ctx context.Context, rows []record.Row, batchSize int, store Store, progress ProgressFunc) error {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if len(rows) == 0 {
		return nil
	}
	if !record.IsSorted(rows) {
		return ErrUnsorted
	}

	total := len(rows)
	committed := 0
	for batch := 0; committed < total; batch++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(committed+batchSize, total)
		if err := store.AppendBatch(ctx, rows[committed:end]); err != nil {
			berr := &BatchError{
				Batch:     batch,
				Committed: committed,
				Percent:   Percent(committed, total),
				Err:       err,
			}
			applog.Errorw("loader: batch rejected", "batch", batch, "committed", committed, "error", err)
			return berr
		}

		committed = end
		pct := Percent(committed, total)
		applog.Debugw("loader: batch committed", "batch", batch, "rows", committed, "percent", pct)
		if progress != nil {
			progress(pct)
		}
	}
	return nil
}
