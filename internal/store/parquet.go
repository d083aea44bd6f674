// SPDX-License-Identifier: MIT
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	applog "eeg/internal/log"
	"eeg/internal/record"

	parquet "github.com/parquet-go/parquet-go"
)

var (
	ErrClosed      = errors.New("store: closed")
	ErrWriteFailed = errors.New("store: an earlier parquet write failed")
)

// ParquetConfig configures a local parquet file.
type ParquetConfig struct {
	Path        string
	Compression string
}

// ParquetStore appends to one parquet file, one row group per batch.
//
// Each batch is encoded into a staging buffer before it touches the file, so
// a batch that fails to encode leaves the writer unchanged. A failed file
// write leaves the writer holding part of that batch; the store then
// refuses further batches and Close skips the footer, so no row past the
// last committed batch is ever readable.
type ParquetStore struct {
	participant string
	path        string

	mu     sync.Mutex
	out    io.Closer
	writer *parquet.GenericWriter[Record]
	stage  *parquet.GenericBuffer[Record]
	rows   int
	err    error
}

var _ Backend = (*ParquetStore)(nil)

// NewParquetStore creates (or truncates) the file at path.
func NewParquetStore(path, participant, compression string) (*ParquetStore, error) {
	if path == "" {
		return nil, errors.New("store: parquet path is required")
	}
	opt, err := compressionOption(compression)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("store: create %s: %w", path, err)
	}
	return newParquetStore(f, path, participant, opt), nil
}

func newParquetStore(out io.WriteCloser, path, participant string, opts ...parquet.WriterOption) *ParquetStore {
	return &ParquetStore{
		participant: participant,
		path:        path,
		out:         out,
		writer:      parquet.NewGenericWriter[Record](out, opts...),
		stage:       parquet.NewGenericBuffer[Record](),
	}
}

// AppendBatch encodes rows and writes them as one row group.
func (p *ParquetStore) AppendBatch(ctx context.Context, rows []record.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writer == nil {
		return ErrClosed
	}
	if p.err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, p.err)
	}

	p.stage.Reset()
	if _, err := p.stage.Write(Stamp(p.participant, rows)); err != nil {
		return fmt.Errorf("store: parquet encode: %w", err)
	}
	if _, err := p.writer.WriteRowGroup(p.stage); err != nil {
		p.err = err
		return fmt.Errorf("store: parquet write: %w", err)
	}
	p.rows += len(rows)
	return nil
}

// Close writes the footer and closes the file. After a failed write only
// the file is closed.
func (p *ParquetStore) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writer == nil {
		return nil
	}
	var werr error
	if p.err == nil {
		werr = p.writer.Close()
	} else {
		applog.Warnw("store: parquet footer skipped after failed write", "path", p.path, "error", p.err)
	}
	ferr := p.out.Close()
	p.writer = nil
	applog.Debugw("store: parquet closed", "path", p.path, "rows", p.rows)
	return errors.Join(werr, ferr)
}
