// SPDX-License-Identifier: MIT
package pipeline

import (
	"context"
	"errors"

	"eeg/internal/loader"
	applog "eeg/internal/log"
	"eeg/internal/record"
	"eeg/internal/store"

	"github.com/google/uuid"
)

// IngestReport summarises one ingestion run.
type IngestReport struct {
	ParticipantID string `json:"participantId"`
	Store         string `json:"store"`
	Rows          int    `json:"rows"`
	Batches       int    `json:"batches"`
}

// IngestFile parses every text recording in path and submits the combined
// rows to the configured store. Rows from several archive entries are
// merged and re-sorted first. A run without a configured participant gets
// a fresh random ID.
func (e *Engine) IngestFile(ctx context.Context, path string, progress loader.ProgressFunc) (report *IngestReport, err error) {
	parsed, err := e.ParseFile(path)
	if err != nil {
		return nil, err
	}
	var rows []record.Row
	for _, p := range parsed {
		rows = append(rows, p.Rows...)
	}
	if len(parsed) > 1 {
		record.SortRows(rows)
	}

	participant := e.config.Ingest.ParticipantID
	if participant == "" {
		participant = uuid.NewString()
		applog.Infof("pipeline: no participant configured, using %s", participant)
	}

	backend, err := store.Open(ctx, e.config.StoreConfig(participant))
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, backend.Close())
	}()

	batchSize := e.config.Ingest.BatchSize
	if err := loader.Ingest(ctx, rows, batchSize, backend, progress); err != nil {
		return nil, err
	}

	report = &IngestReport{
		ParticipantID: participant,
		Store:         e.config.Store.Kind,
		Rows:          len(rows),
		Batches:       loader.Batches(len(rows), batchSize),
	}
	applog.Infow("pipeline: ingested",
		"participant", participant,
		"store", report.Store,
		"rows", report.Rows,
		"batches", report.Batches)
	return report, nil
}
