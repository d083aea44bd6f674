// SPDX-License-Identifier: MIT
/*
Package pipeline wires the file-level operations behind the CLI:
- Sniff: guess the binary layout of each recording and preview it
- Parse: turn text exports into canonical rows
- Analyze: per-window variance and band power of one channel
- Ingest: batch rows into the configured store with progress
- Export: render decoded channels as a WAV file

An Engine holds the loaded configuration; every method reads its input
through package source so compressed files and zip archives work the same
way everywhere.
*/
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"eeg/internal/config"
	"eeg/internal/export"
	applog "eeg/internal/log"
	"eeg/internal/record"
	"eeg/internal/sniff"
	"eeg/internal/source"
)

var ErrNoEntries = errors.New("pipeline: no recordings to process")

type Engine struct {
	config *config.Config
}

// New returns an engine over cfg. A nil cfg uses the built-in defaults.
func New(cfg *config.Config) *Engine {
	if cfg == nil {
		d := config.Default()
		cfg = &d
	}
	return &Engine{config: cfg}
}

// Config returns the engine configuration.
func (e *Engine) Config() *config.Config {
	return e.config
}

// SniffReport is the decoding of one entry.
type SniffReport struct {
	Name   string        `json:"name"`
	Result *sniff.Result `json:"result"`
}

// SniffFile decodes every recording in path. Archive members get their
// entry name prefixed to each preview trace.
func (e *Engine) SniffFile(ctx context.Context, path string) ([]SniffReport, error) {
	entries, err := entries(path)
	if err != nil {
		return nil, err
	}

	opts := e.config.SniffOptions()
	archive := source.IsArchive(path)
	reports := make([]SniffReport, 0, len(entries))
	for _, entry := range entries {
		res, err := sniff.Decode(ctx, entry.Data, opts)
		if err != nil {
			return reports, fmt.Errorf("sniff %s: %w", entry.Name, err)
		}
		if archive {
			for i := range res.Preview.Traces {
				res.Preview.Traces[i].Name = entry.Name + " - " + res.Preview.Traces[i].Name
			}
		}
		applog.Infow("pipeline: sniffed",
			"entry", entry.Name,
			"dtype", res.Info.DTypeName,
			"offset", res.Info.Offset,
			"samples", res.Info.Samples)
		reports = append(reports, SniffReport{Name: entry.Name, Result: res})
	}
	return reports, nil
}

// ParseReport is the parse of one text entry.
type ParseReport struct {
	Name   string       `json:"name"`
	Format string       `json:"format"`
	Stats  record.Stats `json:"stats"`
	Rows   []record.Row `json:"-"`
}

// ParseFile parses every text recording in path.
func (e *Engine) ParseFile(path string) ([]ParseReport, error) {
	entries, err := entries(path)
	if err != nil {
		return nil, err
	}

	reports := make([]ParseReport, 0, len(entries))
	for _, entry := range entries {
		content := string(entry.Data)
		rows, st, err := record.Parse(content, entry.Name)
		if err != nil {
			return reports, fmt.Errorf("parse %s: %w", entry.Name, err)
		}
		reports = append(reports, ParseReport{
			Name:   entry.Name,
			Format: record.DetectFormat(content, entry.Name).String(),
			Stats:  st,
			Rows:   rows,
		})
	}
	return reports, nil
}

// ExportFile sniffs the first recording in path and writes its channels to
// out as a WAV file at the sniffing sample rate.
func (e *Engine) ExportFile(ctx context.Context, path, out string) (*sniff.DecodeInfo, error) {
	entries, err := entries(path)
	if err != nil {
		return nil, err
	}

	opts := e.config.SniffOptions()
	res, err := sniff.Decode(ctx, entries[0].Data, opts)
	if err != nil {
		return nil, fmt.Errorf("sniff %s: %w", entries[0].Name, err)
	}

	rate := int(opts.SamplingRate)
	if rate <= 0 {
		rate = export.DefaultSampleRate
	}
	if err := export.WriteFile(out, res.Channels, e.config.ExportOptions(rate)); err != nil {
		return nil, err
	}
	applog.Infof("pipeline: exported %d channels of %s to %s", len(res.Channels), entries[0].Name, out)
	return &res.Info, nil
}

func entries(path string) ([]source.Entry, error) {
	list, err := source.Entries(path)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoEntries, path)
	}
	return list, nil
}
