// SPDX-License-Identifier: MIT
package config

import (
	"eeg/internal/analysis"
	"eeg/internal/export"
	"eeg/internal/sniff"
	"eeg/internal/store"
)

// SniffOptions maps the sniff section onto sniff.Options.
func (c *Config) SniffOptions() sniff.Options {
	s := c.Sniff
	return sniff.Options{
		Channels:        s.Channels,
		PreviewChannels: s.PreviewChannels,
		SamplingRate:    s.SamplingRate,
		MaxScanOffset:   s.MaxScanOffset,
		OffsetStep:      s.OffsetStep,
		MinSamples:      s.MinSamples,
		PlausibleLimit:  s.PlausibleLimit,
		PreviewMillis:   s.PreviewMillis,
	}
}

// AnalysisOptions maps the analysis section onto analysis.Options. Names
// are checked by Validate, so parse errors fall back to the defaults.
func (c *Config) AnalysisOptions() analysis.Options {
	method, _ := analysis.ParseMethod(c.Analysis.Method)
	return analysis.Options{
		WindowSize:   c.Analysis.WindowSize,
		Overlap:      c.Analysis.Overlap,
		SamplingRate: c.Analysis.SamplingRate,
		Method:       method,
	}
}

// WelchOptions maps the Welch settings onto analysis.WelchOptions.
func (c *Config) WelchOptions() analysis.WelchOptions {
	w, _ := analysis.ParseWindowFunc(c.Analysis.WelchWindow)
	return analysis.WelchOptions{Segment: c.Analysis.WelchSegment, Window: w}
}

// StoreConfig maps the store section onto store.Config for participant.
func (c *Config) StoreConfig(participant string) store.Config {
	s := c.Store
	return store.Config{
		Kind:          s.Kind,
		ParticipantID: participant,
		Parquet: store.ParquetConfig{
			Path:        s.Parquet.Path,
			Compression: s.Parquet.Compression,
		},
		S3: store.S3Config{
			Bucket:      s.S3.Bucket,
			Prefix:      s.S3.Prefix,
			Region:      s.S3.Region,
			Endpoint:    s.S3.Endpoint,
			AccessKey:   s.S3.AccessKey,
			SecretKey:   s.S3.SecretKey,
			PathStyle:   s.S3.PathStyle,
			Compression: s.S3.Compression,
		},
		Kafka: store.KafkaConfig{
			Brokers:   s.Kafka.Brokers,
			Topic:     s.Kafka.Topic,
			BatchSize: s.Kafka.BatchSize,
		},
	}
}

// ExportOptions maps the export section onto export.Options at sampleRate.
func (c *Config) ExportOptions(sampleRate int) export.Options {
	return export.Options{
		SampleRate: sampleRate,
		BitDepth:   c.Export.BitDepth,
		Gain:       c.Export.Gain,
	}
}
