// SPDX-License-Identifier: MIT
package config

import "time"

// Defaults for every configuration section.
const (
	DefaultLogLevel = "info"

	DefaultSniffChannels        = 64     // Fixed channel count assumed by the sniffer
	DefaultSniffPreviewChannels = 5      // Channels copied into the preview
	DefaultSamplingRate         = 256.0  // Hz
	DefaultMaxScanOffset        = 2048   // Header bytes searched
	DefaultOffsetStep           = 4      // Offset stride in bytes
	DefaultMinSamples           = 10     // Minimum samples per channel
	DefaultPlausibleLimit       = 1e5    // Plausible |amplitude| bound
	DefaultPreviewMillis        = 255.0  // Preview length

	DefaultWindowSize   = 256      // One second at 256 Hz
	DefaultOverlap      = 0        // Non-overlapping windows
	DefaultMethod       = "direct" // Direct DFT
	DefaultWelchSegment = 256
	DefaultWelchWindow  = "hann"
	DefaultTracePoints  = 512 // Points in the downsampled plot trace

	DefaultBatchSize = 2000 // Rows per bulk insert

	DefaultStoreKind          = "memory"
	DefaultParquetPath        = "eeg_data.parquet"
	DefaultParquetCompression = "zstd"
	DefaultS3Region           = "us-east-1"
	DefaultS3Prefix           = "eeg"
	DefaultKafkaTopic         = "eeg-rows"

	DefaultUDPTargetAddress = "127.0.0.1:9090"
	DefaultUDPSendInterval  = 0 * time.Millisecond // Unpaced
	DefaultWebSocketAddr    = ""                   // Disabled

	DefaultExportBitDepth = 16

	// Limits enforced by Validate.
	MaxSniffChannels = 1024
	MaxWindowSize    = 1 << 16
	MaxBatchSize     = 1_000_000
)

// SniffConfig mirrors sniff.Options.
type SniffConfig struct {
	Channels        int     `yaml:"channels"`
	PreviewChannels int     `yaml:"preview_channels"`
	SamplingRate    float64 `yaml:"sampling_rate"`
	MaxScanOffset   int     `yaml:"max_scan_offset"`
	OffsetStep      int     `yaml:"offset_step"`
	MinSamples      int     `yaml:"min_samples"`
	PlausibleLimit  float64 `yaml:"plausible_limit"`
	PreviewMillis   float64 `yaml:"preview_millis"`
}

// AnalysisConfig controls windowed analysis and Welch estimation.
type AnalysisConfig struct {
	WindowSize   int     `yaml:"window_size"`
	Overlap      int     `yaml:"overlap"`
	SamplingRate float64 `yaml:"sampling_rate"`
	Method       string  `yaml:"method"`  // "direct" or "fft"
	Channel      string  `yaml:"channel"` // Empty picks the preferred channel
	WelchSegment int     `yaml:"welch_segment"`
	WelchWindow  string  `yaml:"welch_window"`
	TracePoints  int     `yaml:"trace_points"` // Zero omits the trace
}

// IngestConfig controls the bulk loader.
type IngestConfig struct {
	BatchSize     int    `yaml:"batch_size"`
	ParticipantID string `yaml:"participant_id"` // Empty generates one per run
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Kind    string        `yaml:"kind"` // memory, parquet, s3 or kafka
	Parquet ParquetConfig `yaml:"parquet"`
	S3      S3Config      `yaml:"s3"`
	Kafka   KafkaConfig   `yaml:"kafka"`
}

type ParquetConfig struct {
	Path        string `yaml:"path"`
	Compression string `yaml:"compression"`
}

type S3Config struct {
	Bucket      string `yaml:"bucket"`
	Prefix      string `yaml:"prefix"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"` // MinIO or LocalStack
	AccessKey   string `yaml:"access_key"`
	SecretKey   string `yaml:"secret_key"`
	PathStyle   bool   `yaml:"path_style"`
	Compression string `yaml:"compression"`
}

type KafkaConfig struct {
	Brokers   []string `yaml:"brokers"`
	Topic     string   `yaml:"topic"`
	BatchSize int      `yaml:"batch_size"`
}

// TransportConfig holds settings for streaming results off the host.
type TransportConfig struct {
	UDPEnabled       bool          `yaml:"udp_enabled"`
	UDPTargetAddress string        `yaml:"udp_target_address"`
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`
	WebSocketAddr    string        `yaml:"ws_addr"`
}

// ExportConfig controls WAV rendering.
type ExportConfig struct {
	BitDepth int     `yaml:"bit_depth"`
	Gain     float64 `yaml:"gain"` // Zero normalises to the loudest sample
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: DefaultLogLevel,
		Sniff: SniffConfig{
			Channels:        DefaultSniffChannels,
			PreviewChannels: DefaultSniffPreviewChannels,
			SamplingRate:    DefaultSamplingRate,
			MaxScanOffset:   DefaultMaxScanOffset,
			OffsetStep:      DefaultOffsetStep,
			MinSamples:      DefaultMinSamples,
			PlausibleLimit:  DefaultPlausibleLimit,
			PreviewMillis:   DefaultPreviewMillis,
		},
		Analysis: AnalysisConfig{
			WindowSize:   DefaultWindowSize,
			Overlap:      DefaultOverlap,
			SamplingRate: DefaultSamplingRate,
			Method:       DefaultMethod,
			WelchSegment: DefaultWelchSegment,
			WelchWindow:  DefaultWelchWindow,
			TracePoints:  DefaultTracePoints,
		},
		Ingest: IngestConfig{
			BatchSize: DefaultBatchSize,
		},
		Store: StoreConfig{
			Kind: DefaultStoreKind,
			Parquet: ParquetConfig{
				Path:        DefaultParquetPath,
				Compression: DefaultParquetCompression,
			},
			S3: S3Config{
				Region:      DefaultS3Region,
				Prefix:      DefaultS3Prefix,
				Compression: DefaultParquetCompression,
			},
			Kafka: KafkaConfig{
				Topic: DefaultKafkaTopic,
			},
		},
		Transport: TransportConfig{
			UDPTargetAddress: DefaultUDPTargetAddress,
			UDPSendInterval:  DefaultUDPSendInterval,
			WebSocketAddr:    DefaultWebSocketAddr,
		},
		Export: ExportConfig{
			BitDepth: DefaultExportBitDepth,
		},
	}
}
