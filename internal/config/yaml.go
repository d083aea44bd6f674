// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"eeg/internal/analysis"
	applog "eeg/internal/log"
	"eeg/internal/store"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is searched in the working directory when no path is
// given.
const DefaultConfigFile = "eeg.yaml"

var ErrInvalid = errors.New("invalid configuration")

// Config is the application configuration loaded from YAML.
type Config struct {
	Debug     bool            `yaml:"debug"`
	LogLevel  string          `yaml:"log_level"`
	Sniff     SniffConfig     `yaml:"sniff"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Store     StoreConfig     `yaml:"store"`
	Transport TransportConfig `yaml:"transport"`
	Export    ExportConfig    `yaml:"export"`
}

// LoadConfig loads configuration from the YAML file at path over the
// built-in defaults. An empty path searches DefaultConfigFile and falls back
// to defaults when it is absent. ENV_* overrides are applied last, then the
// result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		applog.Debugf("configuration: loaded %s", path)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and cross-field constraints.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	_, ok := applog.ParseLevel(c.LogLevel)
	check(ok, "log_level %q is not one of debug, info, warn, error", c.LogLevel)

	s := c.Sniff
	check(s.Channels > 0 && s.Channels <= MaxSniffChannels, "sniff.channels %d out of range [1, %d]", s.Channels, MaxSniffChannels)
	check(s.PreviewChannels >= 0, "sniff.preview_channels must not be negative")
	check(s.SamplingRate > 0, "sniff.sampling_rate must be positive")
	check(s.OffsetStep > 0, "sniff.offset_step must be positive")
	check(s.MinSamples > 0, "sniff.min_samples must be positive")

	a := c.Analysis
	check(a.WindowSize > 0 && a.WindowSize <= MaxWindowSize, "analysis.window_size %d out of range [1, %d]", a.WindowSize, MaxWindowSize)
	check(a.Overlap >= 0 && a.Overlap < a.WindowSize, "analysis.overlap %d must be in [0, window_size)", a.Overlap)
	check(a.SamplingRate > 0, "analysis.sampling_rate must be positive")
	check(a.TracePoints >= 0, "analysis.trace_points must not be negative")
	if _, err := analysis.ParseMethod(a.Method); err != nil {
		errs = append(errs, err)
	}
	if _, err := analysis.ParseWindowFunc(a.WelchWindow); err != nil {
		errs = append(errs, err)
	}

	check(c.Ingest.BatchSize > 0 && c.Ingest.BatchSize <= MaxBatchSize, "ingest.batch_size %d out of range [1, %d]", c.Ingest.BatchSize, MaxBatchSize)

	switch strings.ToLower(c.Store.Kind) {
	case "", store.KindMemory:
	case store.KindParquet:
		check(c.Store.Parquet.Path != "", "store.parquet.path must be set")
	case store.KindS3:
		check(c.Store.S3.Bucket != "", "store.s3.bucket must be set")
	case store.KindKafka:
		check(len(c.Store.Kafka.Brokers) > 0, "store.kafka.brokers must be set")
		check(c.Store.Kafka.Topic != "", "store.kafka.topic must be set")
	default:
		errs = append(errs, fmt.Errorf("store.kind %q is not one of memory, parquet, s3, kafka", c.Store.Kind))
	}

	if c.Transport.UDPEnabled {
		check(strings.Contains(c.Transport.UDPTargetAddress, ":"), "transport.udp_target_address '%s' appears invalid (missing port?)", c.Transport.UDPTargetAddress)
		check(c.Transport.UDPSendInterval >= 0, "transport.udp_send_interval must not be negative")
	}

	check(c.Export.BitDepth == 16 || c.Export.BitDepth == 24 || c.Export.BitDepth == 32, "export.bit_depth %d must be 16, 24 or 32", c.Export.BitDepth)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// applyEnvOverrides reads ENV_* variables. Unparseable values are ignored.
func (c *Config) applyEnvOverrides() {
	boolEnv := func(key string, dst *bool) {
		if val, ok := os.LookupEnv(key); ok {
			if b, err := strconv.ParseBool(val); err == nil {
				*dst = b
				applog.Debugf("configuration: overriding from %s: %v", key, b)
			}
		}
	}
	intEnv := func(key string, dst *int) {
		if val, ok := os.LookupEnv(key); ok {
			if n, err := strconv.Atoi(val); err == nil {
				*dst = n
				applog.Debugf("configuration: overriding from %s: %d", key, n)
			}
		}
	}
	stringEnv := func(key string, dst *string) {
		if val, ok := os.LookupEnv(key); ok {
			*dst = val
			applog.Debugf("configuration: overriding from %s: %s", key, val)
		}
	}

	// General.
	boolEnv("ENV_DEBUG", &c.Debug)
	stringEnv("ENV_LOG_LEVEL", &c.LogLevel)

	// Ingestion and storage.
	stringEnv("ENV_STORE", &c.Store.Kind)
	intEnv("ENV_BATCH_SIZE", &c.Ingest.BatchSize)
	stringEnv("ENV_PARTICIPANT_ID", &c.Ingest.ParticipantID)
	stringEnv("ENV_S3_BUCKET", &c.Store.S3.Bucket)
	stringEnv("ENV_S3_ENDPOINT", &c.Store.S3.Endpoint)
	if val, ok := os.LookupEnv("ENV_KAFKA_BROKERS"); ok {
		c.Store.Kafka.Brokers = splitList(val)
		applog.Debugf("configuration: overriding from ENV_KAFKA_BROKERS: %v", c.Store.Kafka.Brokers)
	}
	stringEnv("ENV_KAFKA_TOPIC", &c.Store.Kafka.Topic)

	// Transport.
	boolEnv("ENV_UDP_ENABLED", &c.Transport.UDPEnabled)
	stringEnv("ENV_UDP_TARGET_ADDRESS", &c.Transport.UDPTargetAddress)
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if d, err := time.ParseDuration(val); err == nil {
			c.Transport.UDPSendInterval = d
		}
	}
	stringEnv("ENV_WS_ADDR", &c.Transport.WebSocketAddr)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
