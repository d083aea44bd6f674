// SPDX-License-Identifier: MIT

// Package cmd defines the command line interface.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"eeg/internal/config"
	applog "eeg/internal/log"
	"eeg/internal/pipeline"
	"eeg/internal/source"
	"eeg/pkg/build"

	"github.com/spf13/cobra"
)

// Flags shared by every command.
type globalOptions struct {
	ConfigPath string
	LogLevel   string
	Verbose    bool
}

// Execute runs the command line in args, writing results to out.
func Execute(ctx context.Context, args []string, out io.Writer) error {
	root := NewRootCommand(out)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// NewRootCommand builds the command tree. Loaded configuration is shared
// with subcommands through the returned command's persistent pre-run.
func NewRootCommand(out io.Writer) *cobra.Command {
	buildInfo := build.GetBuildInfo()
	var (
		opts globalOptions
		cfg  *config.Config
	)

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         build.Description,
		Version:       buildInfo.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig(opts.ConfigPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				loaded.LogLevel = opts.LogLevel
			}
			if opts.Verbose || loaded.Debug {
				loaded.LogLevel = "debug"
			}
			level, ok := applog.ParseLevel(loaded.LogLevel)
			if !ok {
				return fmt.Errorf("%w: unknown log level %q", config.ErrInvalid, loaded.LogLevel)
			}
			applog.SetLevel(level)
			cfg = loaded
			return nil
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "",
		"Path to a YAML config file (default: ./"+config.DefaultConfigFile+" if present)")
	rootCmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", config.DefaultLogLevel,
		"Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false,
		"Show verbose output (same as --log-level debug)")

	engine := func() *pipeline.Engine { return pipeline.New(cfg) }
	current := func() *config.Config { return cfg }

	rootCmd.AddCommand(
		newSniffCommand(out, engine, current),
		newParseCommand(out, engine),
		newAnalyzeCommand(out, engine, current),
		newIngestCommand(out, engine, current),
		newExportCommand(out, engine, current),
	)
	return rootCmd
}

func newSniffCommand(out io.Writer, engine func() *pipeline.Engine, cfg func() *config.Config) *cobra.Command {
	var (
		channels int
		rate     float64
	)
	c := &cobra.Command{
		Use:   "sniff <file>",
		Short: "Guess the binary layout of a raw recording and preview it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := cfg()
			if cmd.Flags().Changed("channels") {
				conf.Sniff.Channels = channels
			}
			if cmd.Flags().Changed("sampling-rate") {
				conf.Sniff.SamplingRate = rate
			}
			if err := conf.Validate(); err != nil {
				return err
			}
			reports, err := engine().SniffFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(out, reports)
		},
	}
	c.Flags().IntVar(&channels, "channels", config.DefaultSniffChannels, "Channel count assumed by the search")
	c.Flags().Float64Var(&rate, "sampling-rate", config.DefaultSamplingRate, "Sampling rate in Hz")
	return c
}

func newParseCommand(out io.Writer, engine func() *pipeline.Engine) *cobra.Command {
	var withRows bool
	c := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a text recording into canonical rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := engine().ParseFile(args[0])
			if err != nil {
				return err
			}
			if !withRows {
				return writeJSON(out, reports)
			}
			type withRowsReport struct {
				pipeline.ParseReport
				Rows any `json:"rows"`
			}
			full := make([]withRowsReport, len(reports))
			for i, r := range reports {
				full[i] = withRowsReport{ParseReport: r, Rows: r.Rows}
			}
			return writeJSON(out, full)
		},
	}
	c.Flags().BoolVar(&withRows, "rows", false, "Include every parsed row in the output")
	return c
}

func newAnalyzeCommand(out io.Writer, engine func() *pipeline.Engine, cfg func() *config.Config) *cobra.Command {
	var (
		channel  string
		window   int
		overlap  int
		rate     float64
		method   string
		udpAddr  string
		wsAddr   string
		udpPaced bool
	)
	c := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Compute per-window variance and band power of one channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := cfg()
			flags := cmd.Flags()
			if flags.Changed("window") {
				conf.Analysis.WindowSize = window
			}
			if flags.Changed("overlap") {
				conf.Analysis.Overlap = overlap
			}
			if flags.Changed("sampling-rate") {
				conf.Analysis.SamplingRate = rate
			}
			if flags.Changed("method") {
				conf.Analysis.Method = method
			}
			if flags.Changed("udp") {
				conf.Transport.UDPEnabled = true
				conf.Transport.UDPTargetAddress = udpAddr
			}
			if flags.Changed("ws-addr") {
				conf.Transport.WebSocketAddr = wsAddr
			}
			if udpPaced && conf.Analysis.SamplingRate > 0 {
				conf.Transport.UDPSendInterval = windowDuration(conf)
			}
			if err := conf.Validate(); err != nil {
				return err
			}

			t, err := pipeline.OpenTransport(conf.Transport)
			if err != nil {
				return err
			}
			res, err := engine().AnalyzeFile(cmd.Context(), args[0], channel, t)
			err = errors.Join(err, t.Close())
			if err != nil {
				return err
			}
			return writeJSON(out, res)
		},
	}
	c.Flags().StringVar(&channel, "channel", "", "Channel label (default: FP1, FP2, CZ, C3, C4, else first)")
	c.Flags().IntVarP(&window, "window", "w", config.DefaultWindowSize, "Window size in samples")
	c.Flags().IntVar(&overlap, "overlap", config.DefaultOverlap, "Samples shared by consecutive windows")
	c.Flags().Float64Var(&rate, "sampling-rate", config.DefaultSamplingRate, "Sampling rate in Hz")
	c.Flags().StringVar(&method, "method", config.DefaultMethod, "Spectrum method: direct or fft")
	c.Flags().StringVar(&udpAddr, "udp", config.DefaultUDPTargetAddress, "Stream window packets to this UDP address")
	c.Flags().StringVar(&wsAddr, "ws-addr", "", "Broadcast window results on this WebSocket address")
	c.Flags().BoolVar(&udpPaced, "realtime", false, "Pace UDP packets at one window duration each")
	return c
}

func newIngestCommand(out io.Writer, engine func() *pipeline.Engine, cfg func() *config.Config) *cobra.Command {
	var (
		kind        string
		participant string
		batchSize   int
		parquetPath string
		quiet       bool
	)
	c := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Bulk load a text recording into the configured store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := cfg()
			flags := cmd.Flags()
			if flags.Changed("store") {
				conf.Store.Kind = kind
			}
			if flags.Changed("participant") {
				conf.Ingest.ParticipantID = participant
			}
			if flags.Changed("batch-size") {
				conf.Ingest.BatchSize = batchSize
			}
			if flags.Changed("parquet-path") {
				conf.Store.Parquet.Path = parquetPath
			}
			if err := conf.Validate(); err != nil {
				return err
			}

			progress := func(pct int) {
				if !quiet {
					fmt.Fprintf(cmd.ErrOrStderr(), "\ringest: %3d%%", pct)
				}
			}
			report, err := engine().IngestFile(cmd.Context(), args[0], progress)
			if !quiet {
				fmt.Fprintln(cmd.ErrOrStderr())
			}
			if err != nil {
				return err
			}
			return writeJSON(out, report)
		},
	}
	c.Flags().StringVar(&kind, "store", config.DefaultStoreKind, "Store backend: memory, parquet, s3 or kafka")
	c.Flags().StringVar(&participant, "participant", "", "Participant ID stamped on every row (default: random)")
	c.Flags().IntVarP(&batchSize, "batch-size", "b", config.DefaultBatchSize, "Rows per batch")
	c.Flags().StringVar(&parquetPath, "parquet-path", config.DefaultParquetPath, "Output file for the parquet store")
	c.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print progress")
	return c
}

func newExportCommand(out io.Writer, engine func() *pipeline.Engine, cfg func() *config.Config) *cobra.Command {
	var (
		output   string
		bitDepth int
		gain     float64
	)
	c := &cobra.Command{
		Use:   "export <file>",
		Short: "Render the sniffed channels of a raw recording as WAV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := cfg()
			if cmd.Flags().Changed("bit-depth") {
				conf.Export.BitDepth = bitDepth
			}
			if cmd.Flags().Changed("gain") {
				conf.Export.Gain = gain
			}
			if err := conf.Validate(); err != nil {
				return err
			}
			if output == "" {
				output = wavName(args[0])
			}
			info, err := engine().ExportFile(cmd.Context(), args[0], output)
			if err != nil {
				return err
			}
			return writeJSON(out, struct {
				Output string `json:"output"`
				Info   any    `json:"info"`
			}{output, info})
		},
	}
	c.Flags().StringVarP(&output, "output", "o", "", "Output WAV path (default: input name with .wav)")
	c.Flags().IntVar(&bitDepth, "bit-depth", config.DefaultExportBitDepth, "Bits per sample: 16, 24 or 32")
	c.Flags().Float64Var(&gain, "gain", 0, "Sample scale factor (0 normalises to the loudest sample)")
	return c
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// windowDuration is the signal time one window hop covers.
func windowDuration(c *config.Config) time.Duration {
	hop := float64(c.Analysis.WindowSize - c.Analysis.Overlap)
	return time.Duration(hop / c.Analysis.SamplingRate * float64(time.Second))
}

// wavName replaces the extension of path, after any compression suffix,
// with .wav.
func wavName(path string) string {
	_, name := source.CodecFor(path)
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".wav"
}
