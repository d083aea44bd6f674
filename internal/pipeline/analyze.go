// SPDX-License-Identifier: MIT
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"eeg/internal/analysis"
	applog "eeg/internal/log"
	"eeg/internal/record"
	"eeg/internal/transport"
)

// Analysis is the windowed analysis of one channel of a recording.
type Analysis struct {
	Name         string                  `json:"name"`
	Channel      string                  `json:"channel"`
	Samples      int                     `json:"samples"`
	SamplingRate float64                 `json:"samplingRate"`
	Windows      []analysis.WindowResult `json:"windows"`
	Welch        analysis.BandPowers     `json:"welch"`
	Dominant     string                  `json:"dominant,omitempty"`
	PeakHz       float64                 `json:"peakHz"`
	Trace        []float64               `json:"trace,omitempty"`
}

// AnalyzeFile analyses one channel of the first text recording in path.
// Tagged files use the average over trials; delimited files use the
// channel's rows in time order. Channel labels match case-insensitively and
// an empty channel picks the preferred one. A tagged header that declares
// its sample period overrides the configured sampling rate.
// Every window result is sent to t when it is not nil.
func (e *Engine) AnalyzeFile(ctx context.Context, path, channel string, t transport.Transport) (*Analysis, error) {
	entries, err := entries(path)
	if err != nil {
		return nil, err
	}
	entry := entries[0]
	if channel == "" {
		channel = e.config.Analysis.Channel
	}
	channel = strings.ToUpper(strings.TrimSpace(channel))

	opts := e.config.AnalysisOptions()
	series, channel, rate, err := channelSeries(string(entry.Data), entry.Name, channel)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", entry.Name, err)
	}
	if rate > 0 {
		opts.SamplingRate = rate
	}

	a, err := analysis.NewAnalyzer(opts)
	if err != nil {
		return nil, err
	}
	windows, err := a.Analyze(ctx, series)
	if err != nil {
		return nil, err
	}

	out := &Analysis{
		Name:         entry.Name,
		Channel:      channel,
		Samples:      len(series),
		SamplingRate: opts.SamplingRate,
		Windows:      windows,
		Trace:        analysis.Downsample(series, e.config.Analysis.TracePoints),
	}
	if psd, err := analysis.Welch(series, opts.SamplingRate, e.config.WelchOptions()); err == nil {
		out.Welch = psd.Bands()
		out.Dominant = out.Welch.Dominant().Name
		out.PeakHz, _ = psd.Peak(analysis.TotalRange)
	} else {
		applog.Warnf("pipeline: welch estimate skipped: %v", err)
	}

	if t != nil {
		for _, w := range windows {
			if err := t.Send(w); err != nil {
				return out, fmt.Errorf("analyze %s: publish window %d: %w", entry.Name, w.WindowIndex, err)
			}
		}
	}

	applog.Infow("pipeline: analyzed",
		"entry", entry.Name,
		"channel", channel,
		"samples", len(series),
		"windows", len(windows))
	return out, nil
}

// channelSeries extracts the sequence to analyse and, for tagged files
// whose header declares a sample period, the implied sampling rate. A zero
// rate keeps the configured one.
func channelSeries(content, name, channel string) ([]float64, string, float64, error) {
	if record.DetectFormat(content, name) == record.FormatTagged {
		f, _ := record.ParseTagged(content)
		trials := f.Trials()
		if len(trials) == 0 {
			return nil, "", 0, record.ErrEmptyResult
		}
		if channel == "" {
			channel = trials.PrimaryChannel()
		}
		avg, err := trials.ChannelAverage(channel)
		if err != nil {
			return nil, "", 0, err
		}
		if !f.Header.PeriodDeclared {
			return avg, channel, 0, nil
		}
		return avg, channel, f.Header.SamplingRate, nil
	}

	rows, _, err := record.Parse(content, name)
	if err != nil {
		return nil, "", 0, err
	}
	labels, series := record.ChannelSeries(rows)
	if channel == "" {
		channel = record.PickChannel(labels)
	}
	values, ok := series[channel]
	if !ok {
		return nil, "", 0, fmt.Errorf("record: channel %q not present", channel)
	}
	return values, channel, 0, nil
}
