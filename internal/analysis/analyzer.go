// SPDX-License-Identifier: MIT

// Package analysis computes per-window statistics and EEG band powers for a
// single-channel sequence.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"

	applog "eeg/internal/log"
)

var (
	ErrInvalidWindow       = errors.New("analysis: invalid window")
	ErrInvalidSamplingRate = errors.New("analysis: sampling rate must be positive")
)

// Default analysis parameters.
const (
	DefaultWindowSize   = 256
	DefaultOverlap      = 0
	DefaultSamplingRate = 256.0
)

// Options configures an Analyzer.
type Options struct {
	WindowSize   int
	Overlap      int
	SamplingRate float64
	Method       Method
}

// DefaultOptions returns one-second, non-overlapping windows at 256 Hz
// using the direct DFT.
func DefaultOptions() Options {
	return Options{
		WindowSize:   DefaultWindowSize,
		Overlap:      DefaultOverlap,
		SamplingRate: DefaultSamplingRate,
		Method:       MethodDirect,
	}
}

// Validate checks the window geometry and sampling rate.
func (o Options) Validate() error {
	if err := checkWindow(o.WindowSize, o.Overlap); err != nil {
		return err
	}
	if !(o.SamplingRate > 0) || math.IsInf(o.SamplingRate, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSamplingRate, o.SamplingRate)
	}
	return nil
}

// WindowResult is the analysis of one window.
type WindowResult struct {
	WindowIndex int        `json:"windowIndex"`
	Variance    float64    `json:"variance"`
	Bandpower   BandPowers `json:"bandpower"` // Bins on a shared band edge count toward the upper band
}

// Analyzer runs windowed analysis with reusable scratch buffers. An
// Analyzer is not safe for concurrent use; create one per goroutine.
type Analyzer struct {
	opts     Options
	spectrum spectrum
	centred  []float64
	power    []float64
}

// NewAnalyzer validates opts and allocates the per-window workspace.
func NewAnalyzer(opts Options) (*Analyzer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var s spectrum = directSpectrum{}
	if opts.Method == MethodFFT {
		s = newFFTSpectrum(opts.WindowSize)
	}

	applog.Debugw("analysis: analyzer ready",
		"window", opts.WindowSize, "overlap", opts.Overlap,
		"samplingRate", opts.SamplingRate, "method", opts.Method.String())

	return &Analyzer{
		opts:     opts,
		spectrum: s,
		centred:  make([]float64, 0, opts.WindowSize),
		power:    make([]float64, binCount(opts.WindowSize)),
	}, nil
}

// Options returns the analyzer configuration.
func (a *Analyzer) Options() Options {
	return a.opts
}

// Analyze returns one result per full window, indexed in emission order.
// Cancellation is checked between windows.
func (a *Analyzer) Analyze(ctx context.Context, samples []float64) ([]WindowResult, error) {
	windows, err := SplitWindows(samples, a.opts.WindowSize, a.opts.Overlap)
	if err != nil {
		return nil, err
	}

	results := make([]WindowResult, 0, len(windows))
	for i, w := range windows {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, a.Window(i, w))
	}
	return results, nil
}

// Window analyses a single window of exactly WindowSize samples.
func (a *Analyzer) Window(index int, w []float64) WindowResult {
	a.centred = centered(a.centred, w)
	a.spectrum.power(a.power, a.centred, a.opts.SamplingRate)

	var bands [len(StandardBands)]float64
	n := len(w)
	for k, p := range a.power {
		if p == 0 {
			continue
		}
		if b := bandIndex(binFrequency(k, n, a.opts.SamplingRate)); b >= 0 {
			bands[b] += p
		}
	}

	return WindowResult{
		WindowIndex: index,
		Variance:    Variance(w),
		Bandpower:   powersFrom(bands),
	}
}

// AnalyzeWindows analyses samples with the direct DFT.
func AnalyzeWindows(samples []float64, windowSize int, samplingRate float64, overlap int) ([]WindowResult, error) {
	a, err := NewAnalyzer(Options{
		WindowSize:   windowSize,
		Overlap:      overlap,
		SamplingRate: samplingRate,
		Method:       MethodDirect,
	})
	if err != nil {
		return nil, err
	}
	return a.Analyze(context.Background(), samples)
}
