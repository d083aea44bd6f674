// SPDX-License-Identifier: MIT
/*
Package sniff infers a multi-channel sample matrix from an acquisition file
whose layout is unknown. Many recorders write no discoverable header, so the
buffer is tried against a bounded list of (offset, dtype) interpretations and
each one is scored by how plausible its amplitudes look for EEG data.

The search is a pure function over an explicit candidate list: enumerate,
score each candidate independently, keep the first maximum. Nothing is
cached between calls.

	res, err := sniff.Decode(ctx, buf, sniff.DefaultOptions())
	if errors.Is(err, sniff.ErrNoValidDecoding) {
		// buffer too small for any interpretation
	}
*/
package sniff

import (
	"context"
	"errors"
	"fmt"
	"math"

	applog "eeg/internal/log"
)

// Default search parameters.
const (
	DefaultChannels        = 64
	DefaultPreviewChannels = 5
	DefaultSamplingRate    = 256.0
	DefaultMaxScanOffset   = 2048
	DefaultOffsetStep      = 4
	DefaultMinSamples      = 10
	DefaultPlausibleLimit  = 100000.0
	DefaultPreviewMillis   = 255.0
)

// ErrNoValidDecoding is returned when no (offset, dtype) trial yields at
// least MinSamples samples per channel.
var ErrNoValidDecoding = errors.New("sniff: no valid decoding")

// Options controls the candidate search.
type Options struct {
	Channels        int     // Fixed channel count assumed for every trial.
	PreviewChannels int     // Number of leading channels copied into the preview.
	SamplingRate    float64 // Hz, used only for the preview time axis.
	MaxScanOffset   int     // Offsets are tried in [0, min(MaxScanOffset, len)).
	OffsetStep      int     // Stride between tried offsets, in bytes.
	MinSamples      int     // Trials with fewer samples per channel are skipped.
	PlausibleLimit  float64 // |v| below this counts as a plausible amplitude.
	PreviewMillis   float64 // Preview length in milliseconds.
}

// DefaultOptions returns the reference search configuration.
func DefaultOptions() Options {
	return Options{
		Channels:        DefaultChannels,
		PreviewChannels: DefaultPreviewChannels,
		SamplingRate:    DefaultSamplingRate,
		MaxScanOffset:   DefaultMaxScanOffset,
		OffsetStep:      DefaultOffsetStep,
		MinSamples:      DefaultMinSamples,
		PlausibleLimit:  DefaultPlausibleLimit,
		PreviewMillis:   DefaultPreviewMillis,
	}
}

// withDefaults fills zero fields so a partially populated Options is usable.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Channels <= 0 {
		o.Channels = d.Channels
	}
	if o.PreviewChannels < 0 {
		o.PreviewChannels = 0
	}
	if o.SamplingRate <= 0 {
		o.SamplingRate = d.SamplingRate
	}
	if o.MaxScanOffset <= 0 {
		o.MaxScanOffset = d.MaxScanOffset
	}
	if o.OffsetStep <= 0 {
		o.OffsetStep = d.OffsetStep
	}
	if o.MinSamples <= 0 {
		o.MinSamples = d.MinSamples
	}
	if o.PlausibleLimit <= 0 {
		o.PlausibleLimit = d.PlausibleLimit
	}
	if o.PreviewMillis <= 0 {
		o.PreviewMillis = d.PreviewMillis
	}
	return o
}

// Candidate is one hypothesised interpretation of the buffer.
type Candidate struct {
	Offset   int
	DType    DType
	Channels int
	Samples  int
}

// Span is the number of bytes the candidate covers after Offset.
func (c Candidate) Span() int {
	return c.Channels * c.Samples * c.DType.Width
}

// Candidates enumerates every trial for a buffer of the given size, offset
// major and dtype minor. Trials below MinSamples are not listed.
func Candidates(size int, opts Options) []Candidate {
	opts = opts.withDefaults()
	limit := min(opts.MaxScanOffset, size)

	var out []Candidate
	for offset := 0; offset < limit; offset += opts.OffsetStep {
		for _, dt := range dtypes {
			samples := (size - offset) / (dt.Width * opts.Channels)
			if samples < opts.MinSamples {
				continue
			}
			out = append(out, Candidate{
				Offset:   offset,
				DType:    dt,
				Channels: opts.Channels,
				Samples:  samples,
			})
		}
	}
	return out
}

// Score rates a candidate against buf: the fraction of values with
// |v| < limit, times ln(1 + total values).
func Score(buf []byte, c Candidate, limit float64) (score, plausible float64) {
	total := c.Channels * c.Samples
	if total == 0 {
		return 0, 0
	}
	width := c.DType.Width
	region := buf[c.Offset : c.Offset+c.Span()]

	// Channel-major interleaving makes the covered region contiguous, so
	// scoring can walk it linearly without materialising channels.
	var ok int
	for i := 0; i+width <= len(region); i += width {
		if math.Abs(c.DType.At(region[i:])) < limit {
			ok++
		}
	}
	plausible = float64(ok) / float64(total)
	return plausible * math.Log1p(float64(total)), plausible
}

// Extract materialises the candidate's channels from buf.
func Extract(buf []byte, c Candidate) [][]float64 {
	width := c.DType.Width
	channels := make([][]float64, c.Channels)
	for ch := range channels {
		channels[ch] = make([]float64, c.Samples)
	}
	for s := 0; s < c.Samples; s++ {
		base := c.Offset + s*c.Channels*width
		for ch := 0; ch < c.Channels; ch++ {
			channels[ch][s] = c.DType.At(buf[base+ch*width:])
		}
	}
	return channels
}

// DecodeInfo summarises the winning interpretation.
type DecodeInfo struct {
	Offset            int     `json:"offset"`
	DType             DType   `json:"-"`
	DTypeName         string  `json:"dtype"`
	Channels          int     `json:"nChannels"`
	Samples           int     `json:"nSamples"`
	SamplingRate      float64 `json:"samplingRate"`
	Score             float64 `json:"score"`
	PlausibleFraction float64 `json:"plausibleFraction"`
	Trials            int     `json:"trials"`
	Stats             Stats   `json:"stats"`
}

// Result is the output of Decode.
type Result struct {
	Channels [][]float64 `json:"-"`
	Info     DecodeInfo  `json:"info"`
	Preview  Preview     `json:"preview"`
}

// Decode searches buf for the most plausible multi-channel decoding. The
// context is checked between trials; a single trial is not interruptible.
func Decode(ctx context.Context, buf []byte, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	candidates := Candidates(len(buf), opts)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %d bytes cannot hold %d samples of %d channels",
			ErrNoValidDecoding, len(buf), opts.MinSamples, opts.Channels)
	}

	best := -1
	var bestScore, bestPlausible float64
	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		score, plausible := Score(buf, c, opts.PlausibleLimit)
		if best < 0 || score > bestScore {
			best, bestScore, bestPlausible = i, score, plausible
		}
	}

	winner := candidates[best]
	channels := Extract(buf, winner)
	applog.Debugw("sniff: selected decoding",
		"offset", winner.Offset,
		"dtype", winner.DType.String(),
		"samples", winner.Samples,
		"score", bestScore,
		"trials", len(candidates))

	return &Result{
		Channels: channels,
		Info: DecodeInfo{
			Offset:            winner.Offset,
			DType:             winner.DType,
			DTypeName:         winner.DType.String(),
			Channels:          winner.Channels,
			Samples:           winner.Samples,
			SamplingRate:      opts.SamplingRate,
			Score:             bestScore,
			PlausibleFraction: bestPlausible,
			Trials:            len(candidates),
			Stats:             Summarize(channels, opts.PlausibleLimit),
		},
		Preview: NewPreview(channels, opts.PreviewChannels, opts.SamplingRate, opts.PreviewMillis),
	}, nil
}
