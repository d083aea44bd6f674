// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"

	"eeg/pkg/bitint"

	"github.com/mjibson/go-dsp/spectral"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// DefaultWelchSegment is the nominal Welch segment length in samples.
const DefaultWelchSegment = 256

// PSD is a one-sided power spectral density estimate.
type PSD struct {
	Freqs []float64 `json:"freqs"`
	Power []float64 `json:"power"`
}

// WelchOptions configures Welch.
type WelchOptions struct {
	Segment int
	Window  WindowFunc
}

// Detrend removes the least-squares line from x and returns a new slice.
func Detrend(x []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) < 2 {
		return out
	}
	t := make([]float64, len(x))
	floats.Span(t, 0, float64(len(x)-1))
	alpha, beta := stat.LinearRegression(t, x, nil, false)
	for i, v := range x {
		out[i] = v - (alpha + beta*t[i])
	}
	return out
}

// Welch estimates the PSD of x with averaged, half-overlapping segments.
// The input is linearly detrended first. Segments are capped at the input
// length, made even, and zero-padded to the next power of two.
func Welch(x []float64, samplingRate float64, opts WelchOptions) (*PSD, error) {
	if !(samplingRate > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSamplingRate, samplingRate)
	}
	if len(x) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 samples, got %d", ErrInvalidWindow, len(x))
	}
	segment := opts.Segment
	if segment <= 0 {
		segment = DefaultWelchSegment
	}
	nfft := min(segment, len(x))
	nfft -= nfft % 2

	power, freqs := spectral.Pwelch(Detrend(x), samplingRate, &spectral.PwelchOptions{
		NFFT:     nfft,
		Noverlap: nfft / 2,
		Window:   opts.Window.Coefficients,
		Pad:      bitint.NextPowerOfTwo(nfft),
	})
	return &PSD{Freqs: freqs, Power: power}, nil
}

// BandPower integrates the PSD over the closed band with the trapezoidal
// rule. Fewer than two points inside the band yields zero.
func (p *PSD) BandPower(b Band) float64 {
	var xs, ys []float64
	for i, f := range p.Freqs {
		if b.Contains(f) {
			xs = append(xs, f)
			ys = append(ys, p.Power[i])
		}
	}
	if len(xs) < 2 {
		return 0
	}
	return integrate.Trapezoidal(xs, ys)
}

// Bands integrates every standard band.
func (p *PSD) Bands() BandPowers {
	var v [len(StandardBands)]float64
	for i, b := range StandardBands {
		v[i] = p.BandPower(b)
	}
	return powersFrom(v)
}

// Peak returns the frequency with the highest power inside b.
func (p *PSD) Peak(b Band) (freq, power float64) {
	for i, f := range p.Freqs {
		if b.Contains(f) && p.Power[i] > power {
			freq, power = f, p.Power[i]
		}
	}
	return freq, power
}
