// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
)

// Method selects how per-bin DFT power is computed.
type Method int

const (
	// MethodDirect evaluates the DFT sum bin by bin.
	MethodDirect Method = iota
	// MethodFFT computes every bin with a real FFT.
	MethodFFT
)

func (m Method) String() string {
	if m == MethodFFT {
		return "fft"
	}
	return "direct"
}

// ParseMethod converts a case-insensitive name to a Method. Unknown names
// return MethodDirect and an error.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "direct", "dft":
		return MethodDirect, nil
	case "fft":
		return MethodFFT, nil
	default:
		return MethodDirect, fmt.Errorf("unknown analysis method: '%s'", name)
	}
}

// Variance returns the population variance (divisor N) of x. A constant
// sequence yields exactly zero.
func Variance(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	// Shifted-data accumulation keeps constant input at exactly zero.
	k := x[0]
	var sum, sumSq float64
	for _, v := range x {
		d := v - k
		sum += d
		sumSq += d * d
	}
	fn := float64(n)
	v := (sumSq - sum*sum/fn) / fn
	if v < 0 {
		return 0
	}
	return v
}

// binCount is the number of bins k with 2k < n.
func binCount(n int) int {
	return (n + 1) / 2
}

// binFrequency returns the frequency (Hz) of bin k for an n-point transform.
func binFrequency(k, n int, samplingRate float64) float64 {
	return float64(k) * samplingRate / float64(n)
}

// centered returns x minus its mean, written into dst.
func centered(dst, x []float64) []float64 {
	dst = append(dst[:0], x...)
	if len(dst) == 0 {
		return dst
	}
	floats.AddConst(-floats.Sum(dst)/float64(len(dst)), dst)
	return dst
}

// dftPower returns (Re² + Im²) / n² for bin k of x, evaluated directly.
func dftPower(x []float64, k int) float64 {
	n := len(x)
	var re, im float64
	step := -2 * math.Pi * float64(k) / float64(n)
	for i, v := range x {
		s, c := math.Sincos(step * float64(i))
		re += v * c
		im += v * s
	}
	return (re*re + im*im) / float64(n*n)
}

// BandPower returns the power of x within the closed band [lowHz, highHz]:
// the mean is removed, then (Re² + Im²)/N² is summed over every bin k with
// 2k < N whose frequency lies in the band.
func BandPower(x []float64, samplingRate, lowHz, highHz float64) float64 {
	if len(x) == 0 || samplingRate <= 0 {
		return 0
	}
	c := centered(nil, x)
	n := len(c)
	band := Band{LowHz: lowHz, HighHz: highHz}

	var total float64
	for k := range binCount(n) {
		if band.Contains(binFrequency(k, n, samplingRate)) {
			total += dftPower(c, k)
		}
	}
	return total
}

// spectrum computes per-bin power for a mean-centred window. Bins outside
// TotalRange are left at zero.
type spectrum interface {
	power(dst, c []float64, samplingRate float64)
}

// directSpectrum evaluates only the bins that fall within TotalRange.
type directSpectrum struct{}

func (directSpectrum) power(dst, c []float64, samplingRate float64) {
	n := len(c)
	for k := range dst {
		dst[k] = 0
		if TotalRange.Contains(binFrequency(k, n, samplingRate)) {
			dst[k] = dftPower(c, k)
		}
	}
}

// fftSpectrum reuses one gonum FFT plan and coefficient buffer per size.
type fftSpectrum struct {
	plan   *fourier.FFT
	coeffs []complex128
}

func newFFTSpectrum(n int) *fftSpectrum {
	return &fftSpectrum{
		plan:   fourier.NewFFT(n),
		coeffs: make([]complex128, n/2+1),
	}
}

func (s *fftSpectrum) power(dst, c []float64, samplingRate float64) {
	n := len(c)
	s.plan.Coefficients(s.coeffs, c)
	norm := float64(n * n)
	for k := range dst {
		dst[k] = 0
		if TotalRange.Contains(binFrequency(k, n, samplingRate)) {
			re, im := real(s.coeffs[k]), imag(s.coeffs[k])
			dst[k] = (re*re + im*im) / norm
		}
	}
}

var _ spectrum = directSpectrum{}
var _ spectrum = (*fftSpectrum)(nil)

// WindowFunc selects a taper for Welch segments.
type WindowFunc int

const (
	Hann WindowFunc = iota
	Hamming
	Blackman
	BlackmanNuttall
	Rectangular
)

// ParseWindowFunc converts a case-insensitive name to a WindowFunc. Unknown
// names return Hann and an error.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "hann", "hanning", "":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "rectangular", "boxcar", "none":
		return Rectangular, nil
	default:
		return Hann, fmt.Errorf("unknown window function name: '%s'", name)
	}
}

// Coefficients returns n taper coefficients.
func (w WindowFunc) Coefficients(n int) []float64 {
	coeffs := make([]float64, n)
	for i := range coeffs {
		coeffs[i] = 1
	}
	switch w {
	case Hamming:
		window.Hamming(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Rectangular:
	default:
		window.Hann(coeffs)
	}
	return coeffs
}
