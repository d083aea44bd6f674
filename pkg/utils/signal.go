// SPDX-License-Identifier: MIT

// Package utils holds synthetic EEG signals and test doubles shared by the
// package tests.
package utils

import (
	"math"
	"math/rand/v2"
)

// Component is one sinusoid of a synthetic signal, amplitude in microvolts.
type Component struct {
	FrequencyHz float64
	Amplitude   float64
}

// GenerateSine returns n samples of a sine at frequencyHz.
func GenerateSine(n int, samplingRate, frequencyHz, amplitude float64) []float64 {
	return GenerateMix(n, samplingRate, Component{FrequencyHz: frequencyHz, Amplitude: amplitude})
}

// GenerateMix returns n samples of the sum of components.
func GenerateMix(n int, samplingRate float64, components ...Component) []float64 {
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / samplingRate
		for _, c := range components {
			out[i] += c.Amplitude * math.Sin(2*math.Pi*c.FrequencyHz*t)
		}
	}
	return out
}

// GenerateRestingEEG mixes a dominant 10 Hz alpha rhythm with weaker
// delta, theta, beta and gamma components.
func GenerateRestingEEG(n int, samplingRate float64) []float64 {
	return GenerateMix(n, samplingRate,
		Component{FrequencyHz: 2, Amplitude: 8},
		Component{FrequencyHz: 6, Amplitude: 6},
		Component{FrequencyHz: 10, Amplitude: 40},
		Component{FrequencyHz: 20, Amplitude: 5},
		Component{FrequencyHz: 40, Amplitude: 2},
	)
}

// Constant returns n copies of v.
func Constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// AddNoise adds zero-mean Gaussian noise of the given standard deviation to
// x in place. The same seed always yields the same noise.
func AddNoise(x []float64, std float64, seed uint64) {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range x {
		x[i] += r.NormFloat64() * std
	}
}

// FindPeakBin returns the index of the largest value in values[start:end+1],
// clamping the range to the slice.
func FindPeakBin(values []float64, start, end int) int {
	if len(values) == 0 {
		return 0
	}
	start = max(start, 0)
	end = min(end, len(values)-1)

	peak := start
	for i := start + 1; i <= end; i++ {
		if values[i] > values[peak] {
			peak = i
		}
	}
	return peak
}
