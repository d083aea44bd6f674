// SPDX-License-Identifier: MIT
package sniff

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Trace is one preview channel.
type Trace struct {
	Name   string    `json:"name"`
	Values []float64 `json:"y"`
}

// Preview is a bounded slice of the decoded matrix, small enough to hand to
// a plotting front end.
type Preview struct {
	TimeMillis []float64 `json:"x"`
	Traces     []Trace   `json:"traces"`
}

// PreviewLength is the number of samples that fit in millis at the given
// sampling rate, capped at samples.
func PreviewLength(samples int, samplingRate, millis float64) int {
	dt := 1000 / samplingRate
	return min(samples, int(math.Floor(millis/dt)))
}

// NewPreview copies the first n channels truncated to millis of signal.
func NewPreview(channels [][]float64, n int, samplingRate, millis float64) Preview {
	if len(channels) == 0 || n <= 0 {
		return Preview{}
	}
	n = min(n, len(channels))
	length := PreviewLength(len(channels[0]), samplingRate, millis)
	dt := 1000 / samplingRate

	p := Preview{
		TimeMillis: make([]float64, length),
		Traces:     make([]Trace, n),
	}
	for i := range p.TimeMillis {
		p.TimeMillis[i] = float64(i) * dt
	}
	for ch := 0; ch < n; ch++ {
		values := make([]float64, length)
		copy(values, channels[ch][:length])
		p.Traces[ch] = Trace{Name: fmt.Sprintf("Ch %d", ch+1), Values: values}
	}
	return p
}

// Stats is a robust amplitude summary of a decoding. Min and Max are the
// 1st and 99th percentiles so a few wild values do not dominate.
type Stats struct {
	Min       float64 `json:"min"`
	Median    float64 `json:"median"`
	Max       float64 `json:"max"`
	Mean      float64 `json:"mean"`
	Std       float64 `json:"std"`
	Plausible float64 `json:"plausibleFrac"`
}

// Summarize computes Stats over all finite values in channels.
func Summarize(channels [][]float64, limit float64) Stats {
	var flat []float64
	var total, ok int
	for _, ch := range channels {
		for _, v := range ch {
			total++
			if math.Abs(v) < limit {
				ok++
			}
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				flat = append(flat, v)
			}
		}
	}
	if len(flat) == 0 {
		return Stats{}
	}
	sort.Float64s(flat)
	mean, variance := stat.PopMeanVariance(flat, nil)
	return Stats{
		Min:       stat.Quantile(0.01, stat.LinInterp, flat, nil),
		Median:    stat.Quantile(0.5, stat.LinInterp, flat, nil),
		Max:       stat.Quantile(0.99, stat.LinInterp, flat, nil),
		Mean:      mean,
		Std:       math.Sqrt(variance),
		Plausible: float64(ok) / float64(total),
	}
}
