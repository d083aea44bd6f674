// SPDX-License-Identifier: MIT
package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Downsample picks target evenly spaced samples from x, always keeping the
// first and last. Inputs no longer than target are copied unchanged.
func Downsample(x []float64, target int) []float64 {
	if target <= 0 {
		return nil
	}
	if len(x) <= target {
		return append([]float64(nil), x...)
	}
	if target == 1 {
		return []float64{x[0]}
	}

	idx := make([]float64, target)
	floats.Span(idx, 0, float64(len(x)-1))
	out := make([]float64, target)
	for i, pos := range idx {
		out[i] = x[int(math.Round(pos))]
	}
	return out
}
