// SPDX-License-Identifier: MIT
package analysis

import "fmt"

// WindowCount returns how many full windows SplitWindows yields.
func WindowCount(length, size, overlap int) int {
	step := size - overlap
	if size <= 0 || step <= 0 || length < size {
		return 0
	}
	return (length-size)/step + 1
}

// SplitWindows slices samples into windows of size, advancing by
// size-overlap. A trailing remainder shorter than size is dropped. Windows
// share the backing array of samples.
func SplitWindows(samples []float64, size, overlap int) ([][]float64, error) {
	if err := checkWindow(size, overlap); err != nil {
		return nil, err
	}
	step := size - overlap
	out := make([][]float64, 0, WindowCount(len(samples), size, overlap))
	for i := 0; i+size <= len(samples); i += step {
		out = append(out, samples[i:i+size:i+size])
	}
	return out, nil
}

func checkWindow(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: size %d", ErrInvalidWindow, size)
	}
	if overlap < 0 || overlap >= size {
		return fmt.Errorf("%w: overlap %d with size %d", ErrInvalidWindow, overlap, size)
	}
	return nil
}
