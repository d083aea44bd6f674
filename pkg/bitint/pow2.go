/*
Package bitint holds power-of-two helpers used to size spectral segments.

	nfft := bitint.NextPowerOfTwo(250) // 256

NextPowerOfTwo computes 1 << bits.Len(size-1). Subtracting one first keeps
exact powers of two unchanged: for 8, Len(7) is 3 and 1<<3 is 8, whereas
Len(8) would be 4 and double the input.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= size. Sizes of zero
// or less return 1.
//
//	Input  Output
//	250    256
//	256    256
//	0      1
func NextPowerOfTwo(size int) int {
	if size <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}
