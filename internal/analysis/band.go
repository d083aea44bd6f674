// SPDX-License-Identifier: MIT
package analysis

// Band defines the name and frequency range of an EEG rhythm.
type Band struct {
	Name   string  `json:"name" yaml:"name"`
	LowHz  float64 `json:"lowHz" yaml:"low_hz"`
	HighHz float64 `json:"highHz" yaml:"high_hz"`
}

// Standard EEG bands, in ascending order.
var (
	Delta = Band{Name: "delta", LowHz: 0.5, HighHz: 4}
	Theta = Band{Name: "theta", LowHz: 4, HighHz: 8}
	Alpha = Band{Name: "alpha", LowHz: 8, HighHz: 13}
	Beta  = Band{Name: "beta", LowHz: 13, HighHz: 30}
	Gamma = Band{Name: "gamma", LowHz: 30, HighHz: 50}

	// TotalRange spans every standard band.
	TotalRange = Band{Name: "total", LowHz: 0.5, HighHz: 50}
)

// StandardBands lists the bands reported for every window.
var StandardBands = [...]Band{Delta, Theta, Alpha, Beta, Gamma}

// Contains reports whether freq lies in the closed interval [LowHz, HighHz].
func (b Band) Contains(freq float64) bool {
	return freq >= b.LowHz && freq <= b.HighHz
}

// bandIndex assigns freq to one of StandardBands. Bands are half-open
// [low, high) so a bin on a shared edge is counted once; the last band is
// closed at its upper edge. Returns -1 outside every band.
func bandIndex(freq float64) int {
	last := len(StandardBands) - 1
	for i, band := range StandardBands {
		if freq >= band.LowHz && (freq < band.HighHz || (i == last && freq == band.HighHz)) {
			return i
		}
	}
	return -1
}

// BandPowers holds the power of each standard band for one window.
type BandPowers struct {
	Delta float64 `json:"delta"`
	Theta float64 `json:"theta"`
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
}

// Values returns the powers in StandardBands order.
func (p BandPowers) Values() [len(StandardBands)]float64 {
	return [...]float64{p.Delta, p.Theta, p.Alpha, p.Beta, p.Gamma}
}

// Sum returns the combined power of all bands.
func (p BandPowers) Sum() float64 {
	return p.Delta + p.Theta + p.Alpha + p.Beta + p.Gamma
}

// Dominant returns the band with the most power. Ties go to the lower band.
func (p BandPowers) Dominant() Band {
	values := p.Values()
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return StandardBands[best]
}

func powersFrom(v [len(StandardBands)]float64) BandPowers {
	return BandPowers{Delta: v[0], Theta: v[1], Alpha: v[2], Beta: v[3], Gamma: v[4]}
}
