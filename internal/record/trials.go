// SPDX-License-Identifier: MIT
package record

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// PreferredChannels are tried in order when no channel is requested.
var PreferredChannels = []string{"FP1", "FP2", "CZ", "C3", "C4"}

// TrialSet holds per-channel, per-trial voltage sequences in file order.
type TrialSet map[string]map[int][]float64

// Trials groups the file's samples by channel and trial.
func (f *TaggedFile) Trials() TrialSet {
	set := make(TrialSet)
	for _, s := range f.Samples {
		byTrial, ok := set[s.Channel]
		if !ok {
			byTrial = make(map[int][]float64)
			set[s.Channel] = byTrial
		}
		byTrial[s.Trial] = append(byTrial[s.Trial], s.Voltage)
	}
	return set
}

// Channels returns the channel labels in sorted order.
func (t TrialSet) Channels() []string {
	out := make([]string, 0, len(t))
	for ch := range t {
		out = append(out, ch)
	}
	sort.Strings(out)
	return out
}

// PrimaryChannel picks the first preferred channel present, falling back to
// the first label in sorted order.
func (t TrialSet) PrimaryChannel() string {
	return PickChannel(t.Channels())
}

// PickChannel returns the first of PreferredChannels found in channels,
// else the smallest label. It returns "" for an empty list.
func PickChannel(channels []string) string {
	for _, want := range PreferredChannels {
		for _, ch := range channels {
			if ch == want {
				return ch
			}
		}
	}
	if len(channels) == 0 {
		return ""
	}
	sorted := append([]string(nil), channels...)
	sort.Strings(sorted)
	return sorted[0]
}

// ChannelAverage averages every trial of channel sample by sample. Trials
// are trimmed to the shortest one first.
func (t TrialSet) ChannelAverage(channel string) ([]float64, error) {
	byTrial, ok := t[channel]
	if !ok || len(byTrial) == 0 {
		return nil, fmt.Errorf("record: channel %q not present", channel)
	}

	shortest := -1
	for _, values := range byTrial {
		if shortest < 0 || len(values) < shortest {
			shortest = len(values)
		}
	}

	avg := make([]float64, shortest)
	for _, values := range byTrial {
		floats.Add(avg, values[:shortest])
	}
	floats.Scale(1/float64(len(byTrial)), avg)
	return avg, nil
}
