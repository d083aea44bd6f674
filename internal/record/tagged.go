// SPDX-License-Identifier: MIT
package record

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultSamplePeriodMs applies when no "<float> msecs uV" header is present.
const DefaultSamplePeriodMs = 1000.0 / 256.0

var samplePeriodPattern = regexp.MustCompile(`(?i)([\d.]+)\s*msecs\s*uV`)

// Header is the metadata recovered from '#' comment lines.
type Header struct {
	SamplePeriodMs float64        `json:"samplePeriodMs"`
	SamplingRate   float64        `json:"samplingRate"`
	PeriodDeclared bool           `json:"periodDeclared"` // A "msecs uV" line set SamplePeriodMs
	Trials         int            `json:"trials,omitempty"`
	Channels       int            `json:"channels,omitempty"`
	Samples        int            `json:"samples,omitempty"`
	ChannelIndex   map[string]int `json:"channelIndex,omitempty"`
}

// Sample is one tagged data line.
type Sample struct {
	Trial   int
	Channel string
	Index   float64
	Voltage float64
}

// TaggedFile is a parsed tagged-whitespace source.
type TaggedFile struct {
	Header  Header
	Samples []Sample
}

// ParseTagged parses tagged whitespace records. Data lines need four
// fields; any that fail numeric coercion are dropped.
func ParseTagged(content string) (*TaggedFile, Stats) {
	f := &TaggedFile{Header: Header{SamplePeriodMs: DefaultSamplePeriodMs}}
	var st Stats

	for _, line := range splitLines(content) {
		if line == "" {
			continue
		}
		st.Lines++
		if strings.HasPrefix(line, "#") {
			st.Comments++
			f.Header.absorb(strings.TrimSpace(line[1:]))
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 4 {
			st.Skipped++
			continue
		}
		trial, okTrial := parseNumber(fields[0])
		index, okIndex := parseNumber(fields[2])
		voltage, okVoltage := parseNumber(fields[3])
		if !okTrial || !okIndex || !okVoltage {
			st.Skipped++
			continue
		}
		f.Samples = append(f.Samples, Sample{
			Trial:   int(trial),
			Channel: strings.ToUpper(fields[1]),
			Index:   index,
			Voltage: voltage,
		})
	}

	f.Header.SamplingRate = 1000 / f.Header.SamplePeriodMs
	st.Rows = len(f.Samples)
	return f, st
}

// absorb picks metadata out of a single comment body.
func (h *Header) absorb(text string) {
	if m := samplePeriodPattern.FindStringSubmatch(text); m != nil {
		if ms, err := strconv.ParseFloat(m[1], 64); err == nil && ms > 0 && !math.IsInf(ms, 0) {
			h.SamplePeriodMs = ms
			h.PeriodDeclared = true
		}
		return
	}

	lower := strings.ToLower(text)
	if strings.Contains(lower, "trials") && strings.Contains(lower, "chans") && strings.Contains(lower, "samples") {
		var ints []int
		for _, tok := range strings.Fields(strings.ReplaceAll(text, ",", " ")) {
			if n, err := strconv.Atoi(tok); err == nil {
				ints = append(ints, n)
			}
		}
		if len(ints) >= 3 {
			h.Trials, h.Channels, h.Samples = ints[0], ints[1], ints[2]
		}
		return
	}

	// "FP1 chan 0" maps a label to its acquisition index.
	toks := strings.Fields(text)
	for i, tok := range toks {
		if tok != "chan" || i == 0 || i+1 >= len(toks) {
			continue
		}
		idx, err := strconv.Atoi(toks[i+1])
		if err != nil {
			return
		}
		if h.ChannelIndex == nil {
			h.ChannelIndex = make(map[string]int)
		}
		h.ChannelIndex[strings.ToUpper(strings.Join(toks[:i], " "))] = idx
		return
	}
}

// Rows converts samples to canonical rows. The timestamp is the raw sample
// index rounded to six decimals, not scaled by the sample period. Existing
// stored data uses this scale.
func (f *TaggedFile) Rows() []Row {
	rows := make([]Row, len(f.Samples))
	for i, s := range f.Samples {
		rows[i] = Row{
			Channel: s.Channel,
			Seconds: math.Round(s.Index*1e6) / 1e6,
			Voltage: s.Voltage,
		}
	}
	return rows
}
