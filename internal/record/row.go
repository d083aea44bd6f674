// SPDX-License-Identifier: MIT
/*
Package record normalises line-oriented EEG text exports into canonical
rows of (channel, timestamp, voltage).

Two input shapes are understood:

  - tagged whitespace records, one "trial channel sampleIndex voltage" per
    line with '#' comment headers (the .rd.000 family);
  - delimited records with an optional header naming the columns.

Parsing is best effort. A line that does not yield every required field is
dropped without error; only an input that produces no rows at all is
reported, once, as ErrEmptyResult.
*/
package record

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrEmptyResult is returned when a text source yields zero rows.
var ErrEmptyResult = errors.New("record: no valid rows found")

// Row is a canonical sample ready for storage.
type Row struct {
	Channel string  `json:"chan"`
	Seconds float64 `json:"seconds"`
	Voltage float64 `json:"voltage"`
}

// Less orders rows by timestamp, then channel label.
func Less(a, b Row) bool {
	if a.Seconds != b.Seconds {
		return a.Seconds < b.Seconds
	}
	return a.Channel < b.Channel
}

// SortRows stably sorts rows by (Seconds, Channel) in place.
func SortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool { return Less(rows[i], rows[j]) })
}

// IsSorted reports whether rows are in (Seconds, Channel) order.
func IsSorted(rows []Row) bool {
	for i := 1; i < len(rows); i++ {
		if Less(rows[i], rows[i-1]) {
			return false
		}
	}
	return true
}

// Stats counts what a parser saw. Skipped lines are malformed data lines
// that were dropped; comments and blank lines are not counted as skipped.
type Stats struct {
	Lines    int `json:"lines"`
	Comments int `json:"comments"`
	Skipped  int `json:"skipped"`
	Rows     int `json:"rows"`
}

// parseNumber is the only numeric coercion used by the parsers. It yields
// ok=false for anything that is not a finite number.
func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// splitLines splits on \n and \r\n, trimming surrounding whitespace.
func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(strings.TrimSuffix(l, "\r"))
	}
	return lines
}

// ChannelSeries groups rows by channel, preserving row order, and returns
// the channel labels in sorted order alongside the voltage sequences.
func ChannelSeries(rows []Row) ([]string, map[string][]float64) {
	series := make(map[string][]float64)
	for _, r := range rows {
		series[r.Channel] = append(series[r.Channel], r.Voltage)
	}
	labels := make([]string, 0, len(series))
	for ch := range series {
		labels = append(labels, ch)
	}
	sort.Strings(labels)
	return labels, series
}
