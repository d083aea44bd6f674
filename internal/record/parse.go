// SPDX-License-Identifier: MIT
package record

import (
	"fmt"
	"strings"

	applog "eeg/internal/log"
)

// Format identifies a text input shape.
type Format int

const (
	FormatTagged Format = iota
	FormatDelimited
)

func (f Format) String() string {
	if f == FormatDelimited {
		return "delimited"
	}
	return "tagged"
}

// DetectFormat picks a format from the first data line: a comma, or a
// ".csv" name, selects delimited parsing.
func DetectFormat(content, name string) Format {
	if strings.HasSuffix(strings.ToLower(name), ".csv") {
		return FormatDelimited
	}
	for _, line := range splitLines(content) {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Contains(line, ",") {
			return FormatDelimited
		}
		return FormatTagged
	}
	return FormatTagged
}

// Parse parses content in the detected format and returns rows stably
// sorted by (Seconds, Channel). A source yielding no rows returns
// ErrEmptyResult.
func Parse(content, name string) ([]Row, Stats, error) {
	format := DetectFormat(content, name)

	var rows []Row
	var st Stats
	switch format {
	case FormatDelimited:
		rows, st = ParseDelimited(content)
	default:
		var f *TaggedFile
		f, st = ParseTagged(content)
		rows = f.Rows()
	}

	if st.Skipped > 0 {
		applog.Debugw("record: skipped malformed lines", "format", format.String(), "skipped", st.Skipped)
	}
	if len(rows) == 0 {
		return nil, st, fmt.Errorf("%w (%s, %d lines)", ErrEmptyResult, format, st.Lines)
	}

	SortRows(rows)
	return rows, st, nil
}

// ParseText parses content with format detection from the content alone.
func ParseText(content string) ([]Row, error) {
	rows, _, err := Parse(content, "")
	return rows, err
}
