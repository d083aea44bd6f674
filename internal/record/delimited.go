// SPDX-License-Identifier: MIT
package record

import "strings"

// headerTokens mark a first line as a column header when any appears in it.
var headerTokens = []string{"seconds", "t_ms", "chan", "channel", "voltage", "voltage_uv"}

// columns holds resolved header indices; -1 means absent.
type columns struct {
	seconds, millis, channel, voltage int
}

// resolveColumns maps header names to indices. Synonyms resolve first match
// wins: "chan" before "channel", "voltage" before "voltage_uv".
func resolveColumns(header string) columns {
	names := splitFields(strings.ToLower(header))
	index := func(name string) int {
		for i, n := range names {
			if n == name {
				return i
			}
		}
		return -1
	}
	firstOf := func(candidates ...string) int {
		for _, c := range candidates {
			if i := index(c); i >= 0 {
				return i
			}
		}
		return -1
	}
	return columns{
		seconds: index("seconds"),
		millis:  index("t_ms"),
		channel: firstOf("chan", "channel"),
		voltage: firstOf("voltage", "voltage_uv"),
	}
}

func splitFields(line string) []string {
	parts := strings.Split(line, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// HasHeader reports whether line looks like a column header.
func HasHeader(line string) bool {
	lower := strings.ToLower(line)
	for _, tok := range headerTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// ParseDelimited parses comma-delimited records. With a header, columns are
// located by name and t_ms is converted to seconds when no seconds column
// exists. Without one, each line is (seconds, channel, voltage) when its
// first field is numeric and (channel, seconds, voltage) otherwise.
func ParseDelimited(content string) ([]Row, Stats) {
	var lines []string
	for _, l := range splitLines(content) {
		if l != "" {
			lines = append(lines, l)
		}
	}
	st := Stats{Lines: len(lines)}
	if len(lines) == 0 {
		return nil, st
	}

	var rows []Row
	if HasHeader(lines[0]) {
		rows = parseWithHeader(lines, &st)
	} else {
		rows = parseHeaderless(lines, &st)
	}
	st.Rows = len(rows)
	return rows, st
}

func parseWithHeader(lines []string, st *Stats) []Row {
	cols := resolveColumns(lines[0])
	field := func(parts []string, i int) (string, bool) {
		if i < 0 || i >= len(parts) {
			return "", false
		}
		return parts[i], true
	}

	var rows []Row
	for _, line := range lines[1:] {
		parts := splitFields(line)
		ch, _ := field(parts, cols.channel)
		ch = strings.ToUpper(ch)

		var seconds float64
		var okTime bool
		switch {
		case cols.seconds >= 0:
			raw, _ := field(parts, cols.seconds)
			seconds, okTime = parseNumber(raw)
		case cols.millis >= 0:
			raw, _ := field(parts, cols.millis)
			var ms float64
			ms, okTime = parseNumber(raw)
			seconds = ms / 1000
		}
		rawVoltage, _ := field(parts, cols.voltage)
		voltage, okVoltage := parseNumber(rawVoltage)

		if ch == "" || !okTime || !okVoltage {
			st.Skipped++
			continue
		}
		rows = append(rows, Row{Channel: ch, Seconds: seconds, Voltage: voltage})
	}
	return rows
}

func parseHeaderless(lines []string, st *Stats) []Row {
	var rows []Row
	for _, line := range lines {
		parts := splitFields(line)
		if len(parts) < 3 {
			st.Skipped++
			continue
		}

		var ch, rawSeconds string
		if _, numeric := parseNumber(parts[0]); numeric {
			rawSeconds, ch = parts[0], parts[1]
		} else {
			ch, rawSeconds = parts[0], parts[1]
		}
		seconds, okTime := parseNumber(rawSeconds)
		voltage, okVoltage := parseNumber(parts[2])
		if ch == "" || !okTime || !okVoltage {
			st.Skipped++
			continue
		}
		rows = append(rows, Row{Channel: strings.ToUpper(ch), Seconds: seconds, Voltage: voltage})
	}
	return rows
}
