// Package parser provides log format detection and the line-level scanners
// (shallow JSON objects, delimiter strategies) used by the probe.
package parser

import (
	"strings"
)

// Format represents a log format type.
type Format int

const (
	FormatUnknown Format = iota
	FormatJSON
	FormatDelimited
)

// DefaultJSONThreshold is the share of JSON-looking lines needed for a JSON verdict.
const DefaultJSONThreshold = 0.80

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatDelimited:
		return "delimited"
	default:
		return "unknown"
	}
}

// MarshalText lets reports encode the format by name.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// JSONRatio returns the fraction of non-blank lines that look like JSON
// objects, and the number of non-blank lines considered.
func JSONRatio(lines []string) (float64, int) {
	jsonish, total := 0, 0
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		total++
		if looksLikeJSON(t) {
			jsonish++
		}
	}
	if total == 0 {
		return 0, 0
	}
	return float64(jsonish) / float64(total), total
}

// DetectFormat decides between JSON lines and delimited text. It never
// parses a line; it only checks the cheap syntactic shape of each one.
func DetectFormat(lines []string, threshold float64) Format {
	ratio, total := JSONRatio(lines)
	if total == 0 {
		return FormatDelimited
	}
	if ratio >= threshold {
		return FormatJSON
	}
	return FormatDelimited
}

// looksLikeJSON expects an already trimmed line.
func looksLikeJSON(t string) bool {
	return strings.HasPrefix(t, "{") && strings.Contains(t, ":") && strings.Contains(t, `"`)
}
