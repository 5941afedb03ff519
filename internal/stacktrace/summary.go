package stacktrace

import (
	"cmp"
	"slices"
)

const (
	maxTypes    = 10
	maxExamples = 3
	// MaxHeaderLen bounds example header text, including the "..." suffix.
	MaxHeaderLen = 160
)

// TypeCount is how many spans have a given root type.
type TypeCount struct {
	Type  string `json:"type" yaml:"type"`
	Count int    `json:"count" yaml:"count"`
}

// Summary aggregates detected spans for display.
type Summary struct {
	Total    int         `json:"total" yaml:"total"`
	ByType   []TypeCount `json:"by_type" yaml:"by_type"`
	Examples []Span      `json:"examples" yaml:"examples"`
}

// Summarize counts spans by root type, most frequent first with first-seen
// order on ties, and keeps the first few spans as examples with shortened
// headers.
func Summarize(spans []Span) Summary {
	sum := Summary{Total: len(spans), ByType: []TypeCount{}, Examples: []Span{}}

	index := make(map[string]int)
	for _, s := range spans {
		if i, ok := index[s.Type]; ok {
			sum.ByType[i].Count++
			continue
		}
		index[s.Type] = len(sum.ByType)
		sum.ByType = append(sum.ByType, TypeCount{Type: s.Type, Count: 1})
	}
	slices.SortStableFunc(sum.ByType, func(a, b TypeCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if len(sum.ByType) > maxTypes {
		sum.ByType = sum.ByType[:maxTypes]
	}

	for _, s := range spans[:min(len(spans), maxExamples)] {
		s.Header = Truncate(s.Header, MaxHeaderLen)
		sum.Examples = append(sum.Examples, s)
	}
	return sum
}

// Truncate shortens s to at most n characters, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:max(0, n-3)]) + "..."
}
