// Package stacktrace finds exception traces in a sample of log lines: a
// header naming the exception type, its stack frames, and any chained
// "Caused by" or "Suppressed" entries.
package stacktrace

import (
	"github.com/clarabennett2626/logprobe/internal/patterns"
)

// Span is one exception trace covering lines [Start, End] of the sample.
type Span struct {
	Start      int      `json:"start" yaml:"start"`
	End        int      `json:"end" yaml:"end"`
	Type       string   `json:"type" yaml:"type"`
	Header     string   `json:"header" yaml:"header"`
	Frames     int      `json:"frames" yaml:"frames"`
	Causes     []string `json:"causes" yaml:"causes"`
	Suppressed []string `json:"suppressed" yaml:"suppressed"`
}

// Lines is the number of sample lines the span covers.
func (s Span) Lines() int { return s.End - s.Start + 1 }

type lineKind int

const (
	kindOther lineKind = iota
	kindHeader
	kindFrame
	kindCause
	kindSuppressed
)

type state int

const (
	closed state = iota
	open
)

var (
	headerRule     = patterns.MustGet(patterns.ExceptionHeader)
	frameRule      = patterns.MustGet(patterns.StackFrame)
	causedByRule   = patterns.MustGet(patterns.CausedBy)
	suppressedRule = patterns.MustGet(patterns.Suppressed)
)

// classify returns the kind of line and, for headers and chained entries,
// the exception type it names. Frame lines are never headers.
func classify(line string) (lineKind, string) {
	if frameRule.Match(line) {
		return kindFrame, ""
	}
	if m := causedByRule.Submatch(line); m != nil {
		return kindCause, m[1]
	}
	if m := suppressedRule.Submatch(line); m != nil {
		return kindSuppressed, m[1]
	}
	if m := headerRule.Submatch(line); m != nil {
		return kindHeader, m[1]
	}
	return kindOther, ""
}

// Detect scans lines in order and returns the sealed spans. At most one
// span is open at a time. While open, frames and chained entries extend
// it; a new header seals it and opens the next one; any other line seals
// it at the previous line. Outside a span, a header or a standalone
// "Caused by" line opens one.
func Detect(lines []string) []Span {
	var (
		spans []Span
		cur   Span
		st    = closed
	)
	seal := func(end int) {
		cur.End = end
		spans = append(spans, cur)
		cur = Span{}
		st = closed
	}
	begin := func(i int, typ string) {
		cur = Span{Start: i, Type: typ, Header: lines[i], Causes: []string{}, Suppressed: []string{}}
		st = open
	}

	for i, line := range lines {
		kind, typ := classify(line)

		if st == open {
			switch kind {
			case kindFrame:
				cur.Frames++
				continue
			case kindCause:
				cur.Causes = append(cur.Causes, typ)
				continue
			case kindSuppressed:
				cur.Suppressed = append(cur.Suppressed, typ)
				continue
			}
			seal(i - 1)
		}

		switch kind {
		case kindHeader, kindCause:
			begin(i, typ)
		}
	}
	if st == open {
		seal(len(lines) - 1)
	}
	return spans
}
