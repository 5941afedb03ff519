package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const logbackSample = "2025-10-22 00:03:35,241 INFO [com.foo.Bar] (main) started"

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		strategy Strategy
		want     []string
	}{
		{"logback", logbackSample, StrategyLogback,
			[]string{"2025-10-22 00:03:35,241", "INFO", "com.foo.Bar", "main", "started"}},
		{"logback rejects other shapes", "2024-01-15T10:30:00Z INFO hi", StrategyLogback, nil},
		{"whitespace collapses runs", "a   b\t\tc", StrategyWhitespace, []string{"a", "b", "c"}},
		{"whitespace keeps groups", `a "b c" [d e] (f (g h)) 'i j'`, StrategyWhitespace,
			[]string{"a", "b c", "d e", "(f (g h))", "i j"}},
		{"whitespace keeps empty quoted token", `a "" b`, StrategyWhitespace, []string{"a", "", "b"}},
		{"comma drops empty fields", "a,,b,", StrategyComma, []string{"a", "b"}},
		{"comma respects quotes", `1,"x,y",3`, StrategyComma, []string{"1", "x,y", "3"}},
		{"comma respects parentheses", "f(a,b),c", StrategyComma, []string{"f(a,b)", "c"}},
		{"tab", "a\tb c\td", StrategyTab, []string{"a", "b c", "d"}},
		{"pipe", "a | b | c", StrategyPipe, []string{"a", "b", "c"}},
		{"semicolon", "a;b", StrategySemicolon, []string{"a", "b"}},
		{"invalid utf-8 bytes kept", "ok \xff\xfe|caf\xe9 x", StrategyWhitespace,
			[]string{"ok", "\xff\xfe|caf\xe9", "x"}},
		{"invalid utf-8 inside pipe field", "a|\xc3|b", StrategyPipe, []string{"a", "\xc3", "b"}},
		{"multibyte text kept", "日本 | 語", StrategyPipe, []string{"日本", "語"}},
		{"only delimiters", ",,,", StrategyComma, nil},
		{"blank", "   ", StrategyWhitespace, nil},
		{"partial wrap is kept", `"a"b`, StrategyWhitespace, []string{`"a"b`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.line, tt.strategy))
		})
	}
}

func TestEstimateLeadingTokens(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{logbackSample, 4},
		{"2024-01-15T10:30:00Z INFO Server started", 2},
		{"2024-01-15T10:30:00Z Server started", 2},
		{"some words [with brackets] here", 2},
		{"x INFO [c] (t) msg", 3},
		{"", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimateLeadingTokens(tt.line), tt.line)
	}
}

func TestTokenizeWhitespaceTail(t *testing.T) {
	assert.Equal(t,
		[]string{"2025-10-22", "00:03:35,241", "INFO", "[com.foo.Bar]", "(main) started"},
		Tokenize(logbackSample, StrategyWhitespaceTail))

	assert.Equal(t, []string{"a", "b", "c d e"}, TokenizeWhitespaceTail("  a  b   c d e  ", 2))

	// Not enough tokens for the prefix plus a tail: rejected, never padded.
	assert.Nil(t, TokenizeWhitespaceTail("a b", 2))
	assert.Nil(t, TokenizeWhitespaceTail("single", 2))
	assert.Nil(t, TokenizeWhitespaceTail("", 2))
}

func TestStrategyString(t *testing.T) {
	names := map[string]bool{}
	for _, s := range Strategies {
		names[s.String()] = true
	}
	assert.Len(t, names, len(Strategies))
	assert.Equal(t, "unknown", Strategy(99).String())
}
