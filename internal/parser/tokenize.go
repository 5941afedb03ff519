package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clarabennett2626/logprobe/internal/patterns"
)

// Strategy is one way of splitting a delimited line into fields.
type Strategy int

const (
	// StrategyLogback matches the fixed five-field layout
	// "timestamp LEVEL [component] (context) message".
	StrategyLogback Strategy = iota
	// StrategyWhitespaceTail keeps a few leading whitespace tokens and
	// folds the rest of the line into one message field.
	StrategyWhitespaceTail
	StrategyWhitespace
	StrategyTab
	StrategyComma
	StrategyPipe
	StrategySemicolon
)

// Strategies lists every candidate strategy in evaluation order.
var Strategies = []Strategy{
	StrategyLogback,
	StrategyWhitespaceTail,
	StrategyWhitespace,
	StrategyTab,
	StrategyComma,
	StrategyPipe,
	StrategySemicolon,
}

func (s Strategy) String() string {
	switch s {
	case StrategyLogback:
		return "logback"
	case StrategyWhitespaceTail:
		return "whitespace-tail"
	case StrategyWhitespace:
		return "whitespace"
	case StrategyTab:
		return "tab"
	case StrategyComma:
		return "comma"
	case StrategyPipe:
		return "pipe"
	case StrategySemicolon:
		return "semicolon"
	default:
		return "unknown"
	}
}

// MarshalText lets reports encode the strategy by name.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Tokenize splits line under strategy s. A nil result means the strategy
// cannot tokenize the line.
func Tokenize(line string, s Strategy) []string {
	switch s {
	case StrategyLogback:
		return tokenizeLogback(line)
	case StrategyWhitespaceTail:
		return TokenizeWhitespaceTail(line, EstimateLeadingTokens(line))
	case StrategyWhitespace:
		return tokenizeGrouped(line, unicode.IsSpace, true)
	case StrategyTab:
		return tokenizeGrouped(line, isRune('\t'), false)
	case StrategyComma:
		return tokenizeGrouped(line, isRune(','), false)
	case StrategyPipe:
		return tokenizeGrouped(line, isRune('|'), false)
	case StrategySemicolon:
		return tokenizeGrouped(line, isRune(';'), false)
	}
	return nil
}

func isRune(want rune) func(rune) bool {
	return func(r rune) bool { return r == want }
}

var logbackLine = patterns.MustGet(patterns.LogbackLine)

func tokenizeLogback(line string) []string {
	m := logbackLine.Submatch(line)
	if m == nil {
		return nil
	}
	return []string{m[1], m[2], m[3], m[4], strings.TrimSpace(m[5])}
}

// tokenizeGrouped splits on delimiter runes that sit outside double quotes,
// single quotes, square brackets and balanced parentheses. collapse merges
// runs of delimiters (whitespace mode); otherwise empty fields are dropped.
func tokenizeGrouped(line string, isDelim func(rune) bool, collapse bool) []string {
	var out []string
	var cur strings.Builder
	inDq, inSq, inBr := false, false, false
	parDepth := 0

	flush := func() {
		out = append(out, strings.TrimSpace(cur.String()))
		cur.Reset()
	}

	// Runes are decoded for classification only; the original bytes are
	// copied so invalid UTF-8 survives unchanged.
	for i := 0; i < len(line); {
		ch, size := utf8.DecodeRuneInString(line[i:])
		raw := line[i : i+size]
		i += size
		switch {
		case ch == '"' && !inSq:
			inDq = !inDq
			cur.WriteString(raw)
			continue
		case ch == '\'' && !inDq:
			inSq = !inSq
			cur.WriteString(raw)
			continue
		case ch == '[' && !inDq && !inSq:
			inBr = true
			cur.WriteString(raw)
			continue
		case ch == ']' && inBr && !inDq && !inSq:
			inBr = false
			cur.WriteString(raw)
			continue
		case ch == '(' && !inDq && !inSq:
			parDepth++
			cur.WriteString(raw)
			continue
		case ch == ')' && parDepth > 0 && !inDq && !inSq:
			parDepth--
			cur.WriteString(raw)
			continue
		}

		grouped := inDq || inSq || inBr || parDepth > 0
		if grouped || ch == utf8.RuneError && size == 1 || !isDelim(ch) {
			cur.WriteString(raw)
			continue
		}
		if !collapse {
			flush()
			continue
		}
		if cur.Len() > 0 {
			flush()
		}
		for i < len(line) {
			next, n := utf8.DecodeRuneInString(line[i:])
			if next == utf8.RuneError && n == 1 || !isDelim(next) {
				break
			}
			i += n
		}
	}
	if cur.Len() > 0 {
		flush()
	}

	kept := out[:0]
	for _, tok := range out {
		tok = stripWrapping(tok)
		if tok == "" && !collapse {
			continue
		}
		kept = append(kept, tok)
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

// stripWrapping removes quotes or brackets only when they wrap the whole token.
func stripWrapping(s string) string {
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '[' && last == ']') {
		return s[1 : len(s)-1]
	}
	return s
}

var (
	leadingTimestamp = patterns.MustGet(patterns.LeadingTimestamp)
	leadingLevel     = patterns.MustGet(patterns.LeadingLevel)
)

// EstimateLeadingTokens guesses how many whitespace tokens precede the free
// text message, from surface cues: a leading timestamp, a level word among
// the first tokens, a bracketed component and a parenthesised context. The
// result is kept within 2..6.
func EstimateLeadingTokens(line string) int {
	t := strings.TrimSpace(line)
	if t == "" {
		return 2
	}
	count := 0
	if leadingTimestamp.Match(t) {
		count++
	}
	if leadingLevel.Match(t) {
		count++
	}
	if strings.Contains(t, "[") && strings.Contains(t, "]") {
		count++
	}
	if strings.Contains(t, "(") && strings.Contains(t, ")") {
		count++
	}
	return min(max(count, 2), 6)
}

// TokenizeWhitespaceTail returns the first leading whitespace tokens
// followed by the remainder of the line as one field. Lines without enough
// tokens for the structural prefix and a non-empty tail are rejected.
func TokenizeWhitespaceTail(line string, leading int) []string {
	out := make([]string, 0, leading+1)
	rest := strings.TrimLeftFunc(line, unicode.IsSpace)
	for k := 0; k < leading; k++ {
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			return nil
		}
		out = append(out, rest[:end])
		rest = strings.TrimLeftFunc(rest[end:], unicode.IsSpace)
	}
	tail := strings.TrimSpace(rest)
	if tail == "" {
		return nil
	}
	return append(out, tail)
}
