package roles

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clarabennett2626/logprobe/internal/patterns"
)

// Column accumulates role scores and evidence for one column index or one
// JSON key.
type Column struct {
	Index int
	Key   string
	Score Score

	evidence [numRoles]Evidence
	values   int
	runes    int
}

// Evidence returns the evidence recorded for r.
func (c *Column) Evidence(r Role) *Evidence {
	return &c.evidence[r]
}

// AvgLen is the mean length in characters of the values observed.
func (c *Column) AvgLen() float64 {
	if c.values == 0 {
		return 0
	}
	return float64(c.runes) / float64(c.values)
}

// Prior adds w to role r and records it as the named signal.
func (c *Column) Prior(r Role, w float64, signal string) {
	c.Score.add(r, w)
	c.evidence[r].Hit(signal, "")
}

type valueSignal struct {
	role   Role
	rule   *patterns.Rule
	weight float64
}

var valueSignals = []valueSignal{
	{Date, patterns.MustGet(patterns.ISOTimestamp), 2.0},
	{Date, patterns.MustGet(patterns.ApacheCLF), 2.0},
	{Date, patterns.MustGet(patterns.SyslogTS), 1.0},
	{Date, patterns.MustGet(patterns.ISODateOnly), 0.5},
	{Date, patterns.MustGet(patterns.DMYSlash), 0.5},
	{Date, patterns.MustGet(patterns.Log4jTS), 2.0},

	{Status, patterns.MustGet(patterns.LogLevel), 2.0},
	{Status, patterns.MustGet(patterns.HTTPStatus), 1.5},
	{Status, patterns.MustGet(patterns.GenericStatus), 0.5},

	{Location, patterns.MustGet(patterns.IPv4), 1.5},
	{Location, patterns.MustGet(patterns.IPv6), 1.5},
	{Location, patterns.MustGet(patterns.URL), 1.5},
	{Location, patterns.MustGet(patterns.UnixPath), 1.0},
	{Location, patterns.MustGet(patterns.WindowsPath), 1.0},
	{Location, patterns.MustGet(patterns.QualifiedName), 0.7},

	{Thread, patterns.MustGet(patterns.ThreadToken), 1.8},
	{Thread, patterns.MustGet(patterns.CamelThread), 1.2},
	{Thread, patterns.MustGet(patterns.ThreadName), 1.0},
	{Thread, patterns.MustGet(patterns.ExecutorThread), 0.8},
	{Thread, patterns.MustGet(patterns.ParenContext), 0.6},
	{Thread, patterns.MustGet(patterns.GenericURI), 0.4},
}

var (
	epoch13 = patterns.MustGet(patterns.Epoch13MS)
	epoch10 = patterns.MustGet(patterns.Epoch10S)
)

// Heuristic message signals that are not catalogue rules.
const (
	SignalWhitespaceRuns = "SPACES>=3"
	SignalLongValue      = "LEN>40"
	SignalStackLine      = "STACKTRACE_LINE"
)

// Observe trims v and, unless it is empty, adds the weight of every signal
// it matches.
func (c *Column) Observe(v string) {
	t := strings.TrimSpace(v)
	c.values++
	c.runes += utf8.RuneCountInString(v)
	if t == "" {
		return
	}

	for _, s := range valueSignals {
		if s.rule.Match(t) {
			c.hitRule(s.role, s.rule, s.weight)
		}
	}
	switch {
	case epoch13.Match(t):
		c.hitRule(Date, epoch13, 1.0)
	case epoch10.Match(t):
		c.hitRule(Date, epoch10, 1.0)
	}

	if whitespaceRuns(t) >= 3 {
		c.Score.add(Message, 1.0)
		c.evidence[Message].Hit(SignalWhitespaceRuns, `\s+ runs >= 3`)
	}
	if utf8.RuneCountInString(t) > 40 {
		c.Score.add(Message, 0.7)
		c.evidence[Message].Hit(SignalLongValue, "length > 40")
	}
	if looksLikeStackLine(t) {
		c.Score.add(Message, 0.5)
		c.evidence[Message].Hit(SignalStackLine, `^at |Exception:|Caused by:`)
	}
}

func (c *Column) hitRule(r Role, rule *patterns.Rule, w float64) {
	c.Score.add(r, w)
	c.evidence[r].Hit(string(rule.Name), rule.Expr)
}

func whitespaceRuns(s string) int {
	runs := 0
	in := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !in {
				runs++
			}
			in = true
			continue
		}
		in = false
	}
	return runs
}

func looksLikeStackLine(s string) bool {
	return strings.HasPrefix(s, "at ") || strings.Contains(s, "Exception:") || strings.Contains(s, "Caused by:")
}
