package probe

import (
	"math"

	"github.com/clarabennett2626/logprobe/internal/parser"
	"github.com/clarabennett2626/logprobe/internal/roles"
	"github.com/clarabennett2626/logprobe/internal/stacktrace"
	"github.com/clarabennett2626/logprobe/internal/strategy"
)

// Status is the run-level outcome of a probe.
type Status string

const (
	StatusOK Status = "ok"
	// StatusInsufficient means the sample was below the minimum line count
	// and no inference was attempted.
	StatusInsufficient Status = "insufficient"
)

// Report is everything a probe run infers about one sample.
type Report struct {
	Source     string             `json:"source" yaml:"source"`
	Status     Status             `json:"status" yaml:"status"`
	Lines      int                `json:"lines" yaml:"lines"`
	MinLines   int                `json:"min_lines,omitempty" yaml:"min_lines,omitempty"`
	Format     parser.Format      `json:"format" yaml:"format"`
	JSONRatio  float64            `json:"json_ratio" yaml:"json_ratio"`
	Delimited  *Delimited         `json:"delimited,omitempty" yaml:"delimited,omitempty"`
	JSON       *JSONSummary       `json:"json,omitempty" yaml:"json,omitempty"`
	Roles      []roles.Assignment `json:"roles" yaml:"roles"`
	Exceptions *Exceptions        `json:"exceptions,omitempty" yaml:"exceptions,omitempty"`
}

// Role returns the assignment for r.
func (r *Report) Role(role roles.Role) roles.Assignment {
	for _, a := range r.Roles {
		if a.Role == role {
			return a
		}
	}
	return roles.Assignment{Role: role, Column: -1}
}

// Delimited describes the chosen tokenization.
type Delimited struct {
	Strategy parser.Strategy `json:"strategy" yaml:"strategy"`
	// Fallback is set when no strategy tokenized any line and the whole
	// line is treated as a single message column.
	Fallback     bool        `json:"fallback" yaml:"fallback"`
	Columns      int         `json:"columns" yaml:"columns"`
	Rows         int         `json:"rows" yaml:"rows"`
	Support      int         `json:"support" yaml:"support"`
	Coverage     float64     `json:"coverage" yaml:"coverage"`
	SupportRatio float64     `json:"support_ratio" yaml:"support_ratio"`
	Candidates   []Candidate `json:"candidates" yaml:"candidates"`
}

// Candidate is the scorecard of one evaluated strategy.
type Candidate struct {
	Strategy     parser.Strategy `json:"strategy" yaml:"strategy"`
	Rows         int             `json:"rows" yaml:"rows"`
	Columns      int             `json:"columns" yaml:"columns"`
	Coverage     float64         `json:"coverage" yaml:"coverage"`
	SupportRatio float64         `json:"support_ratio" yaml:"support_ratio"`
	// Variance is omitted when the strategy produced no rows.
	Variance     *float64 `json:"variance,omitempty" yaml:"variance,omitempty"`
	RoleCoverage float64  `json:"role_coverage" yaml:"role_coverage"`
	Tailness     float64  `json:"tailness" yaml:"tailness"`
	Score        float64  `json:"score" yaml:"score"`
}

func newCandidate(e *strategy.Evaluation) Candidate {
	c := Candidate{
		Strategy:     e.Strategy,
		Rows:         len(e.Rows),
		Columns:      e.Columns,
		Coverage:     e.Coverage,
		SupportRatio: e.SupportRatio,
		RoleCoverage: e.RoleCoverage,
		Tailness:     e.Tailness,
		Score:        e.Score,
	}
	if !math.IsInf(e.Variance, 0) && !math.IsNaN(e.Variance) {
		v := e.Variance
		c.Variance = &v
	}
	return c
}

// JSONSummary describes a JSON-lines sample.
type JSONSummary struct {
	// Parsed counts lines that yielded at least one pair.
	Parsed   int `json:"parsed" yaml:"parsed"`
	Unparsed int `json:"unparsed" yaml:"unparsed"`
	// TypicalKeys is the most common number of keys per parsed line.
	TypicalKeys int        `json:"typical_keys" yaml:"typical_keys"`
	Keys        []KeyCount `json:"keys" yaml:"keys"`
	// Fallback is set when no line parsed and the whole line is treated as
	// a single message column.
	Fallback bool `json:"fallback" yaml:"fallback"`
}

// KeyCount is how many parsed lines carry a key.
type KeyCount struct {
	Key   string `json:"key" yaml:"key"`
	Count int    `json:"count" yaml:"count"`
}

// Exceptions lists detected spans alongside their summary.
type Exceptions struct {
	Spans []stacktrace.Span `json:"spans" yaml:"spans"`
	stacktrace.Summary `yaml:",inline"`
}
