package roles

import (
	"github.com/clarabennett2626/logprobe/internal/parser"
)

// Options control delimited-column classification.
type Options struct {
	// Strategy that produced the rows; selects the positional priors.
	Strategy parser.Strategy
	// Floor a winning score must exceed. Zero means DefaultFloor.
	Floor float64
	// TraceNudge adds a small message prior to every column, used when the
	// sample contains exception traces.
	TraceNudge bool
}

func (o Options) floor() float64 {
	if o.Floor <= 0 {
		return DefaultFloor
	}
	return o.Floor
}

// Assignment is the outcome for one role. Column is -1 when the role is
// unassigned or when the winner is a JSON key.
type Assignment struct {
	Role     Role     `json:"role" yaml:"role"`
	Assigned bool     `json:"assigned" yaml:"assigned"`
	Column   int      `json:"column" yaml:"column"`
	Key      string   `json:"key,omitempty" yaml:"key,omitempty"`
	Scores   Score    `json:"scores" yaml:"scores"`
	Evidence []Signal `json:"evidence,omitempty" yaml:"evidence,omitempty"`
}

// Result carries the per-column accumulators and one Assignment per role,
// in the order of All.
type Result struct {
	Columns     []*Column
	Assignments []Assignment

	floor float64
}

// Get returns the assignment for r.
func (res *Result) Get(r Role) Assignment {
	for _, a := range res.Assignments {
		if a.Role == r {
			return a
		}
	}
	return Assignment{Role: r, Column: -1}
}

// Coverage is the fraction of the five roles whose strictly highest
// column score exceeds the floor. The long-column message override does
// not count toward it.
func (res *Result) Coverage() float64 {
	n := 0
	for _, r := range All {
		if bestIndex(res.Columns, r, res.floor) >= 0 {
			n++
		}
	}
	return float64(n) / numRoles
}

// ClassifyColumns scores the columns of every row whose width equals cols.
// Rows of other widths are ignored.
func ClassifyColumns(rows [][]string, cols int, opts Options) *Result {
	columns := make([]*Column, max(cols, 0))
	for i := range columns {
		columns[i] = &Column{Index: i}
	}
	for _, row := range rows {
		if len(row) != cols {
			continue
		}
		for i, v := range row {
			columns[i].Observe(v)
		}
	}

	applyGenericPriors(columns)
	if opts.TraceNudge {
		applyTraceNudge(columns)
	}
	switch opts.Strategy {
	case parser.StrategyLogback:
		applyLogbackPriors(columns)
	case parser.StrategyWhitespaceTail:
		applyWhitespaceTailPriors(columns, cols)
	}

	floor := opts.floor()
	res := &Result{Columns: columns, floor: floor}
	for _, r := range All {
		idx := bestIndex(columns, r, floor)
		if r == Message {
			idx = bestMessageIndex(columns, floor)
		}
		res.Assignments = append(res.Assignments, assignment(columns, r, idx, false))
	}
	return res
}

// ClassifyKeys scores every key seen across objects, in first-seen order,
// adding the key-name priors.
func ClassifyKeys(objects []*parser.Object, floor float64) *Result {
	if floor <= 0 {
		floor = DefaultFloor
	}
	byKey := make(map[string]*Column)
	var columns []*Column
	for _, obj := range objects {
		for _, f := range obj.Fields() {
			c, ok := byKey[f.Key]
			if !ok {
				c = &Column{Index: len(columns), Key: f.Key}
				byKey[f.Key] = c
				columns = append(columns, c)
			}
			c.Observe(f.Value)
		}
	}
	for _, c := range columns {
		applyKeyPriors(c)
	}

	res := &Result{Columns: columns, floor: floor}
	for _, r := range All {
		res.Assignments = append(res.Assignments, assignment(columns, r, bestIndex(columns, r, floor), true))
	}
	return res
}

func assignment(columns []*Column, r Role, idx int, keyed bool) Assignment {
	if idx < 0 {
		return Assignment{Role: r, Column: -1}
	}
	c := columns[idx]
	a := Assignment{
		Role:     r,
		Assigned: true,
		Column:   c.Index,
		Scores:   c.Score,
		Evidence: c.Evidence(r).Top(MaxEvidence),
	}
	if keyed {
		a.Column = -1
		a.Key = c.Key
	}
	return a
}

// bestIndex returns the column with the strictly highest score for r, the
// earliest on ties, or -1 when that score does not exceed floor.
func bestIndex(columns []*Column, r Role, floor float64) int {
	idx := -1
	best := 0.0
	for i, c := range columns {
		if v := c.Score.Get(r); idx < 0 || v > best {
			idx, best = i, v
		}
	}
	if idx < 0 || best <= floor {
		return -1
	}
	return idx
}

// bestMessageIndex prefers the column with the longest average value when
// its message score reaches floor, and falls back to bestIndex.
func bestMessageIndex(columns []*Column, floor float64) int {
	longest := -1
	for i, c := range columns {
		if longest < 0 || c.AvgLen() > columns[longest].AvgLen() {
			longest = i
		}
	}
	if longest >= 0 && columns[longest].Score.Message >= floor {
		return longest
	}
	return bestIndex(columns, Message, floor)
}
