package roles

import (
	"cmp"
	"slices"
)

// MaxEvidence caps the signals reported per assignment.
const MaxEvidence = 8

// Signal is one named reason a role score grew, with its hit count.
type Signal struct {
	Name    string `json:"name" yaml:"name"`
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Count   int    `json:"count" yaml:"count"`
}

// Evidence counts signal hits for one column and one role, keeping the
// order in which signals were first seen.
type Evidence struct {
	signals []Signal
	index   map[string]int
}

// Hit records one occurrence of the named signal.
func (e *Evidence) Hit(name, pattern string) {
	if e.index == nil {
		e.index = make(map[string]int)
	}
	if i, ok := e.index[name]; ok {
		e.signals[i].Count++
		return
	}
	e.index[name] = len(e.signals)
	e.signals = append(e.signals, Signal{Name: name, Pattern: pattern, Count: 1})
}

// Len returns the number of distinct signals.
func (e *Evidence) Len() int { return len(e.signals) }

// Top returns up to k signals ordered by hit count, first-seen order on ties.
func (e *Evidence) Top(k int) []Signal {
	out := slices.Clone(e.signals)
	slices.SortStableFunc(out, func(a, b Signal) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if k >= 0 && len(out) > k {
		out = out[:k]
	}
	return out
}
