// Package source reads bounded line samples from files or stdin and watches
// files for changes so they can be sampled again.
package source

import "github.com/rotisserie/eris"

// ErrUnreadable marks an input that could not be opened, decoded or read.
// It is the only sampling failure callers see; nothing is substituted for
// a sample that could not be read.
var ErrUnreadable = eris.New("source: input unreadable")

// Sample is the bounded, filtered set of lines one probe run analyses. It
// is not modified after the sampler returns it.
type Sample struct {
	// Name identifies the input (a path or "stdin").
	Name string
	// Lines are the kept lines in input order.
	Lines []string
	// Read counts every line consumed from the input, kept or not.
	Read int
	// Capped is set when sampling stopped at the line limit.
	Capped bool
	// Oversized counts lines dropped for exceeding the per-line byte limit.
	Oversized int
}

// Len returns the number of sampled lines.
func (s Sample) Len() int { return len(s.Lines) }
