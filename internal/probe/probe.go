// Package probe runs the full inference over one sample: format detection,
// tokenization and role classification for the detected format, and
// exception span detection. A run is a pure function of the sample and
// the options.
package probe

import (
	"cmp"
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/clarabennett2626/logprobe/internal/parser"
	"github.com/clarabennett2626/logprobe/internal/roles"
	"github.com/clarabennett2626/logprobe/internal/source"
	"github.com/clarabennett2626/logprobe/internal/stacktrace"
	"github.com/clarabennett2626/logprobe/internal/strategy"
)

const (
	// DefaultMinLines is the smallest sample worth analysing.
	DefaultMinLines = 5
	maxKeyCounts    = 10
)

// Options configure a run.
type Options struct {
	MinLines      int
	JSONThreshold float64
	Strategy      strategy.Options
}

// DefaultOptions returns the stock thresholds and weights.
func DefaultOptions() Options {
	return Options{
		MinLines:      DefaultMinLines,
		JSONThreshold: parser.DefaultJSONThreshold,
		Strategy:      strategy.DefaultOptions(),
	}
}

func (o Options) floor() float64 {
	if o.Strategy.Floor <= 0 {
		return roles.DefaultFloor
	}
	return o.Strategy.Floor
}

// Run analyses sample. The only error is cancellation of ctx; an
// undersized sample yields a report with StatusInsufficient.
func Run(ctx context.Context, sample source.Sample, opts Options) (*Report, error) {
	log := zap.L().With(
		zap.String("run_id", uuid.NewString()),
		zap.String("source", sample.Name),
	)
	if sample.Oversized > 0 {
		log.Warn("oversized lines skipped", zap.Int("count", sample.Oversized))
	}
	lines := sample.Lines
	rep := &Report{Source: sample.Name, Lines: len(lines), Format: parser.FormatUnknown}

	if len(lines) < opts.MinLines {
		rep.Status = StatusInsufficient
		rep.MinLines = opts.MinLines
		rep.Roles = unassigned()
		log.Info("not enough lines to analyse",
			zap.Int("lines", len(lines)),
			zap.Int("min_lines", opts.MinLines))
		return rep, nil
	}
	rep.Status = StatusOK

	spans := stacktrace.Detect(lines)
	rep.Exceptions = &Exceptions{Spans: spans, Summary: stacktrace.Summarize(spans)}
	if rep.Exceptions.Spans == nil {
		rep.Exceptions.Spans = []stacktrace.Span{}
	}

	rep.JSONRatio, _ = parser.JSONRatio(lines)
	rep.Format = parser.DetectFormat(lines, opts.JSONThreshold)

	switch rep.Format {
	case parser.FormatJSON:
		rep.JSON, rep.Roles = analyzeJSON(lines, opts)
	default:
		var err error
		rep.Delimited, rep.Roles, err = analyzeDelimited(ctx, lines, len(spans) > 0, opts)
		if err != nil {
			return nil, err
		}
	}

	fields := []zap.Field{
		zap.Int("lines", len(lines)),
		zap.Stringer("format", rep.Format),
		zap.Int("exception_spans", len(spans)),
	}
	if rep.Delimited != nil {
		fields = append(fields,
			zap.Stringer("strategy", rep.Delimited.Strategy),
			zap.Int("columns", rep.Delimited.Columns))
	}
	log.Info("probe complete", fields...)
	return rep, nil
}

func analyzeDelimited(ctx context.Context, lines []string, traces bool, opts Options) (*Delimited, []roles.Assignment, error) {
	evals, err := strategy.EvaluateAll(ctx, lines, opts.Strategy)
	if err != nil {
		return nil, nil, eris.Wrap(err, "probe: delimited analysis")
	}

	d := &Delimited{}
	for _, e := range evals {
		d.Candidates = append(d.Candidates, newCandidate(e))
	}

	best, ok := strategy.Select(evals)
	if !ok {
		d.Strategy = parser.StrategyWhitespace
		d.Fallback = true
		d.Columns = 1
		return d, wholeLine(lines, opts.floor()), nil
	}

	d.Strategy = best.Strategy
	d.Columns = best.Columns
	d.Rows = len(best.Rows)
	d.Support = best.Support
	d.Coverage = best.Coverage
	d.SupportRatio = best.SupportRatio

	res := roles.ClassifyColumns(best.Rows, best.Columns, roles.Options{
		Strategy:   best.Strategy,
		Floor:      opts.floor(),
		TraceNudge: traces,
	})
	return d, res.Assignments, nil
}

func analyzeJSON(lines []string, opts Options) (*JSONSummary, []roles.Assignment) {
	sum := &JSONSummary{Keys: []KeyCount{}}
	var objects []*parser.Object
	widths := make(map[int]int)
	presence := make(map[string]int)
	var order []string

	for _, l := range lines {
		obj := parser.ScanObject(l)
		if obj.Len() == 0 {
			sum.Unparsed++
			continue
		}
		objects = append(objects, obj)
		widths[obj.Len()]++
		for _, k := range obj.Keys() {
			if presence[k] == 0 {
				order = append(order, k)
			}
			presence[k]++
		}
	}
	sum.Parsed = len(objects)

	if len(objects) == 0 {
		sum.Fallback = true
		sum.TypicalKeys = 1
		return sum, wholeLine(lines, opts.floor())
	}

	sum.TypicalKeys = strategy.Mode(widths)
	for _, k := range order {
		sum.Keys = append(sum.Keys, KeyCount{Key: k, Count: presence[k]})
	}
	slices.SortStableFunc(sum.Keys, func(a, b KeyCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if len(sum.Keys) > maxKeyCounts {
		sum.Keys = sum.Keys[:maxKeyCounts]
	}

	return sum, roles.ClassifyKeys(objects, opts.floor()).Assignments
}

// wholeLine classifies every line as a single column, which always leaves
// the message role on column 0.
func wholeLine(lines []string, floor float64) []roles.Assignment {
	rows := make([][]string, len(lines))
	for i, l := range lines {
		rows[i] = []string{l}
	}
	return roles.ClassifyColumns(rows, 1, roles.Options{Strategy: parser.StrategyWhitespace, Floor: floor}).Assignments
}

func unassigned() []roles.Assignment {
	out := make([]roles.Assignment, len(roles.All))
	for i, r := range roles.All {
		out[i] = roles.Assignment{Role: r, Column: -1}
	}
	return out
}
