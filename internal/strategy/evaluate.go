// Package strategy tries every tokenization strategy over a sample and
// ranks them by a weighted score built from how many lines they split, how
// consistent the resulting widths are, and how well the columns map onto
// roles.
package strategy

import (
	"context"
	"math"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clarabennett2626/logprobe/internal/parser"
	"github.com/clarabennett2626/logprobe/internal/roles"
)

// Options tune evaluation.
type Options struct {
	Weights Weights
	// Floor is the role confidence floor used for role coverage.
	Floor float64
	// Workers bounds concurrent strategy evaluations. Zero or less means one
	// worker per strategy.
	Workers int
}

// DefaultOptions returns the stock weights and floor.
func DefaultOptions() Options {
	return Options{Weights: DefaultWeights(), Floor: roles.DefaultFloor}
}

// Evaluation is the outcome of one strategy over the whole sample. It is
// not modified after Evaluate returns.
type Evaluation struct {
	Strategy parser.Strategy
	// Rows holds one entry per line the strategy could tokenize.
	Rows      [][]string
	Lines     int
	Histogram map[int]int
	// Columns is the modal row width.
	Columns int
	// Support counts rows whose width equals Columns.
	Support      int
	Variance     float64
	Coverage     float64
	SupportRatio float64
	RoleCoverage float64
	Tailness     float64
	Score        float64
}

// TypicalRows returns the rows whose width equals the modal width.
func (e *Evaluation) TypicalRows() [][]string {
	out := make([][]string, 0, e.Support)
	for _, r := range e.Rows {
		if len(r) == e.Columns {
			out = append(out, r)
		}
	}
	return out
}

// Evaluate tokenizes every line with s and scores the result.
func Evaluate(lines []string, s parser.Strategy, opts Options) *Evaluation {
	e := &Evaluation{Strategy: s, Lines: len(lines), Histogram: make(map[int]int)}
	for _, l := range lines {
		row := parser.Tokenize(l, s)
		if len(row) == 0 {
			continue
		}
		e.Rows = append(e.Rows, row)
		e.Histogram[len(row)]++
	}

	e.Columns = Mode(e.Histogram)
	e.Support = e.Histogram[e.Columns]
	e.Variance = variance(e.Rows, e.Columns)
	if e.Lines > 0 {
		e.Coverage = float64(len(e.Rows)) / float64(e.Lines)
	}
	if len(e.Rows) > 0 {
		e.SupportRatio = float64(e.Support) / float64(len(e.Rows))
		e.assessQuality(opts.Floor)
	}
	e.Score = opts.Weights.score(e)
	return e
}

// assessQuality fills RoleCoverage and Tailness from the rows at the
// modal width.
func (e *Evaluation) assessQuality(floor float64) {
	typical := e.TypicalRows()
	res := roles.ClassifyColumns(typical, e.Columns, roles.Options{Strategy: e.Strategy, Floor: floor})
	e.RoleCoverage = res.Coverage()

	var tail, total int
	for _, row := range typical {
		for _, v := range row {
			total += utf8.RuneCountInString(v)
		}
		tail += utf8.RuneCountInString(row[len(row)-1])
	}
	if total > 0 {
		e.Tailness = float64(tail) / float64(total)
	}
}

// Mode returns the most frequent width, preferring the larger width on
// ties, or 1 for an empty histogram.
func Mode(hist map[int]int) int {
	best, bestCount := -1, -1
	for width, n := range hist {
		if n > bestCount || (n == bestCount && width > best) {
			best, bestCount = width, n
		}
	}
	if best < 0 {
		return 1
	}
	return best
}

// variance is the mean squared distance of row widths from typical. An
// empty row set has infinite variance.
func variance(rows [][]string, typical int) float64 {
	if len(rows) == 0 {
		return math.Inf(1)
	}
	var sum float64
	for _, r := range rows {
		d := float64(len(r) - typical)
		sum += d * d
	}
	return sum / float64(len(rows))
}

// Better reports whether e outranks o: higher score, then more columns,
// then lower variance.
func (e *Evaluation) Better(o *Evaluation) bool {
	if e.Score != o.Score {
		return e.Score > o.Score
	}
	if e.Columns != o.Columns {
		return e.Columns > o.Columns
	}
	return e.Variance < o.Variance
}

// EvaluateAll evaluates every strategy in parser.Strategies concurrently.
// Results come back in strategy order regardless of completion order.
func EvaluateAll(ctx context.Context, lines []string, opts Options) ([]*Evaluation, error) {
	out := make([]*Evaluation, len(parser.Strategies))

	g, gctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i, s := range parser.Strategies {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e := Evaluate(lines, s, opts)
			zap.L().Debug("strategy evaluated",
				zap.Stringer("strategy", s),
				zap.Int("rows", len(e.Rows)),
				zap.Int("columns", e.Columns),
				zap.Float64("role_coverage", e.RoleCoverage),
				zap.Float64("tailness", e.Tailness),
				zap.Float64("score", e.Score),
			)
			out[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "strategy: evaluate")
	}
	return out, nil
}

// Select returns the best evaluation, keeping the earlier one on a full
// tie. ok is false when the winner produced no rows, in which case the
// whole line should be treated as one message column.
func Select(evals []*Evaluation) (best *Evaluation, ok bool) {
	for _, e := range evals {
		if e == nil {
			continue
		}
		if best == nil || e.Better(best) {
			best = e
		}
	}
	return best, best != nil && len(best.Rows) > 0
}
