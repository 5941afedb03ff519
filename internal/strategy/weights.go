package strategy

import (
	"math"

	"github.com/clarabennett2626/logprobe/internal/parser"
)

// Weights are the empirically tuned constants of the composite score.
type Weights struct {
	Coverage     float64 `mapstructure:"coverage"`
	Support      float64 `mapstructure:"support"`
	RoleCoverage float64 `mapstructure:"role_coverage"`
	Tailness     float64 `mapstructure:"tailness"`
	Stability    float64 `mapstructure:"stability"`
	InfoGain     float64 `mapstructure:"info_gain"`

	// SingleColumnFactor scales one-column results.
	SingleColumnFactor float64 `mapstructure:"single_column_factor"`

	// Results at least WideColumns wide with tailness under WideTailness
	// are scaled by WideFactor.
	WideColumns  int     `mapstructure:"wide_columns"`
	WideTailness float64 `mapstructure:"wide_tailness"`
	WideFactor   float64 `mapstructure:"wide_factor"`

	// FixedBonus is added to a five-column logback result with enough
	// coverage and support.
	FixedBonus       float64 `mapstructure:"fixed_bonus"`
	FixedMinCoverage float64 `mapstructure:"fixed_min_coverage"`
	FixedMinSupport  float64 `mapstructure:"fixed_min_support"`
}

// DefaultWeights returns the stock constants.
func DefaultWeights() Weights {
	return Weights{
		Coverage:           0.28,
		Support:            0.23,
		RoleCoverage:       0.22,
		Tailness:           0.14,
		Stability:          0.07,
		InfoGain:           0.05,
		SingleColumnFactor: 0.5,
		WideColumns:        8,
		WideTailness:       0.35,
		WideFactor:         0.75,
		FixedBonus:         0.05,
		FixedMinCoverage:   0.5,
		FixedMinSupport:    0.9,
	}
}

func (w Weights) score(e *Evaluation) float64 {
	cols := e.Columns
	infoGain := 0.0
	if cols > 1 {
		infoGain = math.Log1p(float64(cols - 1))
	}
	stability := 1 - math.Min(1, e.Variance/float64(max(1, cols*cols)))

	s := w.Coverage*e.Coverage +
		w.Support*e.SupportRatio +
		w.RoleCoverage*e.RoleCoverage +
		w.Tailness*e.Tailness +
		w.Stability*stability +
		w.InfoGain*infoGain

	if cols == 1 {
		s *= w.SingleColumnFactor
	}
	if cols >= w.WideColumns && e.Tailness < w.WideTailness {
		s *= w.WideFactor
	}
	if e.Strategy == parser.StrategyLogback && cols == 5 &&
		e.Coverage >= w.FixedMinCoverage && e.SupportRatio >= w.FixedMinSupport {
		s += w.FixedBonus
	}
	return s
}
