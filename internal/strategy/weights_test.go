package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clarabennett2626/logprobe/internal/parser"
)

// The constants are tuned fixtures. These tests pin the formula, not the
// choice of numbers.
func TestScoreFormula(t *testing.T) {
	w := DefaultWeights()
	tests := []struct {
		name string
		e    Evaluation
		want float64
	}{
		{
			name: "single column is halved",
			e:    Evaluation{Strategy: parser.StrategyComma, Columns: 1, Coverage: 1, SupportRatio: 1, RoleCoverage: 0.2, Tailness: 1},
			want: (0.28 + 0.23 + 0.22*0.2 + 0.14 + 0.07) * 0.5,
		},
		{
			name: "info gain and stability",
			e:    Evaluation{Strategy: parser.StrategyTab, Columns: 3, Coverage: 0.5, SupportRatio: 0.8, RoleCoverage: 0.6, Tailness: 0.4, Variance: 4.5},
			want: 0.28*0.5 + 0.23*0.8 + 0.22*0.6 + 0.14*0.4 + 0.07*(1-0.5) + 0.05*math.Log1p(2),
		},
		{
			name: "wide and shallow is penalised",
			e:    Evaluation{Strategy: parser.StrategyWhitespace, Columns: 8, Coverage: 1, SupportRatio: 1, Tailness: 0.1},
			want: (0.28 + 0.23 + 0.14*0.1 + 0.07 + 0.05*math.Log1p(7)) * 0.75,
		},
		{
			name: "wide with a heavy tail is not penalised",
			e:    Evaluation{Strategy: parser.StrategyWhitespace, Columns: 8, Coverage: 1, SupportRatio: 1, Tailness: 0.5},
			want: 0.28 + 0.23 + 0.14*0.5 + 0.07 + 0.05*math.Log1p(7),
		},
		{
			name: "logback bonus",
			e:    Evaluation{Strategy: parser.StrategyLogback, Columns: 5, Coverage: 0.5, SupportRatio: 0.9},
			want: 0.28*0.5 + 0.23*0.9 + 0.07 + 0.05*math.Log1p(4) + 0.05,
		},
		{
			name: "no logback bonus below support",
			e:    Evaluation{Strategy: parser.StrategyLogback, Columns: 5, Coverage: 1, SupportRatio: 0.89},
			want: 0.28 + 0.23*0.89 + 0.07 + 0.05*math.Log1p(4),
		},
		{
			name: "no rows",
			e:    Evaluation{Strategy: parser.StrategyPipe, Columns: 1, Variance: math.Inf(1)},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, w.score(&tt.e), 1e-9)
		})
	}
}

func TestCustomWeights(t *testing.T) {
	w := DefaultWeights()
	w.SingleColumnFactor = 1
	e := Evaluation{Strategy: parser.StrategyComma, Columns: 1, Coverage: 1}
	assert.InDelta(t, 0.28+0.07, w.score(&e), 1e-9)
}
