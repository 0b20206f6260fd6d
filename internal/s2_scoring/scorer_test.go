package s2_scoring

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundlens/backend/internal/contracts"
)

const largeCapGrowth = "Large Cap Growth"

// lcgClass: 1년 수익률만 다르고 나머지 지표는 동일한 5개 펀드 + 벤치마크
func lcgClass(benchOneYear float64) []contracts.Fund {
	funds := make([]contracts.Fund, 0, 6)
	for i, ret := range []float64{8, 9, 10, 11, 12} {
		funds = append(funds, contracts.Fund{
			Symbol:     string(rune('A' + i)),
			AssetClass: largeCapGrowth,
			Metrics: contracts.MetricVector{
				contracts.MetricOneYear:      ret,
				contracts.MetricExpenseRatio: 0.5,
				contracts.MetricSharpe3Y:     1.0,
			},
		})
	}
	funds = append(funds, contracts.Fund{
		Symbol:            "VFIAX",
		AssetClass:        largeCapGrowth,
		IsBenchmark:       true,
		BenchmarkForClass: largeCapGrowth,
		Metrics: contracts.MetricVector{
			contracts.MetricOneYear:      benchOneYear,
			contracts.MetricExpenseRatio: 0.5,
			contracts.MetricSharpe3Y:     1.0,
		},
	})
	return funds
}

func bySymbol(funds []contracts.Fund) map[string]contracts.Fund {
	out := make(map[string]contracts.Fund, len(funds))
	for _, f := range funds {
		out[f.Symbol] = f
	}
	return out
}

func TestScorer_BenchmarkBetweenPeerQuartiles(t *testing.T) {
	scored := bySymbol(NewScorer(nil).Score(lcgClass(10)))

	bench := scored["VFIAX"].Score
	require.NotNil(t, bench)
	assert.InDelta(t, 0.0, bench.Raw, 1e-12)
	assert.Equal(t, 50.0, bench.Final)
	assert.GreaterOrEqual(t, bench.Percentile, 40)
	assert.LessOrEqual(t, bench.Percentile, 60)

	// 25th percentile peer = 9%, 75th = 11%
	assert.Greater(t, bench.Final, scored["B"].Score.Final)
	assert.Less(t, bench.Final, scored["D"].Score.Final)

	// only oneYear varies; zero-SD metrics are skipped
	assert.Equal(t, 1, bench.MetricsUsed)
	assert.Equal(t, 13, bench.TotalPossibleMetrics)
	_, ok := bench.Breakdown[contracts.MetricExpenseRatio]
	assert.False(t, ok)
}

func TestScorer_BreakdownAndPercentiles(t *testing.T) {
	scored := bySymbol(NewScorer(nil).Score(lcgClass(10)))

	top := scored["E"].Score
	ms := top.Breakdown[contracts.MetricOneYear]
	assert.InDelta(t, 2/1.4142135623730951, ms.Z, 1e-9)
	assert.Equal(t, 0.05, ms.Weight)
	assert.InDelta(t, ms.Z*0.05, ms.Weighted, 1e-12)
	assert.Greater(t, ms.Percentile, 90.0)
	assert.Equal(t, 80, top.Percentile, "4 of 5 peers strictly below")
	assert.Equal(t, 0, scored["A"].Score.Percentile)
	assert.Equal(t, 50.7, top.Final)
}

func TestScorer_NegativeWeightInvertsPercentile(t *testing.T) {
	stats := CalculateMetricStatistics([]contracts.MetricVector{
		{contracts.MetricExpenseRatio: 0.2},
		{contracts.MetricExpenseRatio: 1.0},
	})

	cheap := ScoreFund(contracts.MetricVector{contracts.MetricExpenseRatio: 0.2}, stats)
	ms := cheap.Breakdown[contracts.MetricExpenseRatio]
	assert.Less(t, ms.Z, 0.0)
	assert.Greater(t, ms.Percentile, 50.0, "low cost maps to a high percentile")
	assert.Greater(t, cheap.Raw, 0.0)
}

func TestScorer_TiesSharePercentile(t *testing.T) {
	funds := []contracts.Fund{
		{Symbol: "A", AssetClass: "X", Metrics: contracts.MetricVector{contracts.MetricOneYear: 1}},
		{Symbol: "B", AssetClass: "X", Metrics: contracts.MetricVector{contracts.MetricOneYear: 5}},
		{Symbol: "C", AssetClass: "X", Metrics: contracts.MetricVector{contracts.MetricOneYear: 5}},
		{Symbol: "D", AssetClass: "X", Metrics: contracts.MetricVector{contracts.MetricOneYear: 9}},
	}
	scored := bySymbol(NewScorer(nil).Score(funds))
	assert.Equal(t, scored["B"].Score.Percentile, scored["C"].Score.Percentile)
	assert.Equal(t, 25, scored["B"].Score.Percentile)
	assert.Equal(t, 75, scored["D"].Score.Percentile)
}

func TestScorer_InsufficientPeers(t *testing.T) {
	funds := []contracts.Fund{
		{Symbol: "SOLO", AssetClass: "Bank Loan", Metrics: contracts.MetricVector{contracts.MetricOneYear: 30}},
		{Symbol: "BKLN", AssetClass: "Bank Loan", IsBenchmark: true, Metrics: contracts.MetricVector{contracts.MetricOneYear: 1}},
	}

	for _, f := range NewScorer(nil).Score(funds) {
		require.NotNil(t, f.Score)
		assert.Equal(t, 50.0, f.Score.Final)
		assert.Equal(t, 50, f.Score.Percentile)
		assert.Empty(t, f.Score.Breakdown)
		assert.Contains(t, f.Score.Note, InsufficientPeersNote)
	}
}

func TestScorer_SparseDataNotRenormalised(t *testing.T) {
	funds := []contracts.Fund{
		{Symbol: "A", AssetClass: "X", Metrics: contracts.MetricVector{contracts.MetricOneYear: 0, contracts.MetricFiveYear: 0}},
		{Symbol: "B", AssetClass: "X", Metrics: contracts.MetricVector{contracts.MetricOneYear: 10, contracts.MetricFiveYear: 10}},
		{Symbol: "C", AssetClass: "X", Metrics: contracts.MetricVector{contracts.MetricOneYear: 10}},
	}
	scored := bySymbol(NewScorer(nil).Score(funds))

	// C only gets the oneYear contribution
	c := scored["C"].Score
	assert.Equal(t, 1, c.MetricsUsed)
	assert.InDelta(t, c.Breakdown[contracts.MetricOneYear].Weighted, c.Raw, 1e-12)
	assert.Less(t, c.Raw, scored["B"].Score.Raw)
}

func TestScorer_DoesNotMutateInput(t *testing.T) {
	in := lcgClass(10)
	_ = NewScorer(nil).Score(in)
	for _, f := range in {
		assert.Nil(t, f.Score)
	}
}

func TestScorer_BenchmarkPerturbationInvariance(t *testing.T) {
	base := bySymbol(NewScorer(nil).Score(lcgClass(10)))
	moved := bySymbol(NewScorer(nil).Score(lcgClass(-250)))

	for _, sym := range []string{"A", "B", "C", "D", "E"} {
		assert.Equal(t, base[sym].Score.Raw, moved[sym].Score.Raw, sym)
		assert.Equal(t, base[sym].Score.Final, moved[sym].Score.Final, sym)
		assert.Equal(t, base[sym].Score.Percentile, moved[sym].Score.Percentile, sym)
	}
	assert.Equal(t, 0.0, moved["VFIAX"].Score.Final)
}

func TestFinalScore_ClampAndRound(t *testing.T) {
	assert.Equal(t, 100.0, FinalScore(12))
	assert.Equal(t, 0.0, FinalScore(-7))
	assert.Equal(t, 53.5, FinalScore(0.3456))
	assert.Equal(t, 50.0, FinalScore(0))
}

func TestScorer_FinalAlwaysInBounds(t *testing.T) {
	properties := gopter.NewProperties(nil)
	scorer := NewScorer(nil)

	properties.Property("final and percentile stay within 0..100", prop.ForAll(
		func(returns, risk, bench []float64) bool {
			funds := make([]contracts.Fund, 0, len(returns)+1)
			for i := range returns {
				funds = append(funds, contracts.Fund{
					Symbol:     string(rune('A' + i)),
					AssetClass: "X",
					Metrics: contracts.MetricVector{
						contracts.MetricThreeYear: returns[i],
						contracts.MetricStdDev5Y:  risk[i],
					},
				})
			}
			funds = append(funds, contracts.Fund{
				Symbol:      "BENCH",
				AssetClass:  "X",
				IsBenchmark: true,
				Metrics: contracts.MetricVector{
					contracts.MetricThreeYear: bench[0],
					contracts.MetricStdDev5Y:  bench[1],
				},
			})

			for _, f := range scorer.Score(funds) {
				if f.Score.Final < 0 || f.Score.Final > 100 {
					return false
				}
				if f.Score.Percentile < 0 || f.Score.Percentile > 100 {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(6, gen.Float64Range(-80, 80)),
		gen.SliceOfN(6, gen.Float64Range(0, 60)),
		gen.SliceOfN(2, gen.Float64Range(-1000, 1000)),
	))

	properties.TestingRun(t)
}
