package s3_tagging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundlens/backend/internal/contracts"
)

func TestReviewReasons(t *testing.T) {
	f := contracts.Fund{
		Symbol:      "LAGGARD",
		AssetClass:  "Mid Cap Growth",
		Recommended: true,
		Metrics:     contracts.MetricVector{contracts.MetricDownCapture3Y: 115},
		Score: &contracts.ScoreDetail{
			Final:      35,
			Percentile: 10,
			Breakdown: map[contracts.Metric]contracts.MetricScore{
				contracts.MetricSharpe3Y:     {Percentile: 12},
				contracts.MetricExpenseRatio: {Percentile: 20},
			},
		},
	}

	reasons := ReviewReasons(f)
	assert.Len(t, reasons, 6)
}

func TestReviewReasons_EachConditionIndependent(t *testing.T) {
	healthy := func() contracts.Fund {
		return contracts.Fund{
			Symbol:  "OK",
			Metrics: contracts.MetricVector{contracts.MetricDownCapture3Y: 95},
			Score: &contracts.ScoreDetail{
				Final:      55,
				Percentile: 60,
				Breakdown: map[contracts.Metric]contracts.MetricScore{
					contracts.MetricSharpe3Y:     {Percentile: 55},
					contracts.MetricExpenseRatio: {Percentile: 55},
				},
			},
		}
	}
	assert.Empty(t, ReviewReasons(healthy()))

	f := healthy()
	f.Recommended = true
	f.Score.Final = 48
	assert.Len(t, ReviewReasons(f), 1)

	f = healthy()
	f.Score.Percentile = 24
	assert.Len(t, ReviewReasons(f), 1)

	f = healthy()
	f.Metrics[contracts.MetricDownCapture3Y] = 110
	assert.Empty(t, ReviewReasons(f), "threshold is strictly above 110")

	assert.Empty(t, ReviewReasons(contracts.Fund{Symbol: "UNSCORED"}))
}

func TestReviewCandidates(t *testing.T) {
	funds := []contracts.Fund{
		{Symbol: "B", Score: &contracts.ScoreDetail{Final: 38, Percentile: 40}},
		{Symbol: "A", Score: &contracts.ScoreDetail{Final: 20, Percentile: 0}},
		{Symbol: "OK", Score: &contracts.ScoreDetail{Final: 60, Percentile: 80}},
		{Symbol: "IWF", IsBenchmark: true, Score: &contracts.ScoreDetail{Final: 10, Percentile: 0}},
	}

	got := ReviewCandidates(funds)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Symbol)
	assert.Len(t, got[0].Reasons, 2)
	assert.Equal(t, "B", got[1].Symbol)
	assert.Len(t, got[1].Reasons, 1)
}
