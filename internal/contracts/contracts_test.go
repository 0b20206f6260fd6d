package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStages(t *testing.T) {
	stages := AllStages()
	require.Len(t, stages, 6)
	for i, s := range stages {
		assert.Equal(t, "S"+string(rune('0'+i)), s.ShortName())
		assert.NotEqual(t, "알 수 없음", s.Description())
		assert.True(t, IsValidStage(s.String()))
	}
	assert.Equal(t, "UNKNOWN", Stage("S9_X").ShortName())
	assert.False(t, IsValidStage("S9_X"))
}

func TestMetricVector(t *testing.T) {
	var empty MetricVector
	_, ok := empty.Get(MetricYTD)
	assert.False(t, ok)
	assert.Nil(t, empty.Clone())

	v := MetricVector{MetricYTD: 0}
	val, ok := v.Get(MetricYTD)
	assert.True(t, ok, "zero is a present value")
	assert.Equal(t, 0.0, val)
	assert.False(t, v.Has(MetricAlpha5Y))

	c := v.Clone()
	c[MetricAlpha5Y] = 1
	assert.Equal(t, 1, v.Count())

	assert.True(t, IsValidMetric("sharpe3Y"))
	assert.False(t, IsValidMetric("Sharpe 3Y"))
	assert.Len(t, AllMetrics, 13)
}

func TestFundFromRow(t *testing.T) {
	row := NormalisedRow{Symbol: "AAA", FundName: "Alpha", Metrics: MetricVector{MetricYTD: 1}}
	f := FundFromRow(row)
	assert.Equal(t, AssetClassUnknown, f.AssetClass)
	assert.Equal(t, "Alpha", f.Name)
	assert.NotNil(t, f.Tags)

	f.Metrics[MetricYTD] = 99
	assert.Equal(t, 1.0, row.Metrics[MetricYTD])
}

func TestFundClone(t *testing.T) {
	f := Fund{
		Symbol: "AAA",
		Tags:   []string{"Review"},
		Score: &ScoreDetail{
			Final:     42,
			Breakdown: map[Metric]MetricScore{MetricYTD: {Percentile: 10}},
		},
	}
	c := f.Clone()
	c.Tags[0] = "X"
	c.Score.Final = 90
	c.Score.Breakdown[MetricYTD] = MetricScore{Percentile: 90}

	assert.Equal(t, "Review", f.Tags[0])
	assert.Equal(t, 42.0, f.FinalScore())
	pct, ok := f.Score.MetricPercentile(MetricYTD)
	assert.True(t, ok)
	assert.Equal(t, 10.0, pct)

	assert.True(t, f.HasTag("Review"))
	assert.False(t, f.HasTag("Expensive"))

	var unscored Fund
	assert.Equal(t, 0.0, unscored.FinalScore())
	_, ok = unscored.Score.MetricPercentile(MetricYTD)
	assert.False(t, ok)
}

func TestSnapshotFindAndSummary(t *testing.T) {
	s := Snapshot{
		ID:     "2024-06",
		Rows:   []Fund{{Symbol: "AAA"}, {Symbol: "BBB"}},
		Active: true,
	}
	row, ok := s.Find("BBB")
	require.True(t, ok)
	assert.Equal(t, "BBB", row.Symbol)
	_, ok = s.Find("ZZZ")
	assert.False(t, ok)

	sum := s.Summary()
	assert.Equal(t, "2024-06", sum.ID)
	assert.Equal(t, 2, sum.RowCount)
	assert.True(t, sum.Active)
}
