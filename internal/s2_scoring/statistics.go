package s2_scoring

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/fundlens/backend/internal/contracts"
)

// MetricStats summarises one metric across a peer set
type MetricStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"` // population SD (÷n)
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Statistics holds MetricStats for every canonical metric
type Statistics map[contracts.Metric]MetricStats

// Get returns the stats of a metric (zero value when missing)
func (s Statistics) Get(m contracts.Metric) MetricStats {
	return s[m]
}

// CalculateMetricStatistics computes per-metric stats over peer vectors.
// Absent values are skipped. Empty input yields zeroed stats, never an error.
// ⭐ SSOT: 평균/표준편차 계산은 여기서만
func CalculateMetricStatistics(vectors []contracts.MetricVector) Statistics {
	stats := make(Statistics, len(contracts.AllMetrics))

	for _, m := range contracts.AllMetrics {
		values := make([]float64, 0, len(vectors))
		for _, v := range vectors {
			if x, ok := v.Get(m); ok {
				values = append(values, x)
			}
		}
		stats[m] = summarise(values)
	}

	return stats
}

func summarise(values []float64) MetricStats {
	if len(values) == 0 {
		return MetricStats{}
	}

	mean, variance := stat.PopMeanVariance(values, nil)
	ms := MetricStats{
		Mean:  mean,
		Count: len(values),
		Min:   floats.Min(values),
		Max:   floats.Max(values),
	}
	if len(values) >= 2 && variance > 0 {
		ms.StdDev = math.Sqrt(variance)
	}
	return ms
}

// PeerVectors returns the metric vectors of the non-benchmark funds
func PeerVectors(funds []contracts.Fund) []contracts.MetricVector {
	out := make([]contracts.MetricVector, 0, len(funds))
	for _, f := range funds {
		if f.IsBenchmark {
			continue
		}
		out = append(out, f.Metrics)
	}
	return out
}

// GroupByClass groups fund indexes by asset class, preserving input order
func GroupByClass(funds []contracts.Fund) map[string][]int {
	groups := make(map[string][]int)
	for i, f := range funds {
		class := f.AssetClass
		if class == "" {
			class = contracts.AssetClassUnknown
		}
		groups[class] = append(groups[class], i)
	}
	return groups
}

// ClassStatistics computes peer-only statistics for every asset class.
// 벤치마크는 통계에 절대 포함되지 않음
func ClassStatistics(funds []contracts.Fund) map[string]Statistics {
	out := make(map[string]Statistics)
	for class, idx := range GroupByClass(funds) {
		members := make([]contracts.Fund, 0, len(idx))
		for _, i := range idx {
			members = append(members, funds[i])
		}
		out[class] = CalculateMetricStatistics(PeerVectors(members))
	}
	return out
}
