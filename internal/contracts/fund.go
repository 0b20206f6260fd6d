package contracts

// AssetClassUnknown is used when no asset class could be resolved
const AssetClassUnknown = "Unknown"

// AssetClassBenchmark is the generic class some sources give to index rows
const AssetClassBenchmark = "Benchmark"

// NormalisedRow is one parsed spreadsheet row passed from S0 to S1
// ⭐ SSOT: S0 → S1 정규화 행 전달 (헤더 해석은 S0에서 끝남)
type NormalisedRow struct {
	Symbol            string       `json:"symbol" msgpack:"symbol"`
	FundName          string       `json:"fund_name,omitempty" msgpack:"fund_name"`
	Metrics           MetricVector `json:"metrics" msgpack:"metrics"`
	AssetClass        string       `json:"asset_class" msgpack:"asset_class"`
	IsBenchmark       bool         `json:"is_benchmark" msgpack:"is_benchmark"`
	BenchmarkForClass string       `json:"benchmark_for_class,omitempty" msgpack:"benchmark_for_class"`
	Recommended       bool         `json:"recommended" msgpack:"recommended"`
}

// Fund is a scored and tagged fund row
type Fund struct {
	Symbol            string       `json:"symbol" msgpack:"symbol"`
	Name              string       `json:"name" msgpack:"name"`
	AssetClass        string       `json:"asset_class" msgpack:"asset_class"`
	IsBenchmark       bool         `json:"is_benchmark" msgpack:"is_benchmark"`
	BenchmarkForClass string       `json:"benchmark_for_class,omitempty" msgpack:"benchmark_for_class"`
	Recommended       bool         `json:"recommended" msgpack:"recommended"`
	Metrics           MetricVector `json:"metrics" msgpack:"metrics"`
	Score             *ScoreDetail `json:"score,omitempty" msgpack:"score"`
	Tags              []string     `json:"tags" msgpack:"tags"`
}

// FundFromRow builds an unscored fund from a normalised row
func FundFromRow(row NormalisedRow) Fund {
	class := row.AssetClass
	if class == "" {
		class = AssetClassUnknown
	}
	return Fund{
		Symbol:            row.Symbol,
		Name:              row.FundName,
		AssetClass:        class,
		IsBenchmark:       row.IsBenchmark,
		BenchmarkForClass: row.BenchmarkForClass,
		Recommended:       row.Recommended,
		Metrics:           row.Metrics.Clone(),
		Tags:              []string{},
	}
}

// FinalScore returns the 0-100 score, or 0 when the fund is unscored
func (f *Fund) FinalScore() float64 {
	if f.Score == nil {
		return 0
	}
	return f.Score.Final
}

// HasTag checks if the fund carries a tag
func (f *Fund) HasTag(tag string) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the fund
func (f Fund) Clone() Fund {
	out := f
	out.Metrics = f.Metrics.Clone()
	out.Tags = append([]string{}, f.Tags...)
	if f.Score != nil {
		score := *f.Score
		if f.Score.Breakdown != nil {
			score.Breakdown = make(map[Metric]MetricScore, len(f.Score.Breakdown))
			for k, v := range f.Score.Breakdown {
				score.Breakdown[k] = v
			}
		}
		out.Score = &score
	}
	return out
}

// ScoreDetail contains the score of a fund and its per-metric breakdown
type ScoreDetail struct {
	Raw                  float64                `json:"raw" msgpack:"raw"`               // 가중 Z-score 합
	Final                float64                `json:"final" msgpack:"final"`           // 0~100, 소수 1자리
	Percentile           int                    `json:"percentile" msgpack:"percentile"` // 같은 자산군 내 순위
	Breakdown            map[Metric]MetricScore `json:"breakdown" msgpack:"breakdown"`
	MetricsUsed          int                    `json:"metrics_used" msgpack:"metrics_used"`
	TotalPossibleMetrics int                    `json:"total_possible_metrics" msgpack:"total_possible_metrics"`
	Note                 string                 `json:"note,omitempty" msgpack:"note"`
}

// MetricScore is the contribution of one metric to a fund's score
type MetricScore struct {
	Z          float64 `json:"z" msgpack:"z"`
	Weight     float64 `json:"weight" msgpack:"weight"`
	Weighted   float64 `json:"weighted" msgpack:"weighted"`
	Percentile float64 `json:"percentile" msgpack:"percentile"`
}

// MetricPercentile returns the per-metric percentile if the metric was scored
func (s *ScoreDetail) MetricPercentile(m Metric) (float64, bool) {
	if s == nil || s.Breakdown == nil {
		return 0, false
	}
	ms, ok := s.Breakdown[m]
	if !ok {
		return 0, false
	}
	return ms.Percentile, true
}
