package s3_tagging

import (
	"fmt"
	"sort"

	"github.com/wonny/fundlens/backend/internal/contracts"
)

// Portfolio review thresholds
const (
	ReviewMaxFinal            = 40.0
	ReviewMaxPercentile       = 25
	ReviewMaxSharpePct        = 30.0
	ReviewMaxExpensePct       = 25.0
	ReviewMaxDownCapture      = 110.0
	ReviewRecommendedMinFinal = 50.0
)

// ReviewCandidate is a fund flagged for portfolio review with the reasons
type ReviewCandidate struct {
	Symbol     string         `json:"symbol"`
	Name       string         `json:"name"`
	AssetClass string         `json:"asset_class"`
	Final      float64        `json:"final"`
	Percentile int            `json:"percentile"`
	Reasons    []string       `json:"reasons"`
	Fund       contracts.Fund `json:"-"`
}

// ReviewReasons evaluates the portfolio review conditions independently.
// An empty result means the fund is not a candidate.
func ReviewReasons(f contracts.Fund) []string {
	reasons := make([]string, 0)
	if f.Score == nil {
		return reasons
	}
	s := f.Score

	if s.Final < ReviewMaxFinal {
		reasons = append(reasons, fmt.Sprintf("Score %.1f is below %.0f", s.Final, ReviewMaxFinal))
	}
	if s.Percentile < ReviewMaxPercentile {
		reasons = append(reasons, fmt.Sprintf("Ranks in the bottom quartile of %s (percentile %d)", f.AssetClass, s.Percentile))
	}
	if pct, ok := s.MetricPercentile(contracts.MetricSharpe3Y); ok && pct < ReviewMaxSharpePct {
		reasons = append(reasons, fmt.Sprintf("Weak risk-adjusted return (Sharpe percentile %.0f)", pct))
	}
	if pct, ok := s.MetricPercentile(contracts.MetricExpenseRatio); ok && pct < ReviewMaxExpensePct {
		reasons = append(reasons, fmt.Sprintf("High cost relative to peers (expense percentile %.0f)", pct))
	}
	if dc, ok := f.Metrics.Get(contracts.MetricDownCapture3Y); ok && dc > ReviewMaxDownCapture {
		reasons = append(reasons, fmt.Sprintf("Down capture %.1f exceeds %.0f", dc, ReviewMaxDownCapture))
	}
	if f.Recommended && s.Final < ReviewRecommendedMinFinal {
		reasons = append(reasons, fmt.Sprintf("Recommended holding scoring %.1f (below %.0f)", s.Final, ReviewRecommendedMinFinal))
	}

	return reasons
}

// ReviewCandidates returns every non-benchmark fund with at least one reason,
// lowest score first
func ReviewCandidates(funds []contracts.Fund) []ReviewCandidate {
	out := make([]ReviewCandidate, 0)
	for _, f := range funds {
		if f.IsBenchmark {
			continue
		}
		reasons := ReviewReasons(f)
		if len(reasons) == 0 {
			continue
		}
		out = append(out, ReviewCandidate{
			Symbol:     f.Symbol,
			Name:       f.Name,
			AssetClass: f.AssetClass,
			Final:      f.FinalScore(),
			Percentile: f.Score.Percentile,
			Reasons:    reasons,
			Fund:       f,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Final != out[j].Final {
			return out[i].Final < out[j].Final
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}
