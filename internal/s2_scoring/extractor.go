package s2_scoring

import (
	"math"

	"github.com/wonny/fundlens/backend/internal/contracts"
)

// ExtractMetrics returns the canonical metric vector of a row.
// Unknown keys and non-finite values are dropped (absent, never zero).
func ExtractMetrics(row contracts.NormalisedRow) contracts.MetricVector {
	out := make(contracts.MetricVector, len(contracts.AllMetrics))
	for _, m := range contracts.AllMetrics {
		v, ok := row.Metrics.Get(m)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[m] = v
	}
	return out
}

// Extract converts normalised rows into unscored funds
func Extract(rows []contracts.NormalisedRow) []contracts.Fund {
	funds := make([]contracts.Fund, 0, len(rows))
	for _, row := range rows {
		f := contracts.FundFromRow(row)
		f.Metrics = ExtractMetrics(row)
		funds = append(funds, f)
	}
	return funds
}
