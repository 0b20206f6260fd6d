package contracts

// Metric is a canonical fund metric name
// ⭐ SSOT: 지표 이름은 여기서만 정의 (헤더 별칭은 s0_ingest에서 정리)
type Metric string

const (
	MetricYTD           Metric = "ytd"
	MetricOneYear       Metric = "oneYear"
	MetricThreeYear     Metric = "threeYear"
	MetricFiveYear      Metric = "fiveYear"
	MetricTenYear       Metric = "tenYear"
	MetricSharpe3Y      Metric = "sharpe3Y"
	MetricStdDev3Y      Metric = "stdDev3Y"
	MetricStdDev5Y      Metric = "stdDev5Y"
	MetricUpCapture3Y   Metric = "upCapture3Y"
	MetricDownCapture3Y Metric = "downCapture3Y"
	MetricAlpha5Y       Metric = "alpha5Y"
	MetricExpenseRatio  Metric = "expenseRatio"
	MetricManagerTenure Metric = "managerTenure"
)

// AllMetrics lists every canonical metric in display order
var AllMetrics = []Metric{
	MetricYTD,
	MetricOneYear,
	MetricThreeYear,
	MetricFiveYear,
	MetricTenYear,
	MetricSharpe3Y,
	MetricStdDev3Y,
	MetricStdDev5Y,
	MetricUpCapture3Y,
	MetricDownCapture3Y,
	MetricAlpha5Y,
	MetricExpenseRatio,
	MetricManagerTenure,
}

// IsValidMetric checks if a metric name is canonical
func IsValidMetric(name string) bool {
	for _, m := range AllMetrics {
		if string(m) == name {
			return true
		}
	}
	return false
}

// MetricVector holds the metric values of a single fund.
// A missing key means the value is absent; absent is never zero.
type MetricVector map[Metric]float64

// Get returns the value and whether it is present
func (v MetricVector) Get(m Metric) (float64, bool) {
	if v == nil {
		return 0, false
	}
	val, ok := v[m]
	return val, ok
}

// Has reports whether the metric is present
func (v MetricVector) Has(m Metric) bool {
	_, ok := v.Get(m)
	return ok
}

// Count returns the number of present metrics
func (v MetricVector) Count() int {
	return len(v)
}

// Clone returns an independent copy
func (v MetricVector) Clone() MetricVector {
	if v == nil {
		return nil
	}
	out := make(MetricVector, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
