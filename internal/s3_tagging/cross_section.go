package s3_tagging

import (
	"github.com/wonny/fundlens/backend/internal/contracts"
	"github.com/wonny/fundlens/backend/internal/s2_scoring"
	"github.com/wonny/fundlens/backend/pkg/logger"
)

// Thresholds
const (
	ReviewScoreThreshold = 45.0
	LowTenureYears       = 3.0
)

// Tagger implements S3 cross-sectional tagging
// ⭐ SSOT: 횡단면 태그 규칙은 여기서만
type Tagger struct {
	logger *logger.Logger
}

// NewTagger creates a tagger
func NewTagger(log *logger.Logger) *Tagger {
	if log == nil {
		log = logger.Nop()
	}
	return &Tagger{
		logger: log.WithStage(contracts.StageTagging.ShortName()),
	}
}

// TagCrossSection tags every fund against its class mean±SD bands and returns a new slice.
// Bands are recomputed from peer metrics (benchmarks excluded), not from score Z values.
func (t *Tagger) TagCrossSection(funds []contracts.Fund) []contracts.Fund {
	stats := s2_scoring.ClassStatistics(funds)

	out := make([]contracts.Fund, len(funds))
	counts := make(map[string]int)
	for i, f := range funds {
		f = f.Clone()
		tags := CrossSectionTags(f, stats[classOf(f)])
		f.Tags = mergeTags(f.Tags, tags...)
		for _, tag := range tags {
			counts[tag]++
		}
		out[i] = f
	}

	fields := map[string]interface{}{"funds": len(out)}
	for tag, n := range counts {
		fields[tag] = n
	}
	t.logger.WithFields(fields).Info("Cross-sectional tagging completed")

	return out
}

// CrossSectionTags evaluates every rule independently for one fund.
// A rule whose metric is absent, or has no peer values in the class, does not fire.
func CrossSectionTags(f contracts.Fund, stats s2_scoring.Statistics) []string {
	b := bands{metrics: f.Metrics, stats: stats}
	tags := make([]string, 0, 2)

	if f.Score != nil && f.Score.Final < ReviewScoreThreshold {
		tags = append(tags, TagReview)
	}

	if b.above(contracts.MetricExpenseRatio, 1) {
		tags = append(tags, TagExpensive)
	}

	if b.below(contracts.MetricThreeYear, 0) && b.below(contracts.MetricFiveYear, 0) {
		tags = append(tags, TagUnderperf)
	}

	if b.above(contracts.MetricStdDev5Y, 1) || b.below(contracts.MetricSharpe3Y, 1) {
		tags = append(tags, TagHighRisk)
	}

	if v, ok := f.Metrics.Get(contracts.MetricManagerTenure); ok && v < LowTenureYears {
		tags = append(tags, TagTenureLow)
	}

	if b.below(contracts.MetricStdDev5Y, 1) && b.above(contracts.MetricSharpe3Y, 0.5) {
		tags = append(tags, TagConsistent)
	}

	hotYTD := b.above(contracts.MetricYTD, 1)
	if hotYTD && b.above(contracts.MetricOneYear, 1) {
		tags = append(tags, TagMomentum)
	}

	if hotYTD && (b.below(contracts.MetricThreeYear, 0) || b.below(contracts.MetricFiveYear, 0)) {
		tags = append(tags, TagTurnaround)
	}

	return tags
}

// bands compares a fund's metrics with class mean ± k·SD
type bands struct {
	metrics contracts.MetricVector
	stats   s2_scoring.Statistics
}

func (b bands) lookup(m contracts.Metric) (float64, s2_scoring.MetricStats, bool) {
	v, ok := b.metrics.Get(m)
	if !ok {
		return 0, s2_scoring.MetricStats{}, false
	}
	st := b.stats.Get(m)
	if st.Count == 0 {
		return 0, st, false
	}
	return v, st, true
}

// above: v > mean + k·sd
func (b bands) above(m contracts.Metric, k float64) bool {
	v, st, ok := b.lookup(m)
	return ok && v > st.Mean+k*st.StdDev
}

// below: v < mean - k·sd
func (b bands) below(m contracts.Metric, k float64) bool {
	v, st, ok := b.lookup(m)
	return ok && v < st.Mean-k*st.StdDev
}

func classOf(f contracts.Fund) string {
	if f.AssetClass == "" {
		return contracts.AssetClassUnknown
	}
	return f.AssetClass
}
