package s2_scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/wonny/fundlens/backend/internal/contracts"
	"github.com/wonny/fundlens/backend/pkg/logger"
)

// Weights is the fixed metric weight table.
// 과거 스냅샷과 비교 가능해야 하므로 값을 바꾸면 안 됨
var Weights = map[contracts.Metric]float64{
	contracts.MetricYTD:           0.025,
	contracts.MetricOneYear:       0.05,
	contracts.MetricThreeYear:     0.10,
	contracts.MetricFiveYear:      0.15,
	contracts.MetricTenYear:       0.10,
	contracts.MetricSharpe3Y:      0.10,
	contracts.MetricStdDev3Y:      -0.075,
	contracts.MetricStdDev5Y:      -0.125,
	contracts.MetricUpCapture3Y:   0.075,
	contracts.MetricDownCapture3Y: -0.10,
	contracts.MetricAlpha5Y:       0.05,
	contracts.MetricExpenseRatio:  -0.025,
	contracts.MetricManagerTenure: 0.025,
}

// Scoring constants
const (
	BaselineScore = 50.0 // 평균 펀드
	ScorePerSigma = 10.0 // 가중 Z 합 1당 10점
	MinPeers      = 2
)

// InsufficientPeersNote is attached to every fund of a class with fewer than MinPeers peers
const InsufficientPeersNote = "insufficient peers"

// Scorer implements S2: class statistics → weighted Z-score → 0-100 score
// ⭐ SSOT: 점수 계산은 여기서만
type Scorer struct {
	logger *logger.Logger
}

// NewScorer creates a scorer
func NewScorer(log *logger.Logger) *Scorer {
	if log == nil {
		log = logger.Nop()
	}
	return &Scorer{
		logger: log.WithStage(contracts.StageScoring.ShortName()),
	}
}

// Score scores every fund against its asset class peers and returns a new slice
func (s *Scorer) Score(funds []contracts.Fund) []contracts.Fund {
	out := make([]contracts.Fund, len(funds))
	for i, f := range funds {
		out[i] = f.Clone()
	}

	groups := GroupByClass(out)
	classes := make([]string, 0, len(groups))
	for class := range groups {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	fallback := 0
	for _, class := range classes {
		idx := groups[class]
		if !s.scoreClass(out, idx) {
			fallback++
			s.logger.WithFields(map[string]interface{}{
				"asset_class": class,
				"funds":       len(idx),
			}).Debug("Insufficient peers, fallback score applied")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"funds":    len(out),
		"classes":  len(classes),
		"fallback": fallback,
	}).Info("Scoring completed")

	return out
}

// scoreClass scores funds[idx] in place. Returns false when the fallback applied.
func (s *Scorer) scoreClass(funds []contracts.Fund, idx []int) bool {
	members := make([]contracts.Fund, 0, len(idx))
	for _, i := range idx {
		members = append(members, funds[i])
	}
	peers := PeerVectors(members)

	if len(peers) < MinPeers {
		for _, i := range idx {
			funds[i].Score = fallbackScore(len(peers))
		}
		return false
	}

	stats := CalculateMetricStatistics(peers)
	for _, i := range idx {
		funds[i].Score = ScoreFund(funds[i].Metrics, stats)
	}

	peerRaw := make([]float64, 0, len(peers))
	for _, i := range idx {
		if !funds[i].IsBenchmark {
			peerRaw = append(peerRaw, funds[i].Score.Raw)
		}
	}
	for _, i := range idx {
		funds[i].Score.Percentile = RankPercentile(funds[i].Score.Raw, peerRaw)
	}

	return true
}

// ScoreFund computes raw/final and the breakdown of one metric vector.
// Percentile is left at zero; it needs the whole class (see RankPercentile).
func ScoreFund(metrics contracts.MetricVector, stats Statistics) *contracts.ScoreDetail {
	detail := &contracts.ScoreDetail{
		Breakdown:            make(map[contracts.Metric]contracts.MetricScore),
		TotalPossibleMetrics: len(contracts.AllMetrics),
	}

	raw := 0.0
	for _, m := range contracts.AllMetrics {
		v, ok := metrics.Get(m)
		if !ok {
			continue
		}
		st := stats.Get(m)
		if st.StdDev == 0 {
			continue
		}

		weight := Weights[m]
		z := (v - st.Mean) / st.StdDev
		weighted := z * weight

		pct := NormalCDF(z) * 100
		if weight < 0 {
			pct = 100 - pct
		}

		detail.Breakdown[m] = contracts.MetricScore{
			Z:          z,
			Weight:     weight,
			Weighted:   weighted,
			Percentile: pct,
		}
		raw += weighted
		detail.MetricsUsed++
	}

	// 가중치 재정규화 없음: 데이터가 적은 펀드가 부풀려지지 않도록
	detail.Raw = raw
	detail.Final = FinalScore(raw)
	return detail
}

// FinalScore maps a raw weighted Z sum to 0-100 with one decimal
func FinalScore(raw float64) float64 {
	final := BaselineScore + ScorePerSigma*raw
	return round1(math.Max(0, math.Min(100, final)))
}

// RankPercentile returns the share of peers whose raw score is strictly lower.
// Ties share a percentile.
func RankPercentile(raw float64, peerRaw []float64) int {
	if len(peerRaw) == 0 {
		return int(BaselineScore)
	}
	below := 0
	for _, r := range peerRaw {
		if r < raw {
			below++
		}
	}
	return int(math.Round(100 * float64(below) / float64(len(peerRaw))))
}

func fallbackScore(peers int) *contracts.ScoreDetail {
	return &contracts.ScoreDetail{
		Final:                BaselineScore,
		Percentile:           int(BaselineScore),
		Breakdown:            map[contracts.Metric]contracts.MetricScore{},
		TotalPossibleMetrics: len(contracts.AllMetrics),
		Note:                 fmt.Sprintf("%s (%d in class, need %d)", InsufficientPeersNote, peers, MinPeers),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
