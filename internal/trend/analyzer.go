package trend

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/wonny/fundlens/backend/internal/contracts"
	"github.com/wonny/fundlens/backend/internal/fundconfig"
	"github.com/wonny/fundlens/backend/internal/snapshot"
	"github.com/wonny/fundlens/backend/pkg/logger"
)

// DefaultLimit is the default number of snapshots in a series
const DefaultLimit = 6

// ScorePoint is one snapshot's score for a symbol
type ScorePoint struct {
	ID         string   `json:"id"`
	Score      float64  `json:"score"`
	Percentile int      `json:"percentile"`
	Tags       []string `json:"tags,omitempty"`
}

// Mover is a symbol's score change between the two most recent snapshots
type Mover struct {
	Symbol             string  `json:"symbol"`
	Name               string  `json:"name"`
	AssetClass         string  `json:"asset_class"`
	From               string  `json:"from"`
	To                 string  `json:"to"`
	Previous           float64 `json:"previous"`
	Current            float64 `json:"current"`
	Delta              float64 `json:"delta"`
	PreviousPercentile int     `json:"previous_percentile"`
	CurrentPercentile  int     `json:"current_percentile"`
}

// Analyzer implements S5: read-only queries over the snapshot store
// ⭐ SSOT: 시계열 점수 조회는 여기서만
type Analyzer struct {
	store  snapshot.Store
	logger *logger.Logger
}

// NewAnalyzer creates a trend analyzer
func NewAnalyzer(store snapshot.Store, log *logger.Logger) *Analyzer {
	if log == nil {
		log = logger.Nop()
	}
	return &Analyzer{
		store:  store,
		logger: log.WithStage(contracts.StageTrend.ShortName()),
	}
}

// GetScoreSeries returns the symbol's scores from up to limit most recent
// non-deleted snapshots, oldest → newest. Snapshots without the symbol are skipped.
func (a *Analyzer) GetScoreSeries(ctx context.Context, symbol string, limit int) ([]ScorePoint, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	symbol = fundconfig.CleanSymbol(symbol)

	snaps, err := a.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	snaps = latest(snaps, limit)

	series := make([]ScorePoint, 0, len(snaps))
	for i := range snaps {
		row, ok := snaps[i].Find(symbol)
		if !ok || row.Score == nil {
			continue
		}
		series = append(series, ScorePoint{
			ID:         snaps[i].ID,
			Score:      row.Score.Final,
			Percentile: row.Score.Percentile,
			Tags:       row.Tags,
		})
	}

	a.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"limit":  limit,
		"points": len(series),
	}).Debug("Built score series")

	return series, nil
}

// Delta returns latest − previous rounded to one decimal; ok=false with fewer than 2 points
func Delta(series []ScorePoint) (float64, bool) {
	n := len(series)
	if n < 2 {
		return 0, false
	}
	return round1(series[n-1].Score - series[n-2].Score), true
}

// Movers compares the two most recent non-deleted snapshots and returns the
// symbols present in both, largest absolute change first. limit <= 0 returns all.
func (a *Analyzer) Movers(ctx context.Context, limit int) ([]Mover, error) {
	snaps, err := a.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	if len(snaps) < 2 {
		return []Mover{}, nil
	}
	prev, curr := snaps[len(snaps)-2], snaps[len(snaps)-1]

	movers := make([]Mover, 0, len(curr.Rows))
	for _, row := range curr.Rows {
		if row.Score == nil || row.IsBenchmark {
			continue
		}
		old, ok := prev.Find(row.Symbol)
		if !ok || old.Score == nil {
			continue
		}
		movers = append(movers, Mover{
			Symbol:             row.Symbol,
			Name:               row.Name,
			AssetClass:         row.AssetClass,
			From:               prev.ID,
			To:                 curr.ID,
			Previous:           old.Score.Final,
			Current:            row.Score.Final,
			Delta:              round1(row.Score.Final - old.Score.Final),
			PreviousPercentile: old.Score.Percentile,
			CurrentPercentile:  row.Score.Percentile,
		})
	}

	sort.SliceStable(movers, func(i, j int) bool {
		di, dj := math.Abs(movers[i].Delta), math.Abs(movers[j].Delta)
		if di != dj {
			return di > dj
		}
		return movers[i].Symbol < movers[j].Symbol
	})

	if limit > 0 && len(movers) > limit {
		movers = movers[:limit]
	}
	return movers, nil
}

// latest keeps the last n snapshots of an id-ordered list
func latest(snaps []contracts.Snapshot, n int) []contracts.Snapshot {
	if len(snaps) > n {
		return snaps[len(snaps)-n:]
	}
	return snaps
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
