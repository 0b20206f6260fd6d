package s3_tagging

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/fundlens/backend/internal/contracts"
)

// Temporal rule parameters
const (
	DefaultHistoryDepth = 6   // 현재 스냅샷 포함
	TrendJump           = 5.0 // improving/deteriorating 최소 변화폭
	VolatileMinPoints   = 6
	VolatileStdDev      = 15.0
)

// TemporalTags derives trend tags from a score series ordered oldest → newest
func TemporalTags(scores []float64) []string {
	tags := make([]string, 0, 1)
	n := len(scores)

	if n >= 3 {
		latest := round1(scores[n-1] - scores[n-2])
		previous := round1(scores[n-2] - scores[n-3])

		if latest >= TrendJump && previous > 0 {
			tags = append(tags, TagImproving)
		}
		if latest <= -TrendJump && previous < 0 {
			tags = append(tags, TagDeteriorating)
		}
	}

	if n >= VolatileMinPoints && stat.PopStdDev(scores, nil) >= VolatileStdDev {
		tags = append(tags, TagVolatile)
	}

	return tags
}

// TagTemporal applies temporal tags to the in-flight funds using stored history.
// history may be in any order; deleted snapshots are ignored. Only the most recent
// depth-1 snapshots are used so the window, current scores included, is depth points.
// Returns a new slice; history rows are never touched.
func (t *Tagger) TagTemporal(current []contracts.Fund, history []contracts.Snapshot, depth int) []contracts.Fund {
	if depth <= 0 {
		depth = DefaultHistoryDepth
	}
	window := recentSnapshots(history, depth-1)

	out := make([]contracts.Fund, len(current))
	tagged := 0
	for i, f := range current {
		f = f.Clone()
		if f.Score != nil {
			series := make([]float64, 0, len(window)+1)
			for _, snap := range window {
				if row, ok := snap.Find(f.Symbol); ok && row.Score != nil {
					series = append(series, row.Score.Final)
				}
			}
			series = append(series, f.Score.Final)

			if tags := TemporalTags(series); len(tags) > 0 {
				f.Tags = mergeTags(f.Tags, tags...)
				tagged++
			}
		}
		out[i] = f
	}

	t.logger.WithFields(map[string]interface{}{
		"funds":     len(out),
		"history":   len(window),
		"tagged":    tagged,
		"max_depth": depth,
	}).Info("Temporal tagging completed")

	return out
}

// recentSnapshots returns up to n non-deleted snapshots, oldest → newest
func recentSnapshots(history []contracts.Snapshot, n int) []contracts.Snapshot {
	if n <= 0 {
		return nil
	}
	live := make([]contracts.Snapshot, 0, len(history))
	for _, s := range history {
		if !s.Deleted {
			live = append(live, s)
		}
	}
	sort.Slice(live, func(i, j int) bool { return live[i].ID < live[j].ID })
	if len(live) > n {
		live = live[len(live)-n:]
	}
	return live
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
