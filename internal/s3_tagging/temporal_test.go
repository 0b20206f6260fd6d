package s3_tagging

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundlens/backend/internal/contracts"
)

func TestTemporalTags(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   []string
	}{
		{name: "improving", scores: []float64{50, 56, 62}, want: []string{TagImproving}},
		{name: "deteriorating", scores: []float64{60, 54, 48}, want: []string{TagDeteriorating}},
		{name: "volatile", scores: []float64{50, 70, 30, 70, 30, 70}, want: []string{TagVolatile}},
		{name: "jump without confirming move", scores: []float64{50, 50, 60}, want: []string{}},
		{name: "small rise", scores: []float64{50, 52, 55}, want: []string{}},
		{name: "exactly five after rounding", scores: []float64{50.1, 50.3, 55.3}, want: []string{TagImproving}},
		{name: "two points", scores: []float64{40, 60}, want: []string{}},
		{name: "five swinging points not volatile", scores: []float64{50, 90, 10, 90, 10}, want: []string{}},
		{name: "steady six", scores: []float64{50, 51, 50, 51, 50, 51}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TemporalTags(tt.scores))
		})
	}
}

func snapshotWith(id string, scores map[string]float64) contracts.Snapshot {
	rows := make([]contracts.Fund, 0, len(scores))
	for sym, s := range scores {
		rows = append(rows, contracts.Fund{Symbol: sym, AssetClass: "X", Score: &contracts.ScoreDetail{Final: s}})
	}
	return contracts.Snapshot{ID: id, Rows: rows}
}

func TestTagTemporal_UsesStoredHistory(t *testing.T) {
	history := []contracts.Snapshot{
		snapshotWith("2024-02", map[string]float64{"UP": 56, "DOWN": 54}),
		snapshotWith("2024-01", map[string]float64{"UP": 50, "DOWN": 60}),
	}
	current := []contracts.Fund{
		{Symbol: "UP", Score: &contracts.ScoreDetail{Final: 62}},
		{Symbol: "DOWN", Score: &contracts.ScoreDetail{Final: 48}},
		{Symbol: "NEW", Score: &contracts.ScoreDetail{Final: 90}},
		{Symbol: "PLACEHOLDER"},
	}

	out := NewTagger(nil).TagTemporal(current, history, DefaultHistoryDepth)
	require.Len(t, out, 4)

	assert.Equal(t, []string{TagImproving}, out[0].Tags)
	assert.Equal(t, []string{TagDeteriorating}, out[1].Tags)
	assert.Empty(t, out[2].Tags)
	assert.Empty(t, out[3].Tags)
	assert.Empty(t, current[0].Tags, "input untouched")
}

func TestTagTemporal_WindowAndDeleted(t *testing.T) {
	scores := []float64{50, 70, 30, 70, 30, 70, 30}
	history := make([]contracts.Snapshot, 0, len(scores))
	for i, s := range scores {
		history = append(history, snapshotWith(fmt.Sprintf("2024-%02d", i+1), map[string]float64{"SWING": s}))
	}

	current := []contracts.Fund{{Symbol: "SWING", Score: &contracts.ScoreDetail{Final: 70}}}
	tagger := NewTagger(nil)

	out := tagger.TagTemporal(current, history, 6)
	assert.Contains(t, out[0].Tags, TagVolatile)

	// depth 3 → two stored points + current: not enough for volatile
	out = tagger.TagTemporal(current, history, 3)
	assert.Empty(t, out[0].Tags)

	// deleted snapshots drop out of the window
	for i := range history {
		if i%2 == 0 {
			history[i].Deleted = true
		}
	}
	out = tagger.TagTemporal(current, history, 6)
	assert.NotContains(t, out[0].Tags, TagVolatile)
}
