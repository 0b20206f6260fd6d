package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/fundlens/backend/internal/trend"
)

// trendCmd represents the trend command
var trendCmd = &cobra.Command{
	Use:   "trend <symbol>",
	Short: "펀드 점수 추이",
	Long: `최근 스냅샷들에서 펀드의 점수 추이를 조회합니다 (오래된 순).

Example:
  go run ./cmd/fundlens trend VFIAX
  go run ./cmd/fundlens trend VFIAX --limit 12`,
	Args: cobra.ExactArgs(1),
	RunE: runTrend,
}

// moversCmd represents the movers command
var moversCmd = &cobra.Command{
	Use:   "movers",
	Short: "최근 두 스냅샷 간 점수 변화",
	Long: `가장 최근 두 스냅샷을 비교해 점수 변화가 큰 펀드부터 보여줍니다.

Example:
  go run ./cmd/fundlens movers --limit 20`,
	RunE: runMovers,
}

var (
	trendLimit  int
	moversLimit int
)

func init() {
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(moversCmd)

	trendCmd.Flags().IntVar(&trendLimit, "limit", trend.DefaultLimit, "조회할 스냅샷 수")
	moversCmd.Flags().IntVar(&moversLimit, "limit", 20, "최대 펀드 수 (0: 전체)")
}

func runTrend(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	series, err := a.analyzer().GetScoreSeries(cmd.Context(), args[0], trendLimit)
	if err != nil {
		return fmt.Errorf("score series: %w", err)
	}
	if len(series) == 0 {
		PrintInfo(fmt.Sprintf("No scores found for %s", args[0]))
		return nil
	}

	PrintHeader(fmt.Sprintf("Score trend: %s", args[0]))
	widths := []int{8, 6, 4, 40}
	PrintTableHeader([]string{"Period", "Score", "Pct", "Tags"}, widths)
	for _, p := range series {
		PrintTableRow([]string{
			p.ID,
			fmt.Sprintf("%.1f", p.Score),
			fmt.Sprintf("%d", p.Percentile),
			formatTags(p.Tags),
		}, widths)
	}

	if delta, ok := trend.Delta(series); ok {
		PrintSeparator()
		PrintKeyValue("Delta", formatDelta(delta), 6)
	}
	return nil
}

func runMovers(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	movers, err := a.analyzer().Movers(cmd.Context(), moversLimit)
	if err != nil {
		return fmt.Errorf("movers: %w", err)
	}
	if len(movers) == 0 {
		PrintInfo("Need at least two snapshots with common funds")
		return nil
	}

	PrintHeader(fmt.Sprintf("Movers %s → %s", movers[0].From, movers[0].To))
	widths := []int{8, 22, 6, 6, 6, 9}
	PrintTableHeader([]string{"Symbol", "Asset Class", "Prev", "Curr", "Delta", "Pct"}, widths)
	for _, m := range movers {
		PrintTableRow([]string{
			m.Symbol,
			truncate(m.AssetClass, 22),
			fmt.Sprintf("%.1f", m.Previous),
			fmt.Sprintf("%.1f", m.Current),
			formatDelta(m.Delta),
			fmt.Sprintf("%d→%d", m.PreviousPercentile, m.CurrentPercentile),
		}, widths)
	}
	return nil
}
