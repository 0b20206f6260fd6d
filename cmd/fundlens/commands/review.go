package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/fundlens/backend/internal/s3_tagging"
)

// reviewCmd represents the review command
var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "리뷰 대상 펀드",
	Long: `활성 스냅샷에서 포트폴리오 리뷰 조건에 걸린 펀드를 점수 낮은 순으로 보여줍니다.

Example:
  go run ./cmd/fundlens review`,
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.store.GetActive(cmd.Context())
	if err != nil {
		return fmt.Errorf("active snapshot: %w", err)
	}

	candidates := s3_tagging.ReviewCandidates(snap.Rows)
	if len(candidates) == 0 {
		PrintSuccess(fmt.Sprintf("No review candidates in %s", snap.ID))
		return nil
	}

	PrintHeader(fmt.Sprintf("Review candidates: %s (%d)", snap.ID, len(candidates)))
	widths := []int{8, 22, 6, 4, 50}
	PrintTableHeader([]string{"Symbol", "Asset Class", "Score", "Pct", "Reasons"}, widths)
	for _, c := range candidates {
		PrintTableRow([]string{
			c.Symbol,
			truncate(c.AssetClass, 22),
			fmt.Sprintf("%.1f", c.Final),
			fmt.Sprintf("%d", c.Percentile),
			strings.Join(c.Reasons, "; "),
		}, widths)
	}
	return nil
}
