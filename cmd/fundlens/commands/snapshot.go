package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wonny/fundlens/backend/internal/contracts"
	"github.com/wonny/fundlens/backend/internal/snapshot"
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "스냅샷 관리",
	Long: `저장된 월간 스냅샷을 조회하고 관리합니다.

Subcommands:
  list      - 스냅샷 목록
  show      - 스냅샷 행 조회 (기본: 활성 스냅샷)
  activate  - 활성 스냅샷 지정
  delete    - 스냅샷 삭제 (soft)

Example:
  go run ./cmd/fundlens snapshot list
  go run ./cmd/fundlens snapshot show 2024-06 --class "Large Cap Growth"
  go run ./cmd/fundlens snapshot activate 2024-06`,
}

var (
	snapshotListCmd = &cobra.Command{
		Use:   "list",
		Short: "스냅샷 목록",
		RunE:  listSnapshots,
	}

	snapshotShowCmd = &cobra.Command{
		Use:   "show [id]",
		Short: "스냅샷 행 조회",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showSnapshot,
	}

	snapshotActivateCmd = &cobra.Command{
		Use:   "activate <id>",
		Short: "활성 스냅샷 지정",
		Args:  cobra.ExactArgs(1),
		RunE:  activateSnapshot,
	}

	snapshotDeleteCmd = &cobra.Command{
		Use:   "delete <id>",
		Short: "스냅샷 삭제 (soft)",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteSnapshot,
	}
)

var showClass string

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
	snapshotCmd.AddCommand(snapshotActivateCmd)
	snapshotCmd.AddCommand(snapshotDeleteCmd)

	snapshotShowCmd.Flags().StringVar(&showClass, "class", "", "자산군 필터")
}

func listSnapshots(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	summaries, err := snapshot.Summaries(cmd.Context(), a.store)
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	if len(summaries) == 0 {
		PrintInfo("No snapshots stored")
		return nil
	}

	widths := []int{8, 6, 6, 20, 24, 30}
	PrintTableHeader([]string{"ID", "Active", "Rows", "Uploaded", "Source", "Note"}, widths)
	for _, s := range summaries {
		active := ""
		if s.Active {
			active = "*"
		}
		PrintTableRow([]string{
			s.ID,
			active,
			fmt.Sprintf("%d", s.RowCount),
			s.Uploaded.Format("2006-01-02 15:04"),
			truncate(s.Source, 24),
			truncate(s.Note, 30),
		}, widths)
	}
	return nil
}

func showSnapshot(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	var snap *contracts.Snapshot
	if len(args) == 1 {
		snap, err = a.store.Get(cmd.Context(), args[0])
	} else {
		snap, err = a.store.GetActive(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("get snapshot: %w", err)
	}

	rows := make([]contracts.Fund, 0, len(snap.Rows))
	for _, f := range snap.Rows {
		if showClass == "" || f.AssetClass == showClass {
			rows = append(rows, f)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].AssetClass != rows[j].AssetClass {
			return rows[i].AssetClass < rows[j].AssetClass
		}
		return rows[i].FinalScore() > rows[j].FinalScore()
	})

	PrintHeader(fmt.Sprintf("Snapshot %s (%d rows)", snap.ID, len(rows)))
	widths := []int{8, 28, 22, 6, 4, 40}
	PrintTableHeader([]string{"Symbol", "Name", "Asset Class", "Score", "Pct", "Tags"}, widths)
	for _, f := range rows {
		symbol := f.Symbol
		if f.IsBenchmark {
			symbol += " ◆"
		}
		PrintTableRow([]string{
			symbol,
			truncate(f.Name, 28),
			truncate(f.AssetClass, 22),
			formatScore(f),
			formatPercentile(f),
			formatTags(f.Tags),
		}, widths)
	}
	return nil
}

func activateSnapshot(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.SetActive(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("activate %s: %w", args[0], err)
	}
	PrintSuccess(fmt.Sprintf("Snapshot %s is now active", args[0]))
	return nil
}

func deleteSnapshot(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.SoftDelete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete %s: %w", args[0], err)
	}
	PrintSuccess(fmt.Sprintf("Snapshot %s deleted", args[0]))
	return nil
}
