package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/fundlens/backend/internal/pipeline"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "월간 파일 수집 및 스코어링",
	Long: `월간 펀드 CSV를 파싱, 벤치마크 주입, 스코어링, 태깅한 뒤 스냅샷으로 저장합니다.

스냅샷 id 결정 순서: --period → 파일명(YYYY-MM) → 현재 월
같은 파일(체크섬)을 다른 id로 다시 올리면 기존 스냅샷 id가 반환됩니다
(DUPLICATE_POLICY=strict 이면 에러).

Example:
  go run ./cmd/fundlens ingest data/2024-06.csv
  go run ./cmd/fundlens ingest export.csv --period 2024-06 --note "June close" --activate`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var (
	ingestPeriod   string
	ingestNote     string
	ingestActivate bool
)

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestPeriod, "period", "", "스냅샷 id (YYYY-MM)")
	ingestCmd.Flags().StringVar(&ingestNote, "note", "", "스냅샷 메모")
	ingestCmd.Flags().BoolVar(&ingestActivate, "activate", false, "저장 후 활성 스냅샷으로 지정")
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.loadFunds(); err != nil {
		return err
	}

	result, err := a.ingestor().Ingest(cmd.Context(), pipeline.Request{
		File:     data,
		Filename: filepath.Base(path),
		Period:   ingestPeriod,
		Note:     ingestNote,
		Activate: ingestActivate,
	})
	if err != nil {
		return fmt.Errorf("ingest %s: %w", path, err)
	}

	printIngestResult(result)
	return nil
}

func printIngestResult(r *pipeline.IngestResult) {
	PrintHeader("Ingestion Result")
	PrintKeyValue("Snapshot", r.ID, 10)
	if r.Duplicate {
		PrintKeyValue("Requested", r.RequestedID+" (duplicate file)", 10)
	}
	PrintKeyValue("Checksum", r.Checksum[:12], 10)
	PrintKeyValue("Funds", fmt.Sprintf("%d in %d classes", r.Funds, r.Classes), 10)
	PrintKeyValue("Stages", strings.Join(r.CompletedStages, " → "), 10)
	PrintKeyValue("Duration", r.Duration.String(), 10)

	if len(r.Tags) > 0 {
		tags := make([]string, 0, len(r.Tags))
		for tag, n := range r.Tags {
			tags = append(tags, fmt.Sprintf("%s: %d", tag, n))
		}
		sort.Strings(tags)
		PrintSeparator()
		PrintList(tags)
	}
	PrintSeparator()

	switch {
	case r.Duplicate:
		PrintWarning(fmt.Sprintf("File already stored as %s", r.ID))
	case r.Activated:
		PrintSuccess(fmt.Sprintf("Snapshot %s stored and activated", r.ID))
	default:
		PrintSuccess(fmt.Sprintf("Snapshot %s stored", r.ID))
	}
}
