package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	env     string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fundlens",
	Short: "FundLens - 월간 펀드 스코어링 시스템",
	Long: `FundLens Unified CLI

월간 펀드 데이터 파일을 자산군 내에서 점수화하고 태그를 붙여
YYYY-MM 스냅샷으로 저장합니다. 스냅샷 간 점수 추이를 조회합니다.

Usage:
  go run ./cmd/fundlens [command]

Examples:
  go run ./cmd/fundlens api
  go run ./cmd/fundlens ingest data/2024-06.csv --activate
  go run ./cmd/fundlens snapshot list
  go run ./cmd/fundlens trend VFIAX --limit 6`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// 플래그가 환경변수보다 우선
		if cmd.Flags().Changed("env") {
			os.Setenv("ENV", env)
		}
		if verbose {
			os.Setenv("LOG_LEVEL", "debug")
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
