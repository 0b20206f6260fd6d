package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/fundlens/backend/pkg/config"
	"github.com/wonny/fundlens/backend/pkg/database"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "PostgreSQL 스키마 마이그레이션",
	Long: `내장된 SQL 마이그레이션을 DATABASE_URL에 적용합니다.
SQLite 저장소는 열 때 스키마를 직접 만듭니다.

Example:
  go run ./cmd/fundlens migrate up
  go run ./cmd/fundlens migrate version`,
}

var (
	migrateUpCmd = &cobra.Command{
		Use:   "up",
		Short: "모든 마이그레이션 적용",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := databaseURL()
			if err != nil {
				return err
			}
			if err := database.RunMigrations(url); err != nil {
				return err
			}
			PrintSuccess("Migrations applied")
			return nil
		},
	}

	migrateDownCmd = &cobra.Command{
		Use:   "down",
		Short: "마지막 마이그레이션 롤백",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := databaseURL()
			if err != nil {
				return err
			}
			if err := database.RollbackMigrations(url); err != nil {
				return err
			}
			PrintSuccess("Migration rolled back")
			return nil
		},
	}

	migrateVersionCmd = &cobra.Command{
		Use:   "version",
		Short: "현재 스키마 버전",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := databaseURL()
			if err != nil {
				return err
			}
			version, dirty, err := database.MigrationVersion(url)
			if err != nil {
				return err
			}
			PrintKeyValue("Version", fmt.Sprintf("%d", version), 7)
			PrintKeyValue("Dirty", fmt.Sprintf("%t", dirty), 7)
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

func databaseURL() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.URL == "" {
		return "", fmt.Errorf("DATABASE_URL is not set")
	}
	return cfg.Database.URL, nil
}
