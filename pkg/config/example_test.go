package config_test

import (
	"fmt"

	"github.com/wonny/fundlens/backend/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	fmt.Printf("Store driver: %s\n", cfg.StoreDriver)
	fmt.Printf("Fund config: %s\n", cfg.Ingest.FundConfigPath)
	fmt.Printf("Temporal window: %d snapshots\n", cfg.Ingest.HistoryDepth)
}
