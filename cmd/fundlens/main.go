package main

import (
	"os"

	"github.com/wonny/fundlens/backend/cmd/fundlens/commands"
)

// main is the entry point for the FundLens CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/fundlens [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
