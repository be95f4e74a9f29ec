package main

import (
	"os"

	"github.com/wonny/whalewatch/cmd/whalewatch/commands"
)

// main is the entry point for the whalewatch CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/whalewatch [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
