package main

import (
	"os"

	"github.com/wonny/lighthorse/backend/cmd/lighthorse/commands"
)

// main is the entry point for the Lighthorse CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/lighthorse [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
