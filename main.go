// pgstudio — headless core of an AI-assisted PostgreSQL client.
//
// Entry point: loads .env (API key overrides), then dispatches to the
// Cobra command tree.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/DachengChen/pgstudio/cmd"
)

func main() {
	// Missing .env is fine; env vars may come from the shell.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
