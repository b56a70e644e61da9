package main

import (
	"os"

	"github.com/joho/godotenv"

	"statement-import-service/cmd/importer/cmd"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	// Optional .env for local development; real deployments use the environment
	_ = godotenv.Load()

	cmd.SetVersionInfo(version, commit, date)

	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.NewCLIErrorHandler().HandleError(err))
	}
}
