package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/civica-dev/civica/cmd"
)

// Version information, set via ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// A local .env may carry CIVICA_SERVER or CIVICA_TOKEN; absence is fine.
	_ = godotenv.Load()

	cmd.SetVersionInfo(version, commit, date)

	if err := cmd.New().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
