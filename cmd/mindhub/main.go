// Package main is the entry point for the mindhub CLI.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/nickcecere/mindhub/internal/cli"
)

// Version information (set at build time via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cli.SetVersionInfo(version, commit, date)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
