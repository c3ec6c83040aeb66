package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ochairo/forgedroid/internal/infrastructure/logging"
)

// migrateMessage is reported by migrate-config; the configuration format has a single version
const migrateMessage = "No migration currently available, you are already on the latest stable version."

func runClean(args []string) {
	fs := flag.NewFlagSet("clean", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: forgedroid clean\n\nAndroid builds leave no output outside release/android; there is nothing to clean.\n")
	}
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}
}

func runMigrateConfig(args []string) {
	fs := flag.NewFlagSet("migrate-config", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: forgedroid migrate-config\n\nUpgrade the project configuration to the current format.\n")
	}
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.DefaultConfig())
	if err != nil {
		fail(err)
	}
	//nolint:errcheck // Sync on stderr fails on some terminals
	defer logger.Sync()
	logger.Info(migrateMessage)
}
