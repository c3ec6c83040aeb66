// Package main provides the forgedroid CLI for building and running Android packages.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	// Dispatch to subcommand
	switch command {
	case "run":
		withSignals(func(ctx context.Context) { runRun(ctx, os.Args[2:]) })
	case "package":
		withSignals(func(ctx context.Context) { runPackage(ctx, os.Args[2:]) })
	case "clean":
		runClean(os.Args[2:])
	case "migrate-config":
		runMigrateConfig(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// withSignals runs fn with a context cancelled on SIGINT or SIGTERM
func withSignals(fn func(ctx context.Context)) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	fn(ctx)
}

func printUsage() {
	fmt.Println(`forgedroid - Android package builder and device runner

Usage:
  forgedroid <command> [options]

Commands:
  run               Build a debug package, install it on a device and follow its log
  package           Build a release-signed package under release/android
  clean             Remove build output (nothing to clean for Android)
  migrate-config    Upgrade the project configuration
  help              Show this help

Use "forgedroid <command> --help" for more information about a command.`)
}

// fail prints err and exits non-zero
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
