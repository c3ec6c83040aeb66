package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	orchestrators "github.com/ochairo/forgedroid/internal/domain-orchestrators"
	"github.com/ochairo/forgedroid/internal/external-adapters/toml"
)

type runFlags struct {
	project     string
	config      string
	sdk         string
	device      string
	interactive bool
	purge       bool

	// interactiveSet reports whether --interactive was given explicitly
	interactiveSet bool
}

func parseRunFlags(args []string, handling flag.ErrorHandling) (*runFlags, error) {
	fs := flag.NewFlagSet("run", handling)
	f := &runFlags{}
	fs.StringVar(&f.project, "project", ".", "Project directory containing forgedroid.yml")
	fs.StringVar(&f.config, "config", "", "Tool settings file (default: <project>/forgedroid.toml when present)")
	fs.StringVar(&f.sdk, "android.sdk", "", "Path to the Android SDK")
	fs.StringVar(&f.device, "android.device", "", "Serial of the device to run on (default: first attached)")
	fs.BoolVar(&f.interactive, "interactive", true, "Prompt when input is needed")
	fs.BoolVar(&f.purge, "android.purge", false, "Uninstall the app before installing")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `Usage: forgedroid run [options]

Build a debug-signed package, install it on a device and follow its log
until interrupted.

Examples:
  forgedroid run
  forgedroid run --android.device emulator-5554 --android.purge
  forgedroid run --android.sdk ~/android-sdk --interactive=false

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == "interactive" {
			f.interactiveSet = true
		}
	})
	return f, nil
}

// runOptions merges flags over the tool settings file. Flags win.
func (f *runFlags) runOptions(tool toml.ToolConfig) (orchestrators.RunOptions, error) {
	opts := orchestrators.RunOptions{
		SDK:         tool.SDK,
		Device:      f.device,
		Interactive: tool.Interactive,
		Purge:       f.purge,
	}
	if f.interactiveSet {
		opts.Interactive = f.interactive
	}
	if f.sdk != "" {
		sdk, err := filepath.Abs(f.sdk)
		if err != nil {
			return opts, fmt.Errorf("failed to resolve SDK path: %w", err)
		}
		opts.SDK = sdk
	}
	return opts, nil
}

func runRun(ctx context.Context, args []string) {
	flags, err := parseRunFlags(args, flag.ExitOnError)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	if err := executeRun(ctx, flags); err != nil {
		fail(err)
	}
}

func executeRun(ctx context.Context, flags *runFlags) error {
	project, err := loadProject(flags.project)
	if err != nil {
		return err
	}
	tool, err := loadToolConfig(flags.config, project.Dir)
	if err != nil {
		return err
	}
	opts, err := flags.runOptions(tool)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	return a.sessionOrchestrator().Run(ctx, project, opts)
}
