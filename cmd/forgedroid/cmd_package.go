package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	orchestrators "github.com/ochairo/forgedroid/internal/domain-orchestrators"
	"github.com/ochairo/forgedroid/internal/external-adapters/toml"
)

type packageFlags struct {
	project        string
	config         string
	interactive    bool
	interactiveSet bool
}

func parsePackageFlags(args []string, handling flag.ErrorHandling) (*packageFlags, error) {
	fs := flag.NewFlagSet("package", handling)
	f := &packageFlags{}
	fs.StringVar(&f.project, "project", ".", "Project directory containing forgedroid.yml")
	fs.StringVar(&f.config, "config", "", "Tool settings file (default: <project>/forgedroid.toml when present)")
	fs.BoolVar(&f.interactive, "interactive", true, "Prompt for missing signing credentials")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `Usage: forgedroid package [options]

Build a release-signed package under release/android. The SDK path and the
signing profile are read from the tool settings file:

  [android]
  sdk = "/opt/android-sdk"

  [android.profile]
  keystore  = "release.keystore"
  storepass = "..."
  keyalias  = "release"
  keypass   = "..."

  [release]
  gpg_key = "release-signing.asc"

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

func (f *packageFlags) packageOptions(tool toml.ToolConfig) orchestrators.PackageOptions {
	opts := orchestrators.PackageOptions{
		SDK:         tool.SDK,
		Interactive: tool.Interactive,
		Signing:     tool.Profile,
	}
	if f.interactiveSet {
		opts.Interactive = f.interactive
	}
	return opts
}

func runPackage(ctx context.Context, args []string) {
	flags, err := parsePackageFlags(args, flag.ExitOnError)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	if err := executePackage(ctx, flags); err != nil {
		fail(err)
	}
}

func executePackage(ctx context.Context, flags *packageFlags) error {
	project, err := loadProject(flags.project)
	if err != nil {
		return err
	}
	tool, err := loadToolConfig(flags.config, project.Dir)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	release, err := a.releaseOrchestrator(tool)
	if err != nil {
		return err
	}
	artifact, err := release.Package(ctx, project, flags.packageOptions(tool))
	if err != nil {
		return err
	}

	fmt.Printf("✓ Package: %s\n", artifact.Path)
	if artifact.SHA256Path != "" {
		fmt.Printf("  Checksum: %s\n", artifact.SHA256Path)
	}
	if artifact.SigPath != "" {
		fmt.Printf("  Signature: %s\n", artifact.SigPath)
	}
	return nil
}
