package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ochairo/forgedroid/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/forgedroid/internal/domain-orchestrators"
	"github.com/ochairo/forgedroid/internal/domain/interfaces"
	"github.com/ochairo/forgedroid/internal/domain/services"
	"github.com/ochairo/forgedroid/internal/external-adapters/gpg"
	"github.com/ochairo/forgedroid/internal/external-adapters/terminal"
	"github.com/ochairo/forgedroid/internal/external-adapters/toml"
	"github.com/ochairo/forgedroid/internal/external-adapters/yaml"
	"github.com/ochairo/forgedroid/internal/infrastructure/config"
	"github.com/ochairo/forgedroid/internal/infrastructure/logging"
)

// toolConfigFileName is picked up from the project directory when --config is not given
const toolConfigFileName = "forgedroid.toml"

// app holds the collaborators shared by the run and package commands
type app struct {
	env      *config.Config
	logger   *logging.Logger
	runner   *gateways.ProcessRunner
	shell    *gateways.ShellRunner
	temp     *gateways.TempFiles
	prompter *terminal.Prompter

	daemon     *services.DaemonManager
	supervisor *services.Supervisor
	sdk        *services.SDKLocator
	java       *services.JavaLocator
	builder    *services.Pipeline
	namer      *services.PackageNamer
}

func newApp() (*app, error) {
	env, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{
		Level:       env.LogLevel,
		Development: env.LogDevelopment,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine home directory: %w", err)
	}

	runner := gateways.NewProcessRunner()
	shell := gateways.NewShellRunner(logger)
	temp := gateways.NewTempFiles("")
	prompter := terminal.NewPrompter()

	daemon := services.NewDaemonManager(runner, logger)
	supervisor := services.NewSupervisor(runner, daemon, logger)

	sdk := services.NewSDKLocator(
		gateways.NewSDKDownloader(logger),
		services.NewSDKComponentUpdater(runner, logger),
		prompter,
		services.SDKLocatorConfig{
			SearchPaths:  services.DefaultSDKSearchPaths(home),
			Capabilities: services.DefaultHostCapabilities(home, env.SDKDownloadBase),
			GOOS:         runtime.GOOS,
		},
		logger,
	)

	return &app{
		env:        env,
		logger:     logger,
		runner:     runner,
		shell:      shell,
		temp:       temp,
		prompter:   prompter,
		daemon:     daemon,
		supervisor: supervisor,
		sdk:        sdk,
		java:       services.NewJavaLocator(runner, nil, logger),
		builder:    services.NewPipeline(shell, temp, logger),
		namer:      services.NewPackageNamer(),
	}, nil
}

func (a *app) close() {
	//nolint:errcheck // Sync on stderr fails on some terminals
	a.logger.Sync()
}

func (a *app) sessionOrchestrator() *orchestrators.SessionOrchestrator {
	discovery := services.NewDiscovery(a.supervisor, a.daemon, services.DiscoveryConfig{
		Timeout: a.env.ADBTimeout,
		Pause:   a.env.DiscoveryPause,
	}, a.logger)

	emuConfig := services.DefaultEmulatorConfig()
	emuConfig.BootTimeout = a.env.BootTimeout
	emulator := services.NewEmulator(a.runner, a.supervisor, emuConfig, a.logger)

	return orchestrators.NewSessionOrchestrator(orchestrators.SessionDeps{
		SDK:        a.sdk,
		Java:       a.java,
		Daemon:     a.daemon,
		Discovery:  discovery,
		Remediator: orchestrators.NewEmulatorRemediation(emulator, a.prompter),
		Builder:    a.builder,
		Namer:      a.namer,
		Supervisor: a.supervisor,
		Shell:      a.shell,
		Temp:       a.temp,
	}, orchestrators.SessionConfig{
		UninstallTimeout: a.env.UninstallTimeout,
		InstallTimeout:   a.env.InstallTimeout,
		LaunchTimeout:    a.env.LaunchTimeout,
		GOOS:             runtime.GOOS,
	}, a.logger)
}

func (a *app) releaseOrchestrator(tool toml.ToolConfig) (*orchestrators.ReleaseOrchestrator, error) {
	artifacts := services.NewReleaseArtifactsService(nil)
	if tool.GPGKey != "" {
		signer, err := gpg.LoadSignerFromFile(tool.GPGKey, tool.GPGPassphrase)
		if err != nil {
			return nil, fmt.Errorf("failed to load release signing key: %w", err)
		}
		a.logger.Info("Release artifacts will be signed", interfaces.F("fingerprint", signer.Fingerprint()))
		artifacts = services.NewReleaseArtifactsService(signer)
	}

	return orchestrators.NewReleaseOrchestrator(
		a.sdk,
		a.java,
		services.NewSigningResolver(a.prompter),
		a.builder,
		a.namer,
		artifacts,
		runtime.GOOS,
		a.logger,
	), nil
}

// loadProject opens the project configuration in dir
func loadProject(dir string) (orchestrators.Project, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return orchestrators.Project{}, fmt.Errorf("failed to resolve project directory: %w", err)
	}
	store, err := yaml.LoadProjectStore(abs)
	if err != nil {
		return orchestrators.Project{}, err
	}
	return orchestrators.Project{Dir: abs, Store: store}, nil
}

// loadToolConfig reads the explicit config file, or the project's
// forgedroid.toml when one exists
func loadToolConfig(explicit, projectDir string) (toml.ToolConfig, error) {
	path := explicit
	if path == "" {
		candidate := filepath.Join(projectDir, toolConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	return toml.LoadToolConfig(path)
}
