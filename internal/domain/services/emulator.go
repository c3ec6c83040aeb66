package services

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ochairo/forgedroid/internal/domain/entities"
	"github.com/ochairo/forgedroid/internal/domain/interfaces"
	"github.com/ochairo/forgedroid/internal/domain/interfaces/gateways"
)

// EmulatorConfig describes the virtual device provisioned when no device is attached
type EmulatorConfig struct {
	Name        string
	Target      string
	Skin        string
	SDCard      string
	BootTimeout time.Duration
}

// DefaultEmulatorConfig returns the stock AVD settings
func DefaultEmulatorConfig() EmulatorConfig {
	return EmulatorConfig{
		Name:        "forgedroid",
		Target:      "android-8",
		Skin:        "HVGA",
		SDCard:      "32M",
		BootTimeout: 120 * time.Second,
	}
}

// Emulator creates and boots the project's Android virtual device
type Emulator struct {
	runner     gateways.ProcessRunner
	supervisor CommandSupervisor
	config     EmulatorConfig
	isDir      func(string) bool
	logger     interfaces.Logger
}

// NewEmulator creates an emulator provisioner
func NewEmulator(runner gateways.ProcessRunner, supervisor CommandSupervisor, config EmulatorConfig, logger interfaces.Logger) *Emulator {
	defaults := DefaultEmulatorConfig()
	if config.Name == "" {
		config.Name = defaults.Name
	}
	if config.Target == "" {
		config.Target = defaults.Target
	}
	if config.Skin == "" {
		config.Skin = defaults.Skin
	}
	if config.SDCard == "" {
		config.SDCard = defaults.SDCard
	}
	if config.BootTimeout <= 0 {
		config.BootTimeout = defaults.BootTimeout
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &Emulator{
		runner:     runner,
		supervisor: supervisor,
		config:     config,
		isDir:      isDirectory,
		logger:     logger,
	}
}

func (e *Emulator) avdDir(tools entities.ToolPaths) string {
	return filepath.Join(tools.SDK, e.config.Name+"-avd")
}

// Provision creates the AVD if needed, then boots it
func (e *Emulator) Provision(ctx context.Context, tools entities.ToolPaths) error {
	if err := e.CreateIfNecessary(ctx, tools); err != nil {
		return err
	}
	return e.Launch(ctx, tools)
}

// CreateIfNecessary creates the AVD unless its directory already exists
func (e *Emulator) CreateIfNecessary(ctx context.Context, tools entities.ToolPaths) error {
	e.logger.Info("Checking for previously created AVD")
	if e.isDir(e.avdDir(tools)) {
		e.logger.Info("Existing AVD found")
		return nil
	}
	return e.Create(ctx, tools)
}

// Create builds a new AVD, answering the custom hardware prompt with a newline
func (e *Emulator) Create(ctx context.Context, tools entities.ToolPaths) error {
	e.logger.Info("Creating AVD", interfaces.F("name", e.config.Name))
	cmd := entities.NewCommand(tools.Android,
		"create", "avd",
		"-n", e.config.Name,
		"-t", e.config.Target,
		"--skin", e.config.Skin,
		"-p", e.avdDir(tools),
		"-c", e.config.SDCard,
		"--force",
	)
	cmd.Stdin = "\n"

	result, err := e.runner.Run(ctx, cmd)
	if err != nil {
		return err
	}
	if !result.Success() {
		e.logger.Error("AVD creation failed", interfaces.F("output", result.Output))
		return fmt.Errorf("creating AVD %s: %w", e.config.Name, &entities.CommandError{
			Command:  cmd.String(),
			ExitCode: result.ExitCode,
			Output:   result.Output,
		})
	}
	e.logger.Debug("AVD created", interfaces.F("output", result.Output))
	return nil
}

// Launch starts the emulator detached and waits for the package manager to answer
func (e *Emulator) Launch(ctx context.Context, tools entities.ToolPaths) error {
	_, err := e.runner.Start(ctx,
		entities.NewCommand(tools.Emulator(), "-avd", e.config.Name),
		gateways.StartOptions{Detached: true})
	if err != nil {
		return err
	}

	e.logger.Info("Started emulator, waiting for device to boot")
	if _, err := e.supervisor.Supervise(ctx, entities.NewCommand(tools.ADB, "wait-for-device"), e.config.BootTimeout, tools); err != nil {
		return err
	}
	_, err = e.supervisor.Supervise(ctx, entities.NewCommand(tools.ADB, "shell", "pm", "path", "android"), e.config.BootTimeout, tools)
	return err
}
