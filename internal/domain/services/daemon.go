package services

import (
	"context"
	"runtime"

	"github.com/ochairo/forgedroid/internal/domain/entities"
	"github.com/ochairo/forgedroid/internal/domain/interfaces"
	"github.com/ochairo/forgedroid/internal/domain/interfaces/gateways"
)

// DaemonManager starts and force-restarts the adb server. The server is shared
// by every process on the host, so restarts may be issued redundantly.
type DaemonManager struct {
	runner gateways.ProcessRunner
	goos   string
	logger interfaces.Logger
}

// NewDaemonManager creates a daemon manager for the current host OS
func NewDaemonManager(runner gateways.ProcessRunner, logger interfaces.Logger) *DaemonManager {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &DaemonManager{
		runner: runner,
		goos:   runtime.GOOS,
		logger: logger,
	}
}

// killCommands returns the polite then forceful kill commands for the host
func (d *DaemonManager) killCommands() []entities.Command {
	if d.goos == "windows" {
		return []entities.Command{
			entities.NewCommand("taskkill", "/T", "/IM", "adb.exe"),
			entities.NewCommand("taskkill", "/T", "/F", "/IM", "adb.exe"),
		}
	}
	return []entities.Command{
		entities.NewCommand("killall", "adb"),
		entities.NewCommand("killall", "-9", "adb"),
	}
}

// Kill terminates every running adb server. "No such process" outcomes are ignored.
func (d *DaemonManager) Kill(ctx context.Context) {
	for _, cmd := range d.killCommands() {
		result, err := d.runner.Run(ctx, cmd)
		if err != nil {
			d.logger.Debug("kill command unavailable", interfaces.F("command", cmd.String()), interfaces.F("error", err))
			continue
		}
		d.logger.Debug("kill command finished", interfaces.F("command", cmd.String()), interfaces.F("exit", result.ExitCode))
	}
}

// Start launches the adb server detached from this process and waits for the
// start command to return.
func (d *DaemonManager) Start(ctx context.Context, tools entities.ToolPaths) error {
	proc, err := d.runner.Start(ctx, entities.NewCommand(tools.ADB, "start-server"), gateways.StartOptions{Detached: true})
	if err != nil {
		return err
	}
	if err := proc.Wait(); err != nil {
		d.logger.Debug("adb start-server exited with error", interfaces.F("error", err))
	}
	return nil
}

// Restart kills all adb servers and starts a fresh one
func (d *DaemonManager) Restart(ctx context.Context, tools entities.ToolPaths) error {
	d.logger.Debug("restarting adb server")
	d.Kill(ctx)
	return d.Start(ctx, tools)
}
