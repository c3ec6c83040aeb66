// Package services contains the device and build workflows' domain logic.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/ochairo/forgedroid/internal/domain/entities"
	"github.com/ochairo/forgedroid/internal/domain/interfaces"
	"github.com/ochairo/forgedroid/internal/domain/interfaces/gateways"
)

// DaemonRestarter forcibly restarts the debug bridge daemon
type DaemonRestarter interface {
	Restart(ctx context.Context, tools entities.ToolPaths) error
}

// CommandSupervisor runs a debug bridge command under a watchdog
type CommandSupervisor interface {
	Supervise(ctx context.Context, cmd entities.Command, timeout time.Duration, tools entities.ToolPaths) (string, error)
}

// Supervisor runs debug bridge commands with a deadline. A command still
// running at the deadline is treated as hung: the daemon is restarted and the
// original command is then awaited without a deadline.
type Supervisor struct {
	runner    gateways.ProcessRunner
	restarter DaemonRestarter
	logger    interfaces.Logger
}

// NewSupervisor creates a supervisor
func NewSupervisor(runner gateways.ProcessRunner, restarter DaemonRestarter, logger interfaces.Logger) *Supervisor {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &Supervisor{
		runner:    runner,
		restarter: restarter,
		logger:    logger,
	}
}

type runOutcome struct {
	result *entities.ProcessResult
	err    error
}

// Supervise runs cmd and returns its combined output.
// A non-zero exit is returned as *entities.CommunicationError.
func (s *Supervisor) Supervise(ctx context.Context, cmd entities.Command, timeout time.Duration, tools entities.ToolPaths) (string, error) {
	done := make(chan runOutcome, 1)
	go func() {
		result, err := s.runner.Run(ctx, cmd)
		done <- runOutcome{result: result, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var outcome runOutcome
	select {
	case outcome = <-done:
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		s.logger.Debug("debug bridge hung, restarting daemon",
			interfaces.F("command", cmd.String()),
			interfaces.F("timeout", timeout))
		if err := s.restarter.Restart(ctx, tools); err != nil {
			s.logger.Warn("daemon restart failed", interfaces.F("error", err))
		}
		// The command is left running; it resolves against the new daemon
		// or fails once the old one is gone.
		select {
		case outcome = <-done:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if outcome.err != nil {
		var launchErr *entities.LaunchError
		if errors.As(outcome.err, &launchErr) {
			s.logger.Error("problem finding the android debug bridge",
				interfaces.F("path", tools.ADB))
			s.logger.Error("this probably means you need to run the Android SDK manager and download the Android platform-tools")
		}
		return "", outcome.err
	}

	if !outcome.result.Success() {
		s.logger.Error("communication with adb failed",
			interfaces.F("command", cmd.String()),
			interfaces.F("output", outcome.result.Output))
		return outcome.result.Output, &entities.CommunicationError{
			Command:  cmd.String(),
			ExitCode: outcome.result.ExitCode,
			Output:   outcome.result.Output,
		}
	}

	return outcome.result.Output, nil
}
