// Package gateways defines contracts for the external collaborators the
// workflows drive: processes, the shell, temp files, prompts and downloads.
package gateways

import (
	"context"

	"github.com/ochairo/forgedroid/internal/domain/entities"
	"github.com/ochairo/forgedroid/internal/domain/interfaces"
)

// StartOptions controls how a non-blocking process is spawned
type StartOptions struct {
	// Detached puts the child in its own session so it outlives this process
	Detached bool
}

// Process is a started, non-blocking child process
type Process interface {
	// Pid returns the OS process id
	Pid() int

	// Wait blocks until the process exits. Only the first call waits;
	// later calls return the same result.
	Wait() error

	// Done is closed once the process has exited
	Done() <-chan struct{}
}

// ProcessRunner spawns external commands.
// Errors returned are *entities.LaunchError when the executable could not be
// started; a non-zero exit is reported through ProcessResult.ExitCode.
type ProcessRunner interface {
	// Run blocks until cmd completes and returns combined stdout+stderr
	Run(ctx context.Context, cmd entities.Command) (*entities.ProcessResult, error)

	// Start spawns cmd and returns immediately
	Start(ctx context.Context, cmd entities.Command, opts StartOptions) (Process, error)
}

// ShellRunner runs tools that are trusted not to hang, logging each output
// line at level. A non-zero exit returns *entities.CommandError.
type ShellRunner interface {
	RunShell(ctx context.Context, level interfaces.Level, cmd entities.Command) (string, error)
}

// TempFiles hands out unique temporary paths scoped to a callback
type TempFiles interface {
	// WithTempFile calls fn with a fresh path and removes it when fn returns,
	// whether fn succeeded or not.
	WithTempFile(fn func(path string) error) error
}
