package entities

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds surfaced by the build and device workflows.
var (
	ErrToolNotFound         = errors.New("tool not found")
	ErrCommunicationFailure = errors.New("communication with tool failed")
	ErrLaunchFailure        = errors.New("process could not be launched")
	ErrConfiguration        = errors.New("configuration error")
	ErrUserAbort            = errors.New("aborted by user")
	ErrBuildFailure         = errors.New("build failed")
	ErrSDKInstallFailed     = errors.New("SDK download/install failed")
)

// CommunicationError reports a supervised command that exited non-zero.
type CommunicationError struct {
	Command  string
	ExitCode int
	Output   string
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("communication with %s failed (exit %d): %s",
		e.Command, e.ExitCode, strings.TrimSpace(e.Output))
}

// Unwrap lets errors.Is match ErrCommunicationFailure.
func (e *CommunicationError) Unwrap() error {
	return ErrCommunicationFailure
}

// LaunchError reports an executable that could not be found or spawned.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %s: %v", e.Command, e.Err)
}

// Unwrap exposes both the launch sentinel and the underlying cause.
func (e *LaunchError) Unwrap() []error {
	return []error{ErrLaunchFailure, e.Err}
}

// CommandError reports a non-supervised tool that exited non-zero.
type CommandError struct {
	Command  string
	ExitCode int
	Output   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s exited with status %d: %s",
		e.Command, e.ExitCode, strings.TrimSpace(e.Output))
}

// Unwrap lets errors.Is match ErrBuildFailure.
func (e *CommandError) Unwrap() error {
	return ErrBuildFailure
}
