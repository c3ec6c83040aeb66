package entities

import (
	"strings"
	"time"
)

const redacted = "********"

// Command is an external program invocation
type Command struct {
	Name  string
	Args  []string
	Dir   string
	Env   map[string]string
	Stdin string

	// Redact lists argument values that must never appear in logs
	Redact []string
}

// NewCommand creates a command from a program name and arguments
func NewCommand(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// Argv returns the full argument vector including the program name
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// String renders the command line with redacted values masked
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	for _, arg := range c.Argv() {
		if c.isRedacted(arg) {
			parts = append(parts, redacted)
			continue
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

func (c Command) isRedacted(arg string) bool {
	if arg == "" {
		return false
	}
	for _, secret := range c.Redact {
		if secret != "" && arg == secret {
			return true
		}
	}
	return false
}

// ProcessResult is the outcome of an attached command run
type ProcessResult struct {
	Output   string
	ExitCode int
	Duration time.Duration
}

// Success reports a zero exit status
func (r *ProcessResult) Success() bool {
	return r != nil && r.ExitCode == 0
}
