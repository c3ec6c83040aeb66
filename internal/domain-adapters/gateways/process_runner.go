// Package gateways implements the process, shell, temp-file and download
// collaborators on top of the host OS.
package gateways

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/ochairo/forgedroid/internal/domain/entities"
	"github.com/ochairo/forgedroid/internal/domain/interfaces/gateways"
)

// pipeWaitDelay bounds how long output pipes may stay open once the child exited
const pipeWaitDelay = 2 * time.Second

// ProcessRunner runs external commands with os/exec
type ProcessRunner struct{}

// NewProcessRunner creates a new process runner
func NewProcessRunner() *ProcessRunner {
	return &ProcessRunner{}
}

// Run executes cmd, blocking until it exits, and captures stdout+stderr
// interleaved. Exit status is reported in the result; only a failure to
// start returns an error.
func (r *ProcessRunner) Run(ctx context.Context, cmd entities.Command) (*entities.ProcessResult, error) {
	startTime := time.Now()
	c := buildCmd(ctx, cmd)

	var output bytes.Buffer
	c.Stdout = &output
	c.Stderr = &output

	err := c.Run()
	result := &entities.ProcessResult{
		Output:   output.String(),
		Duration: time.Since(startTime),
	}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	// A grandchild (adb forking its server) may hold the output pipe open
	// after the tool itself exited.
	if errors.Is(err, exec.ErrWaitDelay) && c.ProcessState != nil {
		result.ExitCode = c.ProcessState.ExitCode()
		return result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}
	return nil, &entities.LaunchError{Command: cmd.String(), Err: err}
}

// Start spawns cmd without waiting. Output goes to the null device, never to a
// pipe back to this process. With Detached set the child gets its own session
// and survives this process exiting.
func (r *ProcessRunner) Start(ctx context.Context, cmd entities.Command, opts gateways.StartOptions) (gateways.Process, error) {
	var c *exec.Cmd
	if opts.Detached {
		// Not bound to ctx: a detached child must outlive the caller.
		c = buildCmd(context.Background(), cmd)
		c.SysProcAttr = detachedAttr()
	} else {
		c = buildCmd(ctx, cmd)
	}
	// Stdout and Stderr stay nil: os/exec then opens the null device. A pipe
	// would break with SIGPIPE once this process is gone.

	if err := c.Start(); err != nil {
		return nil, &entities.LaunchError{Command: cmd.String(), Err: err}
	}

	p := &process{cmd: c, done: make(chan struct{})}
	go p.reap()
	return p, nil
}

func buildCmd(ctx context.Context, cmd entities.Command) *exec.Cmd {
	//nolint:gosec // G204: Commands are assembled from resolved SDK tool paths
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	if cmd.Dir != "" {
		c.Dir = cmd.Dir
	}
	if len(cmd.Env) > 0 {
		env := os.Environ()
		for key, value := range cmd.Env {
			env = append(env, fmt.Sprintf("%s=%s", key, value))
		}
		c.Env = env
	}
	if cmd.Stdin != "" {
		c.Stdin = strings.NewReader(cmd.Stdin)
	}
	c.WaitDelay = pipeWaitDelay
	return c
}

// process tracks a started child; reap owns the single cmd.Wait call
type process struct {
	cmd  *exec.Cmd
	done chan struct{}
	once sync.Once
	err  error
}

func (p *process) reap() {
	p.once.Do(func() {
		p.err = p.cmd.Wait()
		close(p.done)
	})
}

func (p *process) Pid() int {
	return p.cmd.Process.Pid
}

func (p *process) Wait() error {
	<-p.done
	return p.err
}

func (p *process) Done() <-chan struct{} {
	return p.done
}
