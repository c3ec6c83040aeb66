package gateways

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/ochairo/forgedroid/internal/domain/entities"
	"github.com/ochairo/forgedroid/internal/domain/interfaces"
)

// ShellRunner runs trusted tools to completion, echoing output to the logger
type ShellRunner struct {
	logger interfaces.Logger
}

// NewShellRunner creates a new shell runner
func NewShellRunner(logger interfaces.Logger) *ShellRunner {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &ShellRunner{logger: logger}
}

// RunShell executes cmd and logs each output line at level as it arrives.
// Cancelling ctx stops the tool and returns ctx.Err() with the output so far,
// which is how long-running streams such as logcat are ended.
func (s *ShellRunner) RunShell(ctx context.Context, level interfaces.Level, cmd entities.Command) (string, error) {
	s.logger.Debug("Running", interfaces.F("command", cmd.String()))

	c := buildCmd(ctx, cmd)
	pr, pw := io.Pipe()
	c.Stdout = pw
	c.Stderr = pw

	var (
		output strings.Builder
		wg     sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			output.WriteString(line)
			output.WriteByte('\n')
			interfaces.Log(s.logger, level, strings.TrimRight(line, "\r"))
		}
		// Keep draining so the child never blocks on a full pipe
		_, _ = io.Copy(io.Discard, pr)
	}()

	if err := c.Start(); err != nil {
		_ = pw.Close()
		wg.Wait()
		return "", &entities.LaunchError{Command: cmd.String(), Err: err}
	}
	err := c.Wait()
	_ = pw.Close()
	wg.Wait()

	out := output.String()
	if err == nil || (errors.Is(err, exec.ErrWaitDelay) && c.ProcessState != nil && c.ProcessState.Success()) {
		return out, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, ctxErr
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	return out, &entities.CommandError{Command: cmd.String(), ExitCode: exitCode, Output: out}
}
