package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ochairo/forgedroid/internal/domain/entities"
	"github.com/ochairo/forgedroid/internal/domain/interfaces"
	"github.com/ochairo/forgedroid/internal/domain/interfaces/gateways"
)

// mockRunner answers Run with a per-call handler and records every command
type mockRunner struct {
	mu      sync.Mutex
	runs    []entities.Command
	starts  []entities.Command
	opts    []gateways.StartOptions
	handler func(ctx context.Context, cmd entities.Command) (*entities.ProcessResult, error)
	process func(cmd entities.Command) (gateways.Process, error)
}

func (m *mockRunner) Run(ctx context.Context, cmd entities.Command) (*entities.ProcessResult, error) {
	m.mu.Lock()
	m.runs = append(m.runs, cmd)
	handler := m.handler
	m.mu.Unlock()
	if handler == nil {
		return &entities.ProcessResult{}, nil
	}
	return handler(ctx, cmd)
}

func (m *mockRunner) Start(_ context.Context, cmd entities.Command, opts gateways.StartOptions) (gateways.Process, error) {
	m.mu.Lock()
	m.starts = append(m.starts, cmd)
	m.opts = append(m.opts, opts)
	process := m.process
	m.mu.Unlock()
	if process == nil {
		return newFinishedProcess(nil), nil
	}
	return process(cmd)
}

func (m *mockRunner) runLines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := make([]string, 0, len(m.runs))
	for _, c := range m.runs {
		lines = append(lines, c.String())
	}
	return lines
}

func (m *mockRunner) startLines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := make([]string, 0, len(m.starts))
	for _, c := range m.starts {
		lines = append(lines, c.String())
	}
	return lines
}

// fakeProcess finishes when its done channel is closed
type fakeProcess struct {
	done chan struct{}
	err  error
}

func newFinishedProcess(err error) *fakeProcess {
	p := &fakeProcess{done: make(chan struct{}), err: err}
	close(p.done)
	return p
}

func (p *fakeProcess) Pid() int              { return 4242 }
func (p *fakeProcess) Wait() error           { <-p.done; return p.err }
func (p *fakeProcess) Done() <-chan struct{} { return p.done }

// countingRestarter counts restarts and optionally runs a hook
type countingRestarter struct {
	mu    sync.Mutex
	count int
	hook  func()
	err   error
}

func (r *countingRestarter) Restart(_ context.Context, _ entities.ToolPaths) error {
	r.mu.Lock()
	r.count++
	hook := r.hook
	r.mu.Unlock()
	if hook != nil {
		hook()
	}
	return r.err
}

func (r *countingRestarter) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// scriptedSupervisor returns canned outputs in order
type scriptedSupervisor struct {
	outputs  []string
	errs     []error
	commands []string
	timeouts []time.Duration
}

func (s *scriptedSupervisor) Supervise(_ context.Context, cmd entities.Command, timeout time.Duration, _ entities.ToolPaths) (string, error) {
	i := len(s.commands)
	s.commands = append(s.commands, cmd.String())
	s.timeouts = append(s.timeouts, timeout)
	var out string
	var err error
	if i < len(s.outputs) {
		out = s.outputs[i]
	} else if len(s.outputs) > 0 {
		out = s.outputs[len(s.outputs)-1]
	}
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return out, err
}

// mockShell records RunShell calls and fails the named stage
type mockShell struct {
	commands []entities.Command
	failOn   string
	onRun    func(cmd entities.Command)
}

func (m *mockShell) RunShell(_ context.Context, _ interfaces.Level, cmd entities.Command) (string, error) {
	m.commands = append(m.commands, cmd)
	if m.onRun != nil {
		m.onRun(cmd)
	}
	if m.failOn != "" && strings.Contains(cmd.Name, m.failOn) {
		return "boom", &entities.CommandError{Command: cmd.String(), ExitCode: 1, Output: "boom"}
	}
	return "", nil
}

// scriptedPrompter answers prompts from a queue
type scriptedPrompter struct {
	answers []string
	prompts []string
	secrets []string
	err     error
}

func (p *scriptedPrompter) next() (string, error) {
	if p.err != nil {
		return "", p.err
	}
	if len(p.answers) == 0 {
		return "", context.Canceled
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

func (p *scriptedPrompter) Prompt(msg string) (string, error) {
	p.prompts = append(p.prompts, msg)
	return p.next()
}

func (p *scriptedPrompter) PromptSecret(msg string) (string, error) {
	p.secrets = append(p.secrets, msg)
	return p.next()
}

// mapStore is an in-memory ConfigStore
type mapStore map[string]string

func (m mapStore) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m mapStore) Set(key, value string) {
	m[key] = value
}

var testTools = entities.ToolPaths{
	Android: "/sdk/tools/android",
	ADB:     "/sdk/platform-tools/adb",
	AAPT:    "/sdk/platform-tools/aapt",
	SDK:     "/sdk",
}
