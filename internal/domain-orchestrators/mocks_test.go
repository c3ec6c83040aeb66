package orchestrators

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ochairo/forgedroid/internal/domain/entities"
	"github.com/ochairo/forgedroid/internal/domain/interfaces"
	"github.com/ochairo/forgedroid/internal/domain/interfaces/repositories"
)

// Mock implementations for testing
type mockStore struct {
	values map[string]string
	saves  int
	err    error
}

func newMockStore(values map[string]string) *mockStore {
	if values == nil {
		values = map[string]string{}
	}
	return &mockStore{values: values}
}

func (m *mockStore) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockStore) Set(key, value string) { m.values[key] = value }

func (m *mockStore) Save() error {
	m.saves++
	return m.err
}

type mockSDKLocator struct {
	dir      string
	err      error
	explicit []string
}

func (m *mockSDKLocator) Locate(_ context.Context, explicitDir string, _ bool) (string, error) {
	m.explicit = append(m.explicit, explicitDir)
	return m.dir, m.err
}

type mockJavaLocator struct {
	bin string
	err error
}

func (m *mockJavaLocator) Locate(_ context.Context) (string, error) {
	return m.bin, m.err
}

type mockDaemon struct{ starts int }

func (m *mockDaemon) Start(_ context.Context, _ entities.ToolPaths) error {
	m.starts++
	return nil
}

type mockDiscovery struct {
	results []entities.DeviceList
	calls   int
}

func (m *mockDiscovery) Discover(_ context.Context, _ entities.ToolPaths) (entities.DeviceList, error) {
	i := m.calls
	m.calls++
	if i < len(m.results) {
		return m.results[i], nil
	}
	return entities.DeviceList{}, nil
}

type mockRemediator struct {
	calls int
	err   error
}

func (m *mockRemediator) Remediate(_ context.Context, _ entities.ToolPaths, _ bool) error {
	m.calls++
	return m.err
}

type mockBuilder struct {
	requests []entities.BuildRequest
	err      error
}

func (m *mockBuilder) Build(_ context.Context, req entities.BuildRequest) (string, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	return req.OutputPath, nil
}

type fixedNamer struct{ name string }

func (n fixedNamer) PackageName(store repositories.ConfigStore) string {
	store.Set(entities.KeyAndroidPackageName, n.name)
	return n.name
}

type mockSupervisor struct {
	commands []string
	timeouts []time.Duration
	failOn   string
}

func (m *mockSupervisor) Supervise(_ context.Context, cmd entities.Command, timeout time.Duration, _ entities.ToolPaths) (string, error) {
	line := cmd.String()
	m.commands = append(m.commands, line)
	m.timeouts = append(m.timeouts, timeout)
	if m.failOn != "" && containsWord(cmd.Args, m.failOn) {
		return "Failure", &entities.CommunicationError{Command: line, ExitCode: 1, Output: "Failure"}
	}
	return "Success", nil
}

func containsWord(args []string, word string) bool {
	for _, a := range args {
		if a == word {
			return true
		}
	}
	return false
}

type mockShell struct {
	mu       sync.Mutex
	commands []string
	levels   []interfaces.Level
}

func (m *mockShell) RunShell(ctx context.Context, level interfaces.Level, cmd entities.Command) (string, error) {
	m.mu.Lock()
	m.commands = append(m.commands, cmd.String())
	m.levels = append(m.levels, level)
	m.mu.Unlock()
	if containsWord(cmd.Args, "*:S") {
		// The log stream runs until the session is cancelled
		<-ctx.Done()
		return "", ctx.Err()
	}
	return "", nil
}

func (m *mockShell) commandsSnapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.commands...)
}

type passthroughTemp struct {
	path string
}

func (p *passthroughTemp) WithTempFile(fn func(path string) error) error {
	return fn(p.path)
}

type mockPrompter struct {
	answers []string
	prompts []string
}

func (m *mockPrompter) Prompt(msg string) (string, error) {
	m.prompts = append(m.prompts, msg)
	if len(m.answers) == 0 {
		return "", errors.New("EOF")
	}
	a := m.answers[0]
	m.answers = m.answers[1:]
	return a, nil
}

func (m *mockPrompter) PromptSecret(msg string) (string, error) {
	return m.Prompt(msg)
}

type mockEmulator struct{ provisions int }

func (m *mockEmulator) Provision(_ context.Context, _ entities.ToolPaths) error {
	m.provisions++
	return nil
}

type logEntry struct {
	level  interfaces.Level
	msg    string
	fields []interfaces.Field
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) record(level interfaces.Level, msg string, fields []interfaces.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (l *recordingLogger) Debug(msg string, fields ...interfaces.Field) {
	l.record(interfaces.LevelDebug, msg, fields)
}

func (l *recordingLogger) Info(msg string, fields ...interfaces.Field) {
	l.record(interfaces.LevelInfo, msg, fields)
}

func (l *recordingLogger) Warn(msg string, fields ...interfaces.Field) {
	l.record(interfaces.LevelWarn, msg, fields)
}

func (l *recordingLogger) Error(msg string, fields ...interfaces.Field) {
	l.record(interfaces.LevelError, msg, fields)
}

// warnings returns the Warn entries logged so far
func (l *recordingLogger) warnings() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logEntry
	for _, e := range l.entries {
		if e.level == interfaces.LevelWarn {
			out = append(out, e)
		}
	}
	return out
}
