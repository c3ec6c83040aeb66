package gateways

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/ochairo/forgedroid/internal/domain/entities"
	"github.com/ochairo/forgedroid/internal/domain/interfaces/gateways"
)

func TestProcessRunner_Run_Success(t *testing.T) {
	r := NewProcessRunner()

	result, err := r.Run(context.Background(), entities.NewCommand("/bin/sh", "-c", "echo out; echo err >&2"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Success() {
		t.Errorf("Run() exit code = %d, want 0", result.ExitCode)
	}
	if result.Output != "out\nerr\n" {
		t.Errorf("Run() output = %q, want %q", result.Output, "out\nerr\n")
	}
}

func TestProcessRunner_Run_NonZeroExit(t *testing.T) {
	r := NewProcessRunner()

	result, err := r.Run(context.Background(), entities.NewCommand("/bin/sh", "-c", "echo nope; exit 42"))
	if err != nil {
		t.Fatalf("Run() error = %v, want exit code in result", err)
	}
	if result.ExitCode != 42 {
		t.Errorf("Run() exit code = %d, want 42", result.ExitCode)
	}
	if result.Output != "nope\n" {
		t.Errorf("Run() output = %q", result.Output)
	}
}

func TestProcessRunner_Run_MissingExecutable(t *testing.T) {
	r := NewProcessRunner()

	_, err := r.Run(context.Background(), entities.NewCommand(filepath.Join(t.TempDir(), "adb")))
	if !errors.Is(err, entities.ErrLaunchFailure) {
		t.Fatalf("Run() error = %v, want ErrLaunchFailure", err)
	}
	var launchErr *entities.LaunchError
	if !errors.As(err, &launchErr) {
		t.Fatalf("Run() error type = %T, want *entities.LaunchError", err)
	}
}

func TestProcessRunner_Run_StdinEnvAndDir(t *testing.T) {
	r := NewProcessRunner()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "marker"), []byte("x"), 0600); err != nil {
		t.Fatalf("Failed to create marker: %v", err)
	}

	cmd := entities.NewCommand("/bin/sh", "-c", "read line; echo \"$line $FORGE_VAR\"; ls marker")
	cmd.Stdin = "hello\n"
	cmd.Env = map[string]string{"FORGE_VAR": "world"}
	cmd.Dir = dir

	result, err := r.Run(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Output != "hello world\nmarker\n" {
		t.Errorf("Run() output = %q", result.Output)
	}
}

func TestProcessRunner_Run_ContextCancel(t *testing.T) {
	r := NewProcessRunner()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := r.Run(ctx, entities.NewCommand("/bin/sh", "-c", "sleep 5"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestProcessRunner_Start(t *testing.T) {
	r := NewProcessRunner()

	for _, detached := range []bool{false, true} {
		p, err := r.Start(context.Background(), entities.NewCommand("/bin/sh", "-c", "exit 0"),
			gateways.StartOptions{Detached: detached})
		if err != nil {
			t.Fatalf("Start(detached=%v) error = %v", detached, err)
		}
		if p.Pid() <= 0 {
			t.Errorf("Pid() = %d, want > 0", p.Pid())
		}

		select {
		case <-p.Done():
		case <-time.After(5 * time.Second):
			t.Fatalf("Start(detached=%v) process never finished", detached)
		}
		if err := p.Wait(); err != nil {
			t.Errorf("Wait() error = %v", err)
		}
		// Wait is idempotent
		if err := p.Wait(); err != nil {
			t.Errorf("second Wait() error = %v", err)
		}
	}
}

func TestProcessRunner_Start_MissingExecutable(t *testing.T) {
	r := NewProcessRunner()

	_, err := r.Start(context.Background(), entities.NewCommand(filepath.Join(t.TempDir(), "emulator")),
		gateways.StartOptions{Detached: true})
	if !errors.Is(err, entities.ErrLaunchFailure) {
		t.Errorf("Start() error = %v, want ErrLaunchFailure", err)
	}
}

// detachHelperEnv carries the marker path to TestDetachHelper
const detachHelperEnv = "FORGEDROID_DETACH_HELPER_MARKER"

// TestDetachHelper runs as a subprocess: it starts a detached child that keeps
// writing output after this process has exited, then exits at once.
func TestDetachHelper(t *testing.T) {
	if os.Getenv(detachHelperEnv) == "" {
		t.Skip("only runs as a helper process")
	}
	script := `sleep 1; echo one; echo two >&2; touch "$` + detachHelperEnv + `"`
	if _, err := NewProcessRunner().Start(context.Background(),
		entities.NewCommand("/bin/sh", "-c", script),
		gateways.StartOptions{Detached: true}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(0)
}

func TestProcessRunner_Start_DetachedOutlivesParent(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}
	marker := filepath.Join(t.TempDir(), "marker")

	//nolint:gosec // G204: re-runs this test binary
	helper := exec.Command(os.Args[0], "-test.run=^TestDetachHelper$")
	helper.Env = append(os.Environ(), detachHelperEnv+"="+marker)
	if out, err := helper.CombinedOutput(); err != nil {
		t.Fatalf("helper process failed: %v\n%s", err, out)
	}

	deadline := time.Now().Add(10 * time.Second)
	for {
		if _, err := os.Stat(marker); err == nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("detached child did not finish its work after the parent exited")
		}
		time.Sleep(50 * time.Millisecond)
	}
}
