package orchestrators

import (
	"context"
	"fmt"
	"strings"

	"github.com/ochairo/forgedroid/internal/domain/entities"
	"github.com/ochairo/forgedroid/internal/domain/interfaces/gateways"
)

// EmulatorProvisioner interface for creating and booting a virtual device
type EmulatorProvisioner interface {
	Provision(ctx context.Context, tools entities.ToolPaths) error
}

const noDevicePrompt = `
No active Android device found, would you like to:

(1) Attempt to automatically launch the Android emulator
(2) Attempt to find the device again (choose this option after plugging in an Android device or launching the emulator).

Please enter 1 or 2: `

// EmulatorRemediation offers to boot the emulator when no device is attached.
// Non-interactive sessions boot it without asking.
type EmulatorRemediation struct {
	emulator EmulatorProvisioner
	prompter gateways.Prompter
}

// NewEmulatorRemediation creates the default no-device remediation
func NewEmulatorRemediation(emulator EmulatorProvisioner, prompter gateways.Prompter) *EmulatorRemediation {
	return &EmulatorRemediation{emulator: emulator, prompter: prompter}
}

// Remediate provisions the emulator or, on answer 2, returns so discovery runs again
func (r *EmulatorRemediation) Remediate(ctx context.Context, tools entities.ToolPaths, interactive bool) error {
	if interactive {
		answer, err := r.prompter.Prompt(noDevicePrompt)
		if err != nil {
			return fmt.Errorf("%w: %v", entities.ErrUserAbort, err)
		}
		if strings.TrimSpace(answer) != "1" {
			return nil
		}
	}
	return r.emulator.Provision(ctx, tools)
}
