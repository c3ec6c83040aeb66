package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ochairo/forgedroid/internal/domain/entities"
	"github.com/ochairo/forgedroid/internal/domain/interfaces"
	"github.com/ochairo/forgedroid/internal/domain/interfaces/gateways"
	"github.com/ochairo/forgedroid/internal/domain/services"
)

// launchActivity is the entry component of every generated app
const launchActivity = "io.forgedroid.android.template.LoadActivity"

// DaemonStarter interface for bringing up the adb server
type DaemonStarter interface {
	Start(ctx context.Context, tools entities.ToolPaths) error
}

// DeviceDiscoverer interface for listing attached devices
type DeviceDiscoverer interface {
	Discover(ctx context.Context, tools entities.ToolPaths) (entities.DeviceList, error)
}

// Remediator is run when discovery found no device; the session then searches again
type Remediator interface {
	Remediate(ctx context.Context, tools entities.ToolPaths, interactive bool) error
}

// SessionConfig holds timeouts for the device-side steps
type SessionConfig struct {
	UninstallTimeout time.Duration
	InstallTimeout   time.Duration
	LaunchTimeout    time.Duration
	GOOS             string
}

// RunOptions are the operator's choices for one run
type RunOptions struct {
	SDK         string
	Device      string
	Interactive bool
	Purge       bool
}

// SessionOrchestrator builds the project, deploys it to a device and follows its log
type SessionOrchestrator struct {
	sdk        SDKLocator
	java       JavaLocator
	daemon     DaemonStarter
	discovery  DeviceDiscoverer
	remediator Remediator
	builder    PackageBuilder
	namer      PackageNamer
	supervisor services.CommandSupervisor
	shell      gateways.ShellRunner
	temp       gateways.TempFiles
	config     SessionConfig
	logger     interfaces.Logger
}

// SessionDeps groups the collaborators of a device session
type SessionDeps struct {
	SDK        SDKLocator
	Java       JavaLocator
	Daemon     DaemonStarter
	Discovery  DeviceDiscoverer
	Remediator Remediator
	Builder    PackageBuilder
	Namer      PackageNamer
	Supervisor services.CommandSupervisor
	Shell      gateways.ShellRunner
	Temp       gateways.TempFiles
}

// NewSessionOrchestrator creates a new device session orchestrator
func NewSessionOrchestrator(deps SessionDeps, config SessionConfig, logger interfaces.Logger) *SessionOrchestrator {
	if config.UninstallTimeout <= 0 {
		config.UninstallTimeout = 30 * time.Second
	}
	if config.InstallTimeout <= 0 {
		config.InstallTimeout = 60 * time.Second
	}
	if config.LaunchTimeout <= 0 {
		config.LaunchTimeout = 60 * time.Second
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &SessionOrchestrator{
		sdk:        deps.SDK,
		java:       deps.Java,
		daemon:     deps.Daemon,
		discovery:  deps.Discovery,
		remediator: deps.Remediator,
		builder:    deps.Builder,
		namer:      deps.Namer,
		supervisor: deps.Supervisor,
		shell:      deps.Shell,
		temp:       deps.Temp,
		config:     config,
		logger:     logger,
	}
}

// Run executes the device session. It returns once the log stream ends, which
// normally happens when ctx is cancelled.
func (o *SessionOrchestrator) Run(ctx context.Context, project Project, opts RunOptions) error {
	// Step 1: Locate SDK and Java
	tc, err := resolveToolchain(ctx, o.sdk, o.java, project, opts.SDK, opts.Interactive, o.config.GOOS)
	if err != nil {
		return err
	}

	// Step 2: Find a device, remediating until one shows up
	devices, err := o.awaitDevices(ctx, tc.tools, opts.Interactive)
	if err != nil {
		return err
	}

	// Step 3: Select device
	device, err := o.selectDevice(devices, opts.Device)
	if err != nil {
		return err
	}

	pkg, err := packageName(o.namer, project)
	if err != nil {
		return fmt.Errorf("failed to save package name: %w", err)
	}

	// Step 4: Build into a scratch file, deploy and follow the log
	o.logger.Info("Creating Android .apk file")
	return o.temp.WithTempFile(func(apk string) error {
		req := entities.BuildRequest{
			Tools:       tc.tools,
			PackageName: pkg,
			DevDir:      project.DevDir(),
			LibDir:      project.LibDir(),
			JavaBin:     tc.javaBin,
			Mode:        entities.SigningDebug,
			OutputPath:  apk,
		}
		if _, err := o.builder.Build(ctx, req); err != nil {
			return err
		}
		if err := o.deploy(ctx, tc.tools, device, pkg, apk, opts.Purge); err != nil {
			return err
		}
		return o.followLog(ctx, tc.tools, device)
	})
}

func (o *SessionOrchestrator) awaitDevices(ctx context.Context, tools entities.ToolPaths, interactive bool) (entities.DeviceList, error) {
	for {
		o.logger.Info("Starting ADB if not running")
		if err := o.daemon.Start(ctx, tools); err != nil {
			return nil, err
		}

		o.logger.Info("Looking for Android device")
		devices, err := o.discovery.Discover(ctx, tools)
		if err != nil {
			return nil, err
		}
		if !devices.Empty() {
			return devices, nil
		}

		if err := o.remediator.Remediate(ctx, tools, interactive); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

func (o *SessionOrchestrator) selectDevice(devices entities.DeviceList, requested string) (string, error) {
	if requested == "" {
		o.logger.Info("No android device specified, defaulting", interfaces.F("device", devices[0]))
		return devices[0], nil
	}
	if !devices.Contains(requested) {
		o.logger.Error("No such device", interfaces.F("device", requested))
		o.logger.Error("The available devices are", interfaces.F("devices", []string(devices)))
		return "", fmt.Errorf("%w: no such device %q, available devices: %s",
			entities.ErrConfiguration, requested, strings.Join(devices, ", "))
	}
	o.logger.Info("Using specified android device", interfaces.F("device", requested))
	return requested, nil
}

func (o *SessionOrchestrator) deploy(ctx context.Context, tools entities.ToolPaths, device, pkg, apk string, purge bool) error {
	if purge {
		o.logger.Info("Removing previous install", interfaces.F("package", pkg))
		_, err := o.supervisor.Supervise(ctx,
			entities.NewCommand(tools.ADB, "-s", device, "uninstall", pkg),
			o.config.UninstallTimeout, tools)
		switch {
		case errors.Is(err, entities.ErrCommunicationFailure):
			// Uninstalling an app that is not installed exits non-zero
			o.logger.Warn("Uninstall failed, continuing with install",
				interfaces.F("package", pkg),
				interfaces.F("device", device),
				interfaces.F("error", err))
		case err != nil:
			return err
		}
	}

	o.logger.Info("Installing apk")
	out, err := o.supervisor.Supervise(ctx,
		entities.NewCommand(tools.ADB, "-s", device, "install", "-r", apk),
		o.config.InstallTimeout, tools)
	if err != nil {
		return fmt.Errorf("install failed: %w", err)
	}
	o.logger.Debug(out)

	out, err = o.supervisor.Supervise(ctx,
		entities.NewCommand(tools.ADB, "-s", device, "shell", "am", "start", "-n", pkg+"/"+launchActivity),
		o.config.LaunchTimeout, tools)
	if err != nil {
		return fmt.Errorf("launch failed: %w", err)
	}
	o.logger.Debug(out)
	return nil
}

func (o *SessionOrchestrator) followLog(ctx context.Context, tools entities.ToolPaths, device string) error {
	o.logger.Info("Clearing android log")
	if _, err := o.shell.RunShell(ctx, interfaces.LevelInfo,
		entities.NewCommand(tools.ADB, "-s", device, "logcat", "-c")); err != nil {
		return err
	}

	o.logger.Info("Showing android log")
	_, err := o.shell.RunShell(ctx, interfaces.LevelInfo,
		entities.NewCommand(tools.ADB, "-s", device, "logcat", "WebCore:D", "ForgeDroid:D", "*:S"))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
