package services

import (
	"context"
	"time"

	"github.com/ochairo/forgedroid/internal/domain/entities"
	"github.com/ochairo/forgedroid/internal/domain/interfaces"
)

// Discovery defaults
const (
	DiscoveryAttempts       = 3
	DefaultDevicesTimeout   = 10 * time.Second
	DefaultDiscoveryPause   = 2 * time.Second
	discoveryRestartAttempt = 3
)

// DiscoveryConfig holds timing for device discovery
type DiscoveryConfig struct {
	// Timeout bounds each "adb devices" call
	Timeout time.Duration
	// Pause is the settle time between attempts
	Pause time.Duration
}

// Discovery lists attached devices, retrying while none are reported
type Discovery struct {
	supervisor CommandSupervisor
	restarter  DaemonRestarter
	timeout    time.Duration
	pause      time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	logger     interfaces.Logger
}

// NewDiscovery creates a device discovery loop
func NewDiscovery(supervisor CommandSupervisor, restarter DaemonRestarter, config DiscoveryConfig, logger interfaces.Logger) *Discovery {
	if config.Timeout <= 0 {
		config.Timeout = DefaultDevicesTimeout
	}
	if config.Pause <= 0 {
		config.Pause = DefaultDiscoveryPause
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &Discovery{
		supervisor: supervisor,
		restarter:  restarter,
		timeout:    config.Timeout,
		pause:      config.Pause,
		sleep:      sleepContext,
		logger:     logger,
	}
}

// Discover returns attached device serials in reported order.
// The first retry is a plain wait; the daemon is restarted once, before the
// second retry. An empty result after all attempts is not an error.
func (d *Discovery) Discover(ctx context.Context, tools entities.ToolPaths) (entities.DeviceList, error) {
	devices := entities.DeviceList{}
	for attempt := 1; attempt <= DiscoveryAttempts; attempt++ {
		if attempt > 1 {
			d.logger.Debug("no devices found, checking again", interfaces.F("attempt", attempt))
			if err := d.sleep(ctx, d.pause); err != nil {
				return devices, err
			}
			if attempt == discoveryRestartAttempt {
				if err := d.restarter.Restart(ctx, tools); err != nil {
					d.logger.Warn("daemon restart failed", interfaces.F("error", err))
				}
			}
		}

		output, err := d.supervisor.Supervise(ctx, entities.NewCommand(tools.ADB, "devices"), d.timeout, tools)
		if err != nil {
			return devices, err
		}

		devices = entities.ParseDeviceList(output)
		if !devices.Empty() {
			return devices, nil
		}
	}
	return devices, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
