// Package config loads process-level settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "FORGEDROID"

// Config holds environment-driven settings for a session.
type Config struct {
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"info"`
	LogDevelopment   bool          `envconfig:"LOG_DEV" default:"true"`
	ADBTimeout       time.Duration `envconfig:"ADB_TIMEOUT" default:"10s"`
	InstallTimeout   time.Duration `envconfig:"INSTALL_TIMEOUT" default:"60s"`
	UninstallTimeout time.Duration `envconfig:"UNINSTALL_TIMEOUT" default:"30s"`
	LaunchTimeout    time.Duration `envconfig:"LAUNCH_TIMEOUT" default:"60s"`
	BootTimeout      time.Duration `envconfig:"BOOT_TIMEOUT" default:"120s"`
	DiscoveryPause   time.Duration `envconfig:"DISCOVERY_PAUSE" default:"2s"`
	SDKDownloadBase  string        `envconfig:"SDK_DOWNLOAD_BASE" default:"https://forgedroid.io/redirect/android"`
}

// Load loads configuration from FORGEDROID_* environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
