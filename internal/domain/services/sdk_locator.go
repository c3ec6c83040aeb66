package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ochairo/forgedroid/internal/domain/entities"
	"github.com/ochairo/forgedroid/internal/domain/interfaces"
	"github.com/ochairo/forgedroid/internal/domain/interfaces/gateways"
)

// DefaultSDKDownloadBase serves per-OS SDK archives under /windows, /macosx and /linux
const DefaultSDKDownloadBase = "https://forgedroid.io/redirect/android"

// sdkUpdateFilter selects the SDK components fetched after an automatic install
const sdkUpdateFilter = "platform-tool,tool,android-8"

// DefaultSDKSearchPaths returns the conventional SDK install locations, in search order
func DefaultSDKSearchPaths(home string) []string {
	return []string{
		"C:/Program Files (x86)/Android/android-sdk/",
		"C:/Program Files/Android/android-sdk/",
		"C:/Android/android-sdk/",
		"C:/Android/android-sdk-windows/",
		"C:/android-sdk-windows/",
		"/Applications/android-sdk-macosx",
		filepath.Join(home, ".forgedroid", "android-sdk-linux"),
	}
}

// DefaultHostCapabilities returns the automatic-install table keyed by GOOS
func DefaultHostCapabilities(home, downloadBase string) map[string]entities.HostCapability {
	if downloadBase == "" {
		downloadBase = DefaultSDKDownloadBase
	}
	base := strings.TrimSuffix(downloadBase, "/")
	forgeDir := filepath.Join(home, ".forgedroid")
	return map[string]entities.HostCapability{
		"windows": {
			Archive:       entities.SDKArchive{URL: base + "/windows", Format: entities.ArchiveZip},
			ExtractTarget: `C:\`,
			SDKRoot:       `C:\android-sdk-windows`,
		},
		"darwin": {
			Archive:       entities.SDKArchive{URL: base + "/macosx", Format: entities.ArchiveZip},
			ExtractTarget: "/Applications",
			SDKRoot:       "/Applications/android-sdk-macosx",
		},
		"linux": {
			Archive:       entities.SDKArchive{URL: base + "/linux", Format: entities.ArchiveTarGz},
			ExtractTarget: forgeDir,
			SDKRoot:       filepath.Join(forgeDir, "android-sdk-linux"),
		},
	}
}

// SDKUpdater fetches SDK components after the base SDK is unpacked
type SDKUpdater interface {
	Update(ctx context.Context, tools entities.ToolPaths) error
}

// SDKLocatorConfig configures where the SDK is searched for and how it is installed
type SDKLocatorConfig struct {
	SearchPaths  []string
	Capabilities map[string]entities.HostCapability
	GOOS         string
}

// SDKLocator finds an installed SDK, offering an automatic install when interactive
type SDKLocator struct {
	installer gateways.SDKInstaller
	updater   SDKUpdater
	prompter  gateways.Prompter
	config    SDKLocatorConfig
	isDir     func(string) bool
	logger    interfaces.Logger
}

// NewSDKLocator creates an SDK locator
func NewSDKLocator(
	installer gateways.SDKInstaller,
	updater SDKUpdater,
	prompter gateways.Prompter,
	config SDKLocatorConfig,
	logger interfaces.Logger,
) *SDKLocator {
	if config.GOOS == "" {
		config.GOOS = runtime.GOOS
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &SDKLocator{
		installer: installer,
		updater:   updater,
		prompter:  prompter,
		config:    config,
		isDir:     isDirectory,
		logger:    logger,
	}
}

// Locate returns the SDK root. explicitDir, when set, is checked first.
func (l *SDKLocator) Locate(ctx context.Context, explicitDir string, interactive bool) (string, error) {
	if dir, ok := l.search(explicitDir); ok {
		return dir, nil
	}

	if !interactive {
		return "", fmt.Errorf("%w: no Android SDK found, please set [android] sdk in your tool config or pass --android.sdk", entities.ErrConfiguration)
	}

	capability, ok := l.config.Capabilities[l.config.GOOS]
	if !ok {
		return "", fmt.Errorf("%w: no Android SDK found, please specify with the --android.sdk flag", entities.ErrToolNotFound)
	}

	install, err := l.shouldInstall(capability.SDKRoot)
	if err != nil {
		return "", err
	}
	if !install {
		return "", fmt.Errorf("%w: no Android SDK found: please install one and use the --android.sdk flag", entities.ErrToolNotFound)
	}

	if err := l.install(ctx, capability); err != nil {
		l.logger.Error("automatic SDK install failed", interfaces.F("error", err))
		return "", fmt.Errorf("%w: please install manually and specify with the --android.sdk flag: %v", entities.ErrSDKInstallFailed, err)
	}
	l.logger.Info("Android SDK update complete")

	if dir, ok := l.search(explicitDir); ok {
		return dir, nil
	}
	return "", fmt.Errorf("%w: SDK not found at %s after install", entities.ErrSDKInstallFailed, capability.SDKRoot)
}

func (l *SDKLocator) search(explicitDir string) (string, bool) {
	candidates := l.config.SearchPaths
	if explicitDir != "" {
		candidates = append([]string{explicitDir}, candidates...)
	}
	for _, dir := range candidates {
		if l.isDir(dir) {
			return dir, true
		}
	}
	return "", false
}

func (l *SDKLocator) shouldInstall(sdkPath string) (bool, error) {
	answer, err := l.prompter.Prompt(fmt.Sprintf(`
No Android SDK found, would you like to:

(1) Attempt to download and install the SDK automatically to %s, or,
(2) Install the SDK yourself and rerun this command with the --android.sdk option to specify its location.

Please enter 1 or 2: `, sdkPath))
	if err != nil {
		return false, fmt.Errorf("%w: %v", entities.ErrUserAbort, err)
	}
	return strings.TrimSpace(answer) == "1", nil
}

func (l *SDKLocator) install(ctx context.Context, capability entities.HostCapability) error {
	l.logger.Info("Downloading Android SDK (about 30MB, may take some time)")
	if err := l.installer.FetchAndExtract(ctx, capability.Archive, capability.ExtractTarget); err != nil {
		return err
	}
	return l.updater.Update(ctx, entities.NewToolPathsFromSDK(capability.SDKRoot, l.config.GOOS))
}

// SDKComponentUpdater runs the SDK's own updater. The updater spawns its own
// adb server which locks platform-tools, so adb is killed on every poll.
type SDKComponentUpdater struct {
	runner       gateways.ProcessRunner
	pollInterval time.Duration
	logger       interfaces.Logger
}

// NewSDKComponentUpdater creates an SDK component updater
func NewSDKComponentUpdater(runner gateways.ProcessRunner, logger interfaces.Logger) *SDKComponentUpdater {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &SDKComponentUpdater{
		runner:       runner,
		pollInterval: 5 * time.Second,
		logger:       logger,
	}
}

// Update fetches platform-tools, tools and the android-8 platform
func (u *SDKComponentUpdater) Update(ctx context.Context, tools entities.ToolPaths) error {
	u.logger.Info("Updating SDK and downloading required Android platform (about 90MB, may take some time)")
	proc, err := u.runner.Start(ctx,
		entities.NewCommand(tools.Android, "update", "sdk", "--no-ui", "--filter", sdkUpdateFilter),
		gateways.StartOptions{})
	if err != nil {
		return err
	}

	ticker := time.NewTicker(u.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-proc.Done():
			return proc.Wait()
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := u.runner.Run(ctx, entities.NewCommand(tools.ADB, "kill-server")); err != nil {
				u.logger.Debug("adb kill-server unavailable", interfaces.F("error", err))
			}
		}
	}
}

// isDirectory checks if a path is a directory
func isDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
