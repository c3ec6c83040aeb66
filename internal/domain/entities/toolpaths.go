package entities

import "path/filepath"

// ToolPaths holds resolved locations of the SDK and the tools it ships.
// Built once per session and passed by value; never mutated afterwards.
type ToolPaths struct {
	Android string
	ADB     string
	AAPT    string
	SDK     string
}

// NewToolPathsFromSDK derives tool locations from an SDK root directory
func NewToolPathsFromSDK(sdk, goos string) ToolPaths {
	android := "android"
	if goos == "windows" {
		android = "android.bat"
	}
	return ToolPaths{
		Android: absPath(filepath.Join(sdk, "tools", android)),
		ADB:     absPath(filepath.Join(sdk, "platform-tools", "adb")),
		AAPT:    absPath(filepath.Join(sdk, "platform-tools", "aapt")),
		SDK:     sdk,
	}
}

// Zipalign returns the path of the zipalign tool
func (p ToolPaths) Zipalign() string {
	return filepath.Join(p.SDK, "tools", "zipalign")
}

// Emulator returns the path of the emulator binary
func (p ToolPaths) Emulator() string {
	return filepath.Join(p.SDK, "tools", "emulator")
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
