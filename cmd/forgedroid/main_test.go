package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/forgedroid/internal/domain/entities"
	"github.com/ochairo/forgedroid/internal/external-adapters/toml"
)

func TestParseRunFlags(t *testing.T) {
	flags, err := parseRunFlags([]string{
		"--project", "app",
		"--android.device", "emulator-5554",
		"--android.purge",
		"--interactive=false",
	}, flag.ContinueOnError)
	require.NoError(t, err)

	assert.Equal(t, "app", flags.project)
	assert.Equal(t, "emulator-5554", flags.device)
	assert.True(t, flags.purge)
	assert.False(t, flags.interactive)
	assert.True(t, flags.interactiveSet)
}

func TestParseRunFlags_UnknownFlag(t *testing.T) {
	_, err := parseRunFlags([]string{"--android.serial", "x"}, flag.ContinueOnError)
	assert.Error(t, err)
}

func TestRunFlags_RunOptions(t *testing.T) {
	tool := toml.ToolConfig{Interactive: false, SDK: "sdk-from-config"}

	t.Run("config values apply without flags", func(t *testing.T) {
		flags, err := parseRunFlags(nil, flag.ContinueOnError)
		require.NoError(t, err)

		opts, err := flags.runOptions(tool)
		require.NoError(t, err)
		assert.False(t, opts.Interactive)
		assert.Equal(t, "sdk-from-config", opts.SDK)
		assert.False(t, opts.Purge)
	})

	t.Run("flags override config", func(t *testing.T) {
		flags, err := parseRunFlags([]string{"--interactive", "--android.sdk", "/opt/sdk"}, flag.ContinueOnError)
		require.NoError(t, err)

		opts, err := flags.runOptions(tool)
		require.NoError(t, err)
		assert.True(t, opts.Interactive)
		assert.Equal(t, filepath.Clean("/opt/sdk"), opts.SDK)
	})
}

func TestPackageFlags_PackageOptions(t *testing.T) {
	tool := toml.ToolConfig{
		Interactive: true,
		SDK:         "/opt/sdk",
		Profile:     entities.SigningProfile{Keystore: "release.keystore", KeyAlias: "release"},
	}

	flags, err := parsePackageFlags([]string{"--interactive=false"}, flag.ContinueOnError)
	require.NoError(t, err)

	opts := flags.packageOptions(tool)
	assert.False(t, opts.Interactive)
	assert.Equal(t, "/opt/sdk", opts.SDK)
	assert.Equal(t, "release.keystore", opts.Signing.Keystore)
}

func TestLoadToolConfig_ProjectDefault(t *testing.T) {
	dir := t.TempDir()

	cfg, err := loadToolConfig("", dir)
	require.NoError(t, err)
	assert.Equal(t, toml.DefaultToolConfig(), cfg)

	content := "[general]\ninteractive = false\n\n[android]\nsdk = \"/opt/sdk\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, toolConfigFileName), []byte(content), 0600))

	cfg, err = loadToolConfig("", dir)
	require.NoError(t, err)
	assert.False(t, cfg.Interactive)
	assert.Equal(t, "/opt/sdk", cfg.SDK)
}

func TestLoadToolConfig_ExplicitMissing(t *testing.T) {
	_, err := loadToolConfig(filepath.Join(t.TempDir(), "missing.toml"), t.TempDir())
	assert.ErrorIs(t, err, entities.ErrConfiguration)
}

func TestLoadProject(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "forgedroid.yml"), []byte("name: Demo\nuuid: abc\n"), 0600))

	project, err := loadProject(dir)
	require.NoError(t, err)
	assert.Equal(t, "Demo", project.Name())
	assert.True(t, filepath.IsAbs(project.Dir))
}
