package toml

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/forgedroid/internal/domain/entities"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "forgedroid.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadToolConfig_Defaults(t *testing.T) {
	cfg, err := LoadToolConfig("")
	require.NoError(t, err)
	assert.True(t, cfg.Interactive)
	assert.Empty(t, cfg.SDK)
	assert.False(t, cfg.Profile.Complete())
}

func TestLoadToolConfig_Full(t *testing.T) {
	path := writeConfig(t, `
[general]
interactive = false

[android]
sdk = "/opt/android-sdk"

[android.profile]
keystore = "keys/release.keystore"
storepass = "s3cret"
keyalias = "release"
keypass = "k3y"

[release]
gpg_key = "signing.asc"
gpg_passphrase = "pgp"
`)

	cfg, err := LoadToolConfig(path)
	require.NoError(t, err)

	assert.False(t, cfg.Interactive)
	assert.Equal(t, "/opt/android-sdk", cfg.SDK)
	assert.Equal(t, entities.SigningProfile{
		Keystore:  "keys/release.keystore",
		StorePass: "s3cret",
		KeyAlias:  "release",
		KeyPass:   "k3y",
	}, cfg.Profile)
	assert.Equal(t, "signing.asc", cfg.GPGKey)
	assert.Equal(t, "pgp", cfg.GPGPassphrase)
}

func TestLoadToolConfig_InteractiveDefaultsWhenUnset(t *testing.T) {
	path := writeConfig(t, "[android]\nsdk = \"/sdk\"\n")

	cfg, err := LoadToolConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Interactive)
}

func TestLoadToolConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed", content: "[android\nsdk = "},
		{name: "unknown key", content: "[android]\nsdk_path = \"/sdk\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadToolConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, entities.ErrConfiguration))
		})
	}

	_, err := LoadToolConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, errors.Is(err, entities.ErrConfiguration))
}
