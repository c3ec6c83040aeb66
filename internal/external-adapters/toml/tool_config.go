// Package toml loads the operator's tool settings file.
package toml

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ochairo/forgedroid/internal/domain/entities"
)

// ToolConfig is the operator-level configuration for a build session
type ToolConfig struct {
	Interactive bool
	// SDK is an explicit Android SDK directory; empty means search
	SDK     string
	Profile entities.SigningProfile
	// GPGKey is an armored private key file used to sign release artifacts
	GPGKey        string
	GPGPassphrase string
}

// DefaultToolConfig returns settings for an interactive session with no overrides
func DefaultToolConfig() ToolConfig {
	return ToolConfig{Interactive: true}
}

type fileConfig struct {
	General struct {
		Interactive bool `toml:"interactive"`
	} `toml:"general"`
	Android struct {
		SDK     string `toml:"sdk"`
		Profile struct {
			Keystore  string `toml:"keystore"`
			StorePass string `toml:"storepass"`
			KeyAlias  string `toml:"keyalias"`
			KeyPass   string `toml:"keypass"`
		} `toml:"profile"`
	} `toml:"android"`
	Release struct {
		GPGKey        string `toml:"gpg_key"`
		GPGPassphrase string `toml:"gpg_passphrase"`
	} `toml:"release"`
}

// LoadToolConfig reads path over the defaults. An empty path returns defaults.
func LoadToolConfig(path string) (ToolConfig, error) {
	cfg := DefaultToolConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return ToolConfig{}, fmt.Errorf("%w: load tool config: %v", entities.ErrConfiguration, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return ToolConfig{}, fmt.Errorf("%w: unknown keys in %s: %s",
			entities.ErrConfiguration, path, strings.Join(keys, ", "))
	}

	if meta.IsDefined("general", "interactive") {
		cfg.Interactive = raw.General.Interactive
	}
	cfg.SDK = strings.TrimSpace(raw.Android.SDK)
	cfg.Profile = entities.SigningProfile{
		Keystore:  strings.TrimSpace(raw.Android.Profile.Keystore),
		StorePass: raw.Android.Profile.StorePass,
		KeyAlias:  strings.TrimSpace(raw.Android.Profile.KeyAlias),
		KeyPass:   raw.Android.Profile.KeyPass,
	}
	cfg.GPGKey = strings.TrimSpace(raw.Release.GPGKey)
	cfg.GPGPassphrase = raw.Release.GPGPassphrase
	return cfg, nil
}
