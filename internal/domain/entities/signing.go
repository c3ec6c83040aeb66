package entities

import "fmt"

// SigningProfile holds the keystore credentials used to sign a release package
type SigningProfile struct {
	Keystore  string
	StorePass string
	KeyAlias  string
	KeyPass   string
}

// Debug signing credentials for the keystore bundled in the template lib dir
const (
	DebugKeystoreName = "debug.keystore"
	DebugStorePass    = "android"
	DebugKeyAlias     = "androiddebugkey"
	DebugKeyPass      = "android"
)

// DebugSigningProfile returns the fixed debug profile for a template lib dir
func DebugSigningProfile(keystore string) SigningProfile {
	return SigningProfile{
		Keystore:  keystore,
		StorePass: DebugStorePass,
		KeyAlias:  DebugKeyAlias,
		KeyPass:   DebugKeyPass,
	}
}

// SigningField describes one credential of a SigningProfile
type SigningField struct {
	Name        string
	Description string
	Secret      bool
}

// SigningFields lists the profile credentials in prompt order
var SigningFields = []SigningField{
	{Name: "keystore", Description: "the location of your release keystore", Secret: false},
	{Name: "storepass", Description: "the password of your release keystore", Secret: true},
	{Name: "keyalias", Description: "the alias of your release key", Secret: false},
	{Name: "keypass", Description: "the password for your release key", Secret: true},
}

// Get returns a credential by field name
func (p *SigningProfile) Get(name string) string {
	switch name {
	case "keystore":
		return p.Keystore
	case "storepass":
		return p.StorePass
	case "keyalias":
		return p.KeyAlias
	case "keypass":
		return p.KeyPass
	}
	return ""
}

// Set assigns a credential by field name
func (p *SigningProfile) Set(name, value string) {
	switch name {
	case "keystore":
		p.Keystore = value
	case "storepass":
		p.StorePass = value
	case "keyalias":
		p.KeyAlias = value
	case "keypass":
		p.KeyPass = value
	}
}

// Missing returns the names of empty credentials
func (p *SigningProfile) Missing() []string {
	var missing []string
	for _, f := range SigningFields {
		if p.Get(f.Name) == "" {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

// Complete reports whether all four credentials are set
func (p *SigningProfile) Complete() bool {
	return len(p.Missing()) == 0
}

// Secrets returns the secret values for command-line redaction
func (p *SigningProfile) Secrets() []string {
	return []string{p.StorePass, p.KeyPass}
}

// String masks the passwords
func (p SigningProfile) String() string {
	return fmt.Sprintf("SigningProfile{keystore=%s alias=%s storepass=%s keypass=%s}",
		p.Keystore, p.KeyAlias, mask(p.StorePass), mask(p.KeyPass))
}

// GoString masks the passwords for %#v as well
func (p SigningProfile) GoString() string {
	return p.String()
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return redacted
}
