package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ochairo/forgedroid/internal/domain/entities"
	"github.com/ochairo/forgedroid/internal/domain/interfaces/gateways"
)

// SigningResolver completes a release SigningProfile from config and prompts
type SigningResolver struct {
	prompter gateways.Prompter
}

// NewSigningResolver creates a signing resolver
func NewSigningResolver(prompter gateways.Prompter) *SigningResolver {
	return &SigningResolver{prompter: prompter}
}

// Resolve fills missing credentials. Non-interactive callers must supply all
// four up front. The keystore path is resolved against workDir.
func (r *SigningResolver) Resolve(profile entities.SigningProfile, interactive bool, workDir string) (entities.SigningProfile, error) {
	if !interactive && !profile.Complete() {
		return profile, fmt.Errorf("%w: when running in non-interactive mode, keystore, storepass, keyalias and keypass must be supplied (missing: %s)",
			entities.ErrConfiguration, strings.Join(profile.Missing(), ", "))
	}

	if interactive {
		for _, field := range entities.SigningFields {
			if profile.Get(field.Name) != "" {
				continue
			}
			value, err := r.ask(field)
			if err != nil {
				return profile, err
			}
			profile.Set(field.Name, value)
		}
	}

	if !filepath.IsAbs(profile.Keystore) {
		profile.Keystore = filepath.Clean(filepath.Join(workDir, profile.Keystore))
	}
	return profile, nil
}

func (r *SigningResolver) ask(field entities.SigningField) (string, error) {
	msg := fmt.Sprintf("Please enter %s: ", field.Description)
	for {
		var (
			response string
			err      error
		)
		if field.Secret {
			response, err = r.prompter.PromptSecret(msg)
		} else {
			response, err = r.prompter.Prompt(msg)
		}
		if err != nil {
			return "", fmt.Errorf("%w: reading %s: %v", entities.ErrUserAbort, field.Name, err)
		}
		if response = strings.TrimSpace(response); response != "" {
			return response, nil
		}
	}
}
