package services

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ochairo/forgedroid/internal/domain/entities"
)

func TestSigningResolver_Resolve_NonInteractiveIncomplete(t *testing.T) {
	full := entities.SigningProfile{Keystore: "release.keystore", StorePass: "sp", KeyAlias: "alias", KeyPass: "kp"}

	for _, field := range entities.SigningFields {
		t.Run("missing "+field.Name, func(t *testing.T) {
			profile := full
			profile.Set(field.Name, "")
			prompter := &scriptedPrompter{}
			r := NewSigningResolver(prompter)

			_, err := r.Resolve(profile, false, "/project")
			if !errors.Is(err, entities.ErrConfiguration) {
				t.Fatalf("Resolve() error = %v, want ErrConfiguration", err)
			}
			if !strings.Contains(err.Error(), field.Name) {
				t.Errorf("error should name %s: %v", field.Name, err)
			}
			if len(prompter.prompts)+len(prompter.secrets) != 0 {
				t.Error("non-interactive Resolve() must not prompt")
			}
		})
	}
}

func TestSigningResolver_Resolve_PromptsForMissing(t *testing.T) {
	// Empty answers are asked again
	prompter := &scriptedPrompter{answers: []string{"", "s3cret", "k3y"}}
	r := NewSigningResolver(prompter)

	got, err := r.Resolve(entities.SigningProfile{Keystore: "keys/release.keystore", KeyAlias: "release"}, true, "/project")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := entities.SigningProfile{
		Keystore:  filepath.Join("/project", "keys", "release.keystore"),
		StorePass: "s3cret",
		KeyAlias:  "release",
		KeyPass:   "k3y",
	}
	if got != want {
		t.Errorf("Resolve() = %#v, want %#v", got, want)
	}
	if len(prompter.prompts) != 0 {
		t.Errorf("supplied fields should not be prompted, got %v", prompter.prompts)
	}
	if len(prompter.secrets) != 3 {
		t.Errorf("secret prompts = %d, want 3", len(prompter.secrets))
	}
}

func TestSigningResolver_Resolve_PromptAborted(t *testing.T) {
	prompter := &scriptedPrompter{err: errors.New("EOF")}
	r := NewSigningResolver(prompter)

	_, err := r.Resolve(entities.SigningProfile{}, true, "/project")
	if !errors.Is(err, entities.ErrUserAbort) {
		t.Errorf("Resolve() error = %v, want ErrUserAbort", err)
	}
}

func TestSigningProfile_StringMasksSecrets(t *testing.T) {
	p := entities.SigningProfile{Keystore: "ks", StorePass: "hunter2", KeyAlias: "a", KeyPass: "swordfish"}
	for _, s := range []string{p.String(), p.GoString()} {
		if strings.Contains(s, "hunter2") || strings.Contains(s, "swordfish") {
			t.Errorf("formatted profile leaks a secret: %s", s)
		}
	}
}
