// Package gpg signs release artifacts with OpenPGP detached signatures.
package gpg

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// Signer produces armored detached signatures using ProtonMail's go-crypto,
// a maintained fork of golang.org/x/crypto/openpgp
type Signer struct {
	entity  *openpgp.Entity
	keyring openpgp.EntityList
}

// LoadSignerFromFile reads an armored or binary private key and unlocks it
// with passphrase when it is encrypted
func LoadSignerFromFile(keyPath, passphrase string) (*Signer, error) {
	//nolint:gosec // G304: keyPath is the operator's configured signing key
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open key file: %w", err)
	}
	return NewSigner(data, passphrase)
}

// NewSigner builds a signer from key material
func NewSigner(keyData []byte, passphrase string) (*Signer, error) {
	keyring, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(keyData))
	if err != nil {
		keyring, err = openpgp.ReadKeyRing(bytes.NewReader(keyData))
		if err != nil {
			return nil, fmt.Errorf("failed to read key: %w", err)
		}
	}

	var entity *openpgp.Entity
	for _, e := range keyring {
		if e.PrivateKey != nil {
			entity = e
			break
		}
	}
	if entity == nil {
		return nil, errors.New("no private key found in key file")
	}

	if err := unlock(entity, []byte(passphrase)); err != nil {
		return nil, err
	}
	return &Signer{entity: entity, keyring: keyring}, nil
}

func unlock(e *openpgp.Entity, passphrase []byte) error {
	if e.PrivateKey.Encrypted {
		if len(passphrase) == 0 {
			return errors.New("signing key is encrypted and no passphrase was given")
		}
		if err := e.PrivateKey.Decrypt(passphrase); err != nil {
			return fmt.Errorf("failed to decrypt signing key: %w", err)
		}
	}
	for _, sub := range e.Subkeys {
		if sub.PrivateKey != nil && sub.PrivateKey.Encrypted {
			if err := sub.PrivateKey.Decrypt(passphrase); err != nil {
				return fmt.Errorf("failed to decrypt signing subkey: %w", err)
			}
		}
	}
	return nil
}

// Fingerprint returns the primary key fingerprint in upper-case hex
func (s *Signer) Fingerprint() string {
	return fmt.Sprintf("%X", s.entity.PrimaryKey.Fingerprint)
}

// SignDetached writes an armored detached signature of message to w
func (s *Signer) SignDetached(w io.Writer, message io.Reader) error {
	if err := openpgp.ArmoredDetachSign(w, s.entity, message, nil); err != nil {
		return fmt.Errorf("signing failed: %w", err)
	}
	return nil
}

// VerifyFile checks that sigPath is a valid signature of filePath by this key
func (s *Signer) VerifyFile(filePath, sigPath string) error {
	//nolint:gosec // G304: sigPath is the signature we just wrote
	sigFile, err := os.Open(sigPath)
	if err != nil {
		return fmt.Errorf("failed to open signature file: %w", err)
	}
	//nolint:errcheck // Defer close
	defer sigFile.Close()

	//nolint:gosec // G304: filePath is the signed artifact
	dataFile, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open data file: %w", err)
	}
	//nolint:errcheck // Defer close
	defer dataFile.Close()

	if _, err := openpgp.CheckArmoredDetachedSignature(s.keyring, dataFile, sigFile, nil); err != nil {
		return fmt.Errorf("signature verification failed: %w", err)
	}
	return nil
}
