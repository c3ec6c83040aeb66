package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ochairo/forgedroid/internal/domain/entities"
)

// DetachedSigner writes a detached signature of message to w
type DetachedSigner interface {
	SignDetached(w io.Writer, message io.Reader) error
}

// SignatureVerifier checks a detached signature file against its artifact
type SignatureVerifier interface {
	VerifyFile(filePath, sigPath string) error
}

// ReleaseArtifactsService writes the checksum and optional signature that
// accompany a release APK
type ReleaseArtifactsService struct {
	signer DetachedSigner
}

// NewReleaseArtifactsService creates a release artifacts service; signer may be nil
func NewReleaseArtifactsService(signer DetachedSigner) *ReleaseArtifactsService {
	return &ReleaseArtifactsService{signer: signer}
}

// Generate writes <apk>.sha256 and, when a signer is configured, <apk>.asc
func (s *ReleaseArtifactsService) Generate(artifact *entities.Artifact) error {
	sumPath, err := s.GenerateSHA256(artifact.Path)
	if err != nil {
		return err
	}
	artifact.SHA256Path = sumPath

	if s.signer == nil {
		return nil
	}
	sigPath, err := s.GenerateSignature(artifact.Path)
	if err != nil {
		return err
	}
	artifact.SigPath = sigPath
	return nil
}

// GenerateSHA256 generates SHA256 checksum file
func (s *ReleaseArtifactsService) GenerateSHA256(filePath string) (string, error) {
	hash, err := s.computeSHA256(filePath)
	if err != nil {
		return "", err
	}

	checksumPath := filePath + ".sha256"
	content := fmt.Sprintf("%s  %s\n", hash, filepath.Base(filePath))

	if err := os.WriteFile(checksumPath, []byte(content), 0600); err != nil {
		return "", fmt.Errorf("failed to write SHA256 file: %w", err)
	}

	return checksumPath, nil
}

// GenerateSignature writes an armored detached signature next to filePath
func (s *ReleaseArtifactsService) GenerateSignature(filePath string) (string, error) {
	//nolint:gosec // G304: filePath is the artifact just produced by the pipeline
	in, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer in.Close()

	sigPath := filePath + ".asc"
	//nolint:gosec // G304: sigPath is derived from the artifact path
	out, err := os.OpenFile(sigPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to create signature file: %w", err)
	}

	if err := s.signer.SignDetached(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(sigPath)
		return "", fmt.Errorf("failed to sign artifact: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close signature file: %w", err)
	}

	// Signers that can verify check their own output before it is published
	if verifier, ok := s.signer.(SignatureVerifier); ok {
		if err := verifier.VerifyFile(filePath, sigPath); err != nil {
			_ = os.Remove(sigPath)
			return "", err
		}
	}
	return sigPath, nil
}

func (s *ReleaseArtifactsService) computeSHA256(filePath string) (string, error) {
	//nolint:gosec // G304: filePath is the artifact just produced by the pipeline
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
