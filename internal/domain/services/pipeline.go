package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ochairo/forgedroid/internal/domain/entities"
	"github.com/ochairo/forgedroid/internal/domain/interfaces"
	"github.com/ochairo/forgedroid/internal/domain/interfaces/gateways"
)

// Template library files
const (
	platformAPKName = "android-platform.apk"
	signerJarName   = "apk-signer.jar"
)

// Pipeline compiles, signs and aligns an APK. Each stage writes into its own
// temp file; only the final aligned file is moved to the output path.
type Pipeline struct {
	shell  gateways.ShellRunner
	temp   gateways.TempFiles
	logger interfaces.Logger
}

// NewPipeline creates a build pipeline
func NewPipeline(shell gateways.ShellRunner, temp gateways.TempFiles, logger interfaces.Logger) *Pipeline {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &Pipeline{
		shell:  shell,
		temp:   temp,
		logger: logger,
	}
}

// Build runs the three stages and returns req.OutputPath
func (p *Pipeline) Build(ctx context.Context, req entities.BuildRequest) (string, error) {
	if req.OutputPath == "" {
		return "", fmt.Errorf("%w: no output path given", entities.ErrConfiguration)
	}

	err := p.temp.WithTempFile(func(unsigned string) error {
		if err := p.compile(ctx, req, unsigned); err != nil {
			return fmt.Errorf("compile: %w", err)
		}
		return p.temp.WithTempFile(func(signed string) error {
			if err := p.sign(ctx, req, unsigned, signed); err != nil {
				return fmt.Errorf("sign: %w", err)
			}
			return p.temp.WithTempFile(func(aligned string) error {
				if err := p.align(ctx, req, signed, aligned); err != nil {
					return fmt.Errorf("align: %w", err)
				}
				return moveFile(aligned, req.OutputPath)
			})
		})
	})
	if err != nil {
		return "", err
	}
	return req.OutputPath, nil
}

func (p *Pipeline) compile(ctx context.Context, req entities.BuildRequest, out string) error {
	p.logger.Info("Creating APK with aapt")
	cmd := entities.NewCommand(req.Tools.AAPT,
		"p",
		"-F", out,
		"-S", filepath.Join(req.DevDir, "res"),
		"-M", filepath.Join(req.DevDir, "AndroidManifest.xml"),
		"-I", filepath.Join(req.LibDir, platformAPKName),
		"-A", filepath.Join(req.DevDir, "assets"),
		"--rename-manifest-package", req.PackageName,
		"-f", filepath.Join(req.DevDir, "output"),
	)
	_, err := p.shell.RunShell(ctx, interfaces.LevelDebug, cmd)
	return err
}

func (p *Pipeline) sign(ctx context.Context, req entities.BuildRequest, in, out string) error {
	profile := req.Signing
	if req.Mode == entities.SigningRelease {
		p.logger.Info("Signing APK with your release key")
	} else {
		p.logger.Info("Signing APK with a debug key")
		profile = entities.DebugSigningProfile(filepath.Join(req.LibDir, entities.DebugKeystoreName))
	}

	java := "java"
	if req.JavaBin != "" {
		java = filepath.Join(req.JavaBin, "java")
	}
	cmd := entities.NewCommand(java,
		"-jar", filepath.Join(req.LibDir, signerJarName),
		"--keystore", profile.Keystore,
		"--storepass", profile.StorePass,
		"--keyalias", profile.KeyAlias,
		"--keypass", profile.KeyPass,
		"--out", out,
		in,
	)
	cmd.Redact = profile.Secrets()
	_, err := p.shell.RunShell(ctx, interfaces.LevelDebug, cmd)
	return err
}

func (p *Pipeline) align(ctx context.Context, req entities.BuildRequest, in, out string) error {
	p.logger.Info("Aligning apk")
	_, err := p.shell.RunShell(ctx, interfaces.LevelDebug,
		entities.NewCommand(req.Tools.Zipalign(), "-v", "4", in, out))
	return err
}

// moveFile publishes src at dst. A copy across filesystems goes through a
// sibling temp file so dst is never left half-written.
func moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	//nolint:gosec // G304: src is a pipeline temp file
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open aligned apk: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".forgedroid-*.apk")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to publish output file: %w", err)
	}
	return nil
}
