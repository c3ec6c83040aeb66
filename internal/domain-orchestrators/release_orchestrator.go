package orchestrators

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ochairo/forgedroid/internal/domain/entities"
	"github.com/ochairo/forgedroid/internal/domain/interfaces"
)

// SigningResolver interface for completing release credentials
type SigningResolver interface {
	Resolve(profile entities.SigningProfile, interactive bool, workDir string) (entities.SigningProfile, error)
}

// ArtifactsGenerator interface for the checksum and signature files of a release
type ArtifactsGenerator interface {
	Generate(artifact *entities.Artifact) error
}

// PackageOptions are the operator's choices for a release package
type PackageOptions struct {
	SDK         string
	Interactive bool
	Signing     entities.SigningProfile
}

// ReleaseOrchestrator produces a release-signed APK under release/android
type ReleaseOrchestrator struct {
	sdk       SDKLocator
	java      JavaLocator
	signing   SigningResolver
	builder   PackageBuilder
	namer     PackageNamer
	artifacts ArtifactsGenerator
	goos      string
	now       func() time.Time
	logger    interfaces.Logger
}

// NewReleaseOrchestrator creates a new release orchestrator; artifacts may be nil
func NewReleaseOrchestrator(
	sdk SDKLocator,
	java JavaLocator,
	signing SigningResolver,
	builder PackageBuilder,
	namer PackageNamer,
	artifacts ArtifactsGenerator,
	goos string,
	logger interfaces.Logger,
) *ReleaseOrchestrator {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &ReleaseOrchestrator{
		sdk:       sdk,
		java:      java,
		signing:   signing,
		builder:   builder,
		namer:     namer,
		artifacts: artifacts,
		goos:      goos,
		now:       time.Now,
		logger:    logger,
	}
}

var nonAlnum = regexp.MustCompile("[^a-z0-9]")

// ReleaseFileName returns <alnum lower-cased name>-<unix seconds>.apk
func ReleaseFileName(projectName string, at time.Time) string {
	return fmt.Sprintf("%s-%d.apk", nonAlnum.ReplaceAllString(strings.ToLower(projectName), ""), at.Unix())
}

// Package builds and signs a release APK
func (o *ReleaseOrchestrator) Package(ctx context.Context, project Project, opts PackageOptions) (*entities.Artifact, error) {
	// Step 1: Complete signing credentials before touching any tool
	profile, err := o.signing.Resolve(opts.Signing, opts.Interactive, project.Dir)
	if err != nil {
		return nil, err
	}

	// Step 2: Locate SDK and Java
	tc, err := resolveToolchain(ctx, o.sdk, o.java, project, opts.SDK, opts.Interactive, o.goos)
	if err != nil {
		return nil, err
	}

	// Step 3: Build
	o.logger.Info("Creating Android .apk file")
	pkg, err := packageName(o.namer, project)
	if err != nil {
		return nil, fmt.Errorf("failed to save package name: %w", err)
	}

	output := filepath.Join(project.Dir, filepath.FromSlash(releaseDir), ReleaseFileName(project.Name(), o.now()))
	path, err := o.builder.Build(ctx, entities.BuildRequest{
		Tools:       tc.tools,
		PackageName: pkg,
		DevDir:      project.DevDir(),
		LibDir:      project.LibDir(),
		JavaBin:     tc.javaBin,
		Mode:        entities.SigningRelease,
		Signing:     profile,
		OutputPath:  output,
	})
	if err != nil {
		return nil, err
	}

	artifact := &entities.Artifact{
		Name:        project.Name(),
		PackageName: pkg,
		Path:        path,
		Mode:        entities.SigningRelease,
	}

	// Step 4: Release artifacts
	if o.artifacts != nil {
		if err := o.artifacts.Generate(artifact); err != nil {
			return artifact, fmt.Errorf("failed to generate release artifacts: %w", err)
		}
	}

	o.logger.Info("created APK", interfaces.F("output", artifact.Path))
	return artifact, nil
}
