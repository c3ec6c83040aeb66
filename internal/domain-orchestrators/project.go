// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"path/filepath"
	"runtime"

	"github.com/ochairo/forgedroid/internal/domain/entities"
	"github.com/ochairo/forgedroid/internal/domain/interfaces/repositories"
)

// Project layout, relative to the project directory
const (
	templateLibDir = ".template/lib"
	devDir         = "development/android"
	releaseDir     = "release/android"
)

// Project is the build context a workflow runs against
type Project struct {
	// Dir is the project directory; relative paths in config resolve against it
	Dir   string
	Store repositories.ProjectRepository
}

// Name returns the project's display name
func (p Project) Name() string {
	name, _ := p.Store.Get(entities.KeyProjectName)
	return name
}

// LibDir holds the platform APK, signer jar and debug keystore
func (p Project) LibDir() string {
	return filepath.Join(p.Dir, filepath.FromSlash(templateLibDir))
}

// DevDir holds the manifest, resources and assets
func (p Project) DevDir() string {
	return filepath.Join(p.Dir, filepath.FromSlash(devDir))
}

// resolve makes a config-supplied path absolute against the project directory
func (p Project) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Clean(filepath.Join(p.Dir, path))
}

// SDKLocator interface for locating or installing the Android SDK
type SDKLocator interface {
	Locate(ctx context.Context, explicitDir string, interactive bool) (string, error)
}

// JavaLocator interface for finding the JRE used by the APK signer
type JavaLocator interface {
	Locate(ctx context.Context) (string, error)
}

// PackageBuilder interface for the compile, sign and align pipeline
type PackageBuilder interface {
	Build(ctx context.Context, req entities.BuildRequest) (string, error)
}

// PackageNamer interface for the stable per-project package identifier
type PackageNamer interface {
	PackageName(store repositories.ConfigStore) string
}

// toolchain is what every workflow resolves before building
type toolchain struct {
	tools   entities.ToolPaths
	javaBin string
}

func resolveToolchain(ctx context.Context, sdk SDKLocator, java JavaLocator, project Project, explicitSDK string, interactive bool, goos string) (toolchain, error) {
	if goos == "" {
		goos = runtime.GOOS
	}
	root, err := sdk.Locate(ctx, project.resolve(explicitSDK), interactive)
	if err != nil {
		return toolchain{}, err
	}
	javaBin, err := java.Locate(ctx)
	if err != nil {
		return toolchain{}, err
	}
	return toolchain{tools: entities.NewToolPathsFromSDK(root, goos), javaBin: javaBin}, nil
}

// packageName returns the project's identifier, persisting it when newly generated
func packageName(namer PackageNamer, project Project) (string, error) {
	name := namer.PackageName(project.Store)
	if err := project.Store.Save(); err != nil {
		return "", err
	}
	return name, nil
}
