package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ochairo/forgedroid/internal/domain/entities"
	"github.com/ochairo/forgedroid/internal/domain/interfaces"
	"github.com/ochairo/forgedroid/internal/domain/interfaces/gateways"
)

// DefaultJRELocations are checked when java is not on PATH
var DefaultJRELocations = []string{
	`C:\Program Files\Java\jre7`,
	`C:\Program Files\Java\jre6`,
	`C:\Program Files (x86)\Java\jre7`,
	`C:\Program Files (x86)\Java\jre6`,
}

// JavaLocator finds a Java runtime for the APK signer
type JavaLocator struct {
	runner     gateways.ProcessRunner
	candidates []string
	isDir      func(string) bool
	logger     interfaces.Logger
}

// NewJavaLocator creates a Java locator searching candidates after PATH
func NewJavaLocator(runner gateways.ProcessRunner, candidates []string, logger interfaces.Logger) *JavaLocator {
	if candidates == nil {
		candidates = DefaultJRELocations
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &JavaLocator{
		runner:     runner,
		candidates: candidates,
		isDir:      isDirectory,
		logger:     logger,
	}
}

// Locate returns the JRE bin directory, or "" when java on PATH works
func (j *JavaLocator) Locate(ctx context.Context) (string, error) {
	result, err := j.runner.Run(ctx, entities.NewCommand("java", "-version"))
	if err == nil && result.Success() {
		return "", nil
	}

	for _, dir := range j.candidates {
		if j.isDir(dir) {
			j.logger.Debug("using JRE", interfaces.F("path", dir))
			return filepath.Join(dir, "bin"), nil
		}
	}

	return "", fmt.Errorf("%w: Java must be installed and available in your path", entities.ErrToolNotFound)
}
