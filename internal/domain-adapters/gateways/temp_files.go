package gateways

import (
	"fmt"
	"os"
	"path/filepath"
)

// TempFiles hands out scratch paths under the system temp directory
type TempFiles struct {
	dir     string
	pattern string
}

// NewTempFiles creates a temp file provider; dir "" means os.TempDir()
func NewTempFiles(dir string) *TempFiles {
	return &TempFiles{dir: dir, pattern: "forgedroid-*"}
}

// WithTempFile calls fn with a path that does not exist yet inside a private
// directory. The directory and anything written there are removed afterwards.
func (t *TempFiles) WithTempFile(fn func(path string) error) error {
	dir, err := os.MkdirTemp(t.dir, t.pattern)
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	//nolint:errcheck // Best-effort cleanup of scratch space
	defer os.RemoveAll(dir)

	return fn(filepath.Join(dir, "file.apk"))
}
