// Package yaml provides the YAML-backed project configuration store.
package yaml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProjectFileName is the project configuration file inside a project directory
const ProjectFileName = "forgedroid.yml"

// ProjectStore implements repositories.ProjectRepository on a YAML file.
// Keys are dotted paths into the document tree.
type ProjectStore struct {
	path  string
	root  map[string]interface{}
	dirty bool
}

// LoadProjectStore reads <projectDir>/forgedroid.yml. A missing file yields an
// empty store that Save will create.
func LoadProjectStore(projectDir string) (*ProjectStore, error) {
	path := filepath.Join(projectDir, ProjectFileName)
	s := &ProjectStore{path: path, root: map[string]interface{}{}}

	//nolint:gosec // G304: path is the project's own config file
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read project config: %w", err)
	}
	return s, s.parse(data)
}

// ParseProjectStore builds a store from YAML content; path is used by Save
func ParseProjectStore(path string, data []byte) (*ProjectStore, error) {
	s := &ProjectStore{path: path, root: map[string]interface{}{}}
	return s, s.parse(data)
}

func (s *ProjectStore) parse(data []byte) error {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	if doc != nil {
		s.root = doc
	}
	return nil
}

// Path returns the backing file
func (s *ProjectStore) Path() string {
	return s.path
}

// Get returns the scalar at key
func (s *ProjectStore) Get(key string) (string, bool) {
	var node interface{} = s.root
	for _, part := range strings.Split(key, ".") {
		section, ok := node.(map[string]interface{})
		if !ok {
			return "", false
		}
		if node, ok = section[part]; !ok {
			return "", false
		}
	}
	return scalarString(node)
}

// Set stores value at key, replacing any non-map values on the way
func (s *ProjectStore) Set(key, value string) {
	parts := strings.Split(key, ".")
	section := s.root
	for _, part := range parts[:len(parts)-1] {
		next, ok := section[part].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			section[part] = next
		}
		section = next
	}
	last := parts[len(parts)-1]
	if current, ok := scalarString(section[last]); ok && current == value {
		return
	}
	section[last] = value
	s.dirty = true
}

// Save writes the document back when it changed
func (s *ProjectStore) Save() error {
	if !s.dirty {
		return nil
	}
	data, err := yaml.Marshal(s.root)
	if err != nil {
		return fmt.Errorf("failed to encode project config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write project config: %w", err)
	}
	s.dirty = false
	return nil
}

func scalarString(v interface{}) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case map[string]interface{}, []interface{}:
		return "", false
	default:
		return fmt.Sprint(val), true
	}
}
