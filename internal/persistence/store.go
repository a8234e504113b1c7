// Package persistence provides a key-value artifact store for fitted models.
package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yourusername/fightprob/internal/models"
)

// Store abstracts saving and loading named model artifacts. Load fails
// with models.ErrMissingArtifact when the artifact does not exist.
type Store interface {
	Save(name string, artifact any) error
	Load(name string, out any) error
	Exists(name string) bool
}

// FileStore persists artifacts as indented JSON files under a root
// directory, one file per artifact, so fitted models stay human-diffable.
type FileStore struct {
	root string
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory %s: %w", dir, err)
	}
	return &FileStore{root: dir}, nil
}

func (s *FileStore) path(name string) string {
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	return filepath.Join(s.root, name)
}

// Save writes the artifact as indented JSON.
func (s *FileStore) Save(name string, artifact any) error {
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode artifact %s: %w", name, err)
	}
	path := s.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", name, err)
	}
	return nil
}

// Load reads a previously saved artifact into out.
func (s *FileStore) Load(name string, out any) error {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", models.ErrMissingArtifact, name)
		}
		return fmt.Errorf("failed to read artifact %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode artifact %s: %w", name, err)
	}
	return nil
}

// Exists reports whether the named artifact is present.
func (s *FileStore) Exists(name string) bool {
	_, err := os.Stat(s.path(name))
	return err == nil
}
