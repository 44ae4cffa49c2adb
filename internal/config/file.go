package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore persists settings as YAML. The file is re-read on every call so
// edits made by other processes are picked up without a restart.
type FileStore struct {
	path string
	mu   sync.Mutex // serializes writers in this process
}

// NewFileStore returns a store backed by the YAML file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Settings reads the file. A missing file yields zero settings.
func (f *FileStore) Settings(ctx context.Context) (Settings, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("cannot read %s: %w", f.path, err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("cannot parse %s: %w", f.path, err)
	}
	return s, nil
}

// SaveSettings writes the file with 0600 permissions since it holds the secret.
func (f *FileStore) SaveSettings(ctx context.Context, s Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	return os.Rename(tmp, f.path)
}
