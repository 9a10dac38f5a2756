// File: tunable/io.go
package tunable

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LoadFile reads a manifest file and reconciles it into the spec: new keys are
// added and existing keys take the declared values, firing their bindings.
// The path is remembered for Reload, Save and AutoReload.
func (s *Spec) LoadFile(path string) error {
	_, err := s.loadFile(path)
	return err
}

// Reload re-reads the manifest file the spec was loaded from.
func (s *Spec) Reload() error {
	path := s.FilePath()
	if path == "" {
		return fmt.Errorf("spec %s was not loaded from a file", s.name)
	}
	_, err := s.loadFile(path)
	return err
}

// FilePath returns the manifest file the spec was loaded from, if any.
func (s *Spec) FilePath() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.filePath
}

// loadFile reads and imports a manifest, returning the changed keys.
func (s *Spec) loadFile(path string) ([]string, error) {
	data, err := readManifest(path)
	if err != nil {
		return nil, err
	}

	s.mutex.Lock()
	s.filePath = path
	s.mutex.Unlock()

	changed, err := s.importManifest(data)
	if err != nil {
		return changed, fmt.Errorf("failed to import manifest '%s': %w", path, err)
	}
	return changed, nil
}

func readManifest(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSpecNotFound, path)
		}
		return nil, fmt.Errorf("failed to read manifest file '%s': %w", path, err)
	}
	return data, nil
}

// Save exports the spec and atomically replaces the file at path.
// An empty path saves over the file the spec was loaded from.
func (s *Spec) Save(path string) error {
	if path == "" {
		path = s.FilePath()
	}
	if path == "" {
		return fmt.Errorf("spec %s has no file to save to", s.name)
	}

	data, err := s.Export()
	if err != nil {
		return err
	}
	if err := atomicWriteFile(path, data); err != nil {
		return err
	}

	s.log().Info("Saved spec", "spec", s.name, "path", path)
	return nil
}

// atomicWriteFile performs atomic file write
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // Clean up on any error

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
