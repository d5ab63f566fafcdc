// Package storage persists problems and per-source test lists on disk.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/programme-lv/cpkit/internal/models"
)

// SidecarDir is the hidden directory created next to source files.
const SidecarDir = ".cpkit"

// SidecarPath returns where the tests of source are kept:
// <dir of source>/.cpkit/<source file name>.json
func SidecarPath(source string) string {
	return filepath.Join(filepath.Dir(source), SidecarDir, filepath.Base(source)+".json")
}

// LoadTests reads the sidecar of source. A missing sidecar yields no tests
// and no error.
func LoadTests(source string) ([]models.TestCase, error) {
	path := SidecarPath(source)
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.TestCase{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tests from %s: %w", path, err)
	}
	var tests []models.TestCase
	if err := json.Unmarshal(b, &tests); err != nil {
		return nil, fmt.Errorf("failed to parse tests in %s: %w", path, err)
	}
	if tests == nil {
		tests = []models.TestCase{}
	}
	return tests, nil
}

func SaveTests(source string, tests []models.TestCase) error {
	path := SidecarPath(source)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if tests == nil {
		tests = []models.TestCase{}
	}
	b, err := json.MarshalIndent(tests, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tests: %w", err)
	}
	return writeFileAtomic(path, b)
}

// writeFileAtomic replaces path so readers never see a half written file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move file into %s: %w", path, err)
	}
	return nil
}
