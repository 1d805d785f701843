// Package file persists the analytics log as one versioned JSON blob on disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/sikte/internal/analytics"
)

// Store writes the whole log to a single file. Saves go through a temporary
// file followed by an atomic rename so a crash mid-write never leaves a
// truncated log behind.
type Store struct {
	path string
}

// New validates the target path and ensures its directory exists.
func New(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("log file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	return &Store{path: path}, nil
}

// Save replaces the stored log blob.
func (s *Store) Save(_ context.Context, log analytics.Log) error {
	payload := analytics.LogExport{
		Version:    analytics.LogVersion,
		ExportedAt: time.Now().UTC(),
		Log:        log,
	}
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode log json: %w", err)
	}
	encoded = append(encoded, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".sikte-log-*")
	if err != nil {
		return fmt.Errorf("create temp log file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(encoded); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp log file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp log file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace log file: %w", err)
	}
	return nil
}

// Load reads the stored log blob. A missing file is not an error; a corrupt
// or version-mismatched file is, and the caller decides how to degrade.
func (s *Store) Load(_ context.Context) (analytics.Log, bool, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return analytics.Log{}, false, nil
		}
		return analytics.Log{}, false, fmt.Errorf("read log file: %w", err)
	}
	if len(content) == 0 {
		return analytics.Log{}, false, nil
	}

	var payload analytics.LogExport
	if err := json.Unmarshal(content, &payload); err != nil {
		return analytics.Log{}, false, fmt.Errorf("decode log json: %w", err)
	}
	if payload.Version != "" && payload.Version != analytics.LogVersion {
		return analytics.Log{}, false, fmt.Errorf("%w: %q", analytics.ErrUnsupportedVersion, payload.Version)
	}
	return payload.Log, true, nil
}

// Path returns the log file location.
func (s *Store) Path() string {
	return s.path
}
