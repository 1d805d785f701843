package analytics

import (
	"context"
	"fmt"
	"time"
)

// LogVersion tags serialized logs so future format changes stay detectable.
const LogVersion = "sikte.log.v1"

// LogExport is the versioned wire form of the whole analytics log. It is the
// contract handed to export collaborators and the payload every storage
// adapter persists.
type LogExport struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Log        Log       `json:"log"`
}

// ExportLog returns a versioned copy of the full log.
func (s *Store) ExportLog() LogExport {
	return LogExport{
		Version:    LogVersion,
		ExportedAt: s.clock().UTC(),
		Log:        s.snapshot(),
	}
}

// ImportLog replaces the in-memory log with an exported one and persists it.
// The incoming version must match; an empty version is accepted for payloads
// written before versioning existed.
func (s *Store) ImportLog(ctx context.Context, export LogExport) error {
	if export.Version != "" && export.Version != LogVersion {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, export.Version)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = export.Log.Clone()
	return s.persistLocked(ctx)
}
