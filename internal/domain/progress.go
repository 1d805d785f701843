package domain

import (
	"strings"
	"time"
)

// ProgressEntry is one recorded measurement toward a goal. Entries are
// append-only; once stored they are never mutated or deleted.
type ProgressEntry struct {
	ID     string
	GoalID string
	Date   time.Time
	Value  float64
	Notes  string
}

// ProgressInput holds caller-supplied fields for a new progress entry.
type ProgressInput struct {
	GoalID string
	Date   time.Time
	Value  float64
	Notes  string
}

// NewProgressEntry validates input and stamps a fresh entry.
func NewProgressEntry(id string, in ProgressInput, now time.Time) (ProgressEntry, error) {
	id = strings.TrimSpace(id)
	in.GoalID = strings.TrimSpace(in.GoalID)
	in.Notes = strings.TrimSpace(in.Notes)

	if id == "" {
		return ProgressEntry{}, ErrInvalidID
	}
	if in.GoalID == "" {
		return ProgressEntry{}, ErrInvalidGoalID
	}
	if in.Date.IsZero() {
		in.Date = now
	}

	return ProgressEntry{
		ID:     id,
		GoalID: in.GoalID,
		Date:   in.Date.UTC(),
		Value:  in.Value,
		Notes:  in.Notes,
	}, nil
}
