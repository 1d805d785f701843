package domain

import (
	"slices"
	"strings"
	"time"
)

type SessionType string

const (
	SessionWork  SessionType = "work"
	SessionBreak SessionType = "break"
	SessionFocus SessionType = "focus"
)

var validSessionTypes = []SessionType{SessionWork, SessionBreak, SessionFocus}

// ProductivitySession is one recorded timed interval. Duration is in whole
// minutes. GoalID is optional; an empty value means the session was not tied
// to a goal.
type ProductivitySession struct {
	ID        string
	Date      time.Time
	Duration  int
	GoalID    string
	Type      SessionType
	Completed bool
}

// SessionInput holds caller-supplied fields for a new session.
type SessionInput struct {
	Date      time.Time
	Duration  int
	GoalID    string
	Type      SessionType
	Completed bool
}

// NewProductivitySession validates input and stamps a fresh session.
func NewProductivitySession(id string, in SessionInput, now time.Time) (ProductivitySession, error) {
	id = strings.TrimSpace(id)
	in.GoalID = strings.TrimSpace(in.GoalID)

	if id == "" {
		return ProductivitySession{}, ErrInvalidID
	}
	if in.Duration < 0 {
		return ProductivitySession{}, ErrInvalidDuration
	}
	if in.Type == "" {
		in.Type = SessionWork
	}
	if !slices.Contains(validSessionTypes, in.Type) {
		return ProductivitySession{}, ErrInvalidSessionType
	}
	if in.Date.IsZero() {
		in.Date = now
	}

	return ProductivitySession{
		ID:        id,
		Date:      in.Date.UTC(),
		Duration:  in.Duration,
		GoalID:    in.GoalID,
		Type:      in.Type,
		Completed: in.Completed,
	}, nil
}
