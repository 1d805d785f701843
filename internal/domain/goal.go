package domain

import (
	"slices"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var validPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

type GoalStatus string

const (
	StatusActive    GoalStatus = "active"
	StatusCompleted GoalStatus = "completed"
	StatusPaused    GoalStatus = "paused"
)

var validStatuses = []GoalStatus{StatusActive, StatusCompleted, StatusPaused}

// UncategorizedKey groups goals whose category field is empty.
const UncategorizedKey = "Uncategorized"

// Goal is one immutable snapshot of a goal owned by the goal-management
// collaborator. The analytics log records successive snapshots for the same
// goal id; snapshots are never updated in place.
type Goal struct {
	ID           string
	Title        string
	Category     string
	TargetValue  float64
	CurrentValue float64
	Unit         string
	Deadline     time.Time
	Priority     Priority
	Status       GoalStatus
	CreatedAt    time.Time
	Archived     bool
}

// NewGoalSnapshot normalizes and validates one incoming goal snapshot.
// TargetValue is deliberately not required to be positive here: snapshots
// arrive from an external owner, and ratio math defends against non-positive
// targets at computation time instead of rejecting the record.
func NewGoalSnapshot(g Goal, now time.Time) (Goal, error) {
	g.ID = strings.TrimSpace(g.ID)
	g.Title = strings.TrimSpace(g.Title)
	g.Category = strings.TrimSpace(g.Category)
	g.Unit = strings.TrimSpace(g.Unit)

	if g.ID == "" {
		return Goal{}, ErrInvalidID
	}
	if g.Title == "" {
		return Goal{}, ErrInvalidTitle
	}
	if g.CurrentValue < 0 {
		return Goal{}, ErrInvalidValue
	}

	if g.Priority == "" {
		g.Priority = PriorityMedium
	}
	if !slices.Contains(validPriorities, g.Priority) {
		return Goal{}, ErrInvalidPriority
	}
	if g.Status == "" {
		g.Status = StatusActive
	}
	if !slices.Contains(validStatuses, g.Status) {
		return Goal{}, ErrInvalidStatus
	}

	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.CreatedAt = g.CreatedAt.UTC()
	if !g.Deadline.IsZero() {
		g.Deadline = g.Deadline.UTC()
	}
	return g, nil
}

// CategoryKey returns the grouping key for this goal.
func (g Goal) CategoryKey() string {
	if strings.TrimSpace(g.Category) == "" {
		return UncategorizedKey
	}
	return g.Category
}
