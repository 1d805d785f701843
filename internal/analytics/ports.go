package analytics

import (
	"context"

	"github.com/hylla/sikte/internal/domain"
)

// Log holds the three append-only sequences that make up the analytics
// record. Insertion order is significant and preserved by every adapter.
type Log struct {
	ProgressEntries []domain.ProgressEntry      `json:"progress_entries"`
	Sessions        []domain.ProductivitySession `json:"productivity_sessions"`
	GoalHistory     []domain.Goal                `json:"goal_history"`
}

// Clone deep-copies the log so that readers never alias store-owned slices.
func (l Log) Clone() Log {
	return Log{
		ProgressEntries: append([]domain.ProgressEntry(nil), l.ProgressEntries...),
		Sessions:        append([]domain.ProductivitySession(nil), l.Sessions...),
		GoalHistory:     append([]domain.Goal(nil), l.GoalHistory...),
	}
}

// Persister stores and reloads the whole log as one unit.
type Persister interface {
	// Save durably replaces the stored log with the given one.
	Save(ctx context.Context, log Log) error
	// Load returns the stored log. ok is false when nothing has been stored
	// yet; an error means the stored payload could not be read back.
	Load(ctx context.Context) (log Log, ok bool, err error)
}

// GoalSource is the read-only view of the goal-management collaborator.
type GoalSource interface {
	ListGoals(ctx context.Context) ([]domain.Goal, error)
}
