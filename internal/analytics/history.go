package analytics

import (
	"slices"
	"strings"

	"github.com/hylla/sikte/internal/domain"
)

// DefaultHistoryWindowDays is the trailing window used when callers pass a
// negative window.
const DefaultHistoryWindowDays = 30

// GoalProgressHistory returns the progress entries for one goal whose date
// falls within the trailing window of windowDays days, sorted ascending by
// date. An unknown goal or an empty window yields an empty slice.
func (s *Store) GoalProgressHistory(goalID string, windowDays int) []domain.ProgressEntry {
	if windowDays < 0 {
		windowDays = DefaultHistoryWindowDays
	}
	goalID = strings.TrimSpace(goalID)
	log := s.snapshot()
	cutoff := cutoffFor(s.clock(), windowDays)

	out := make([]domain.ProgressEntry, 0)
	for _, entry := range log.ProgressEntries {
		if entry.GoalID != goalID {
			continue
		}
		if entry.Date.Before(cutoff) {
			continue
		}
		out = append(out, entry)
	}
	slices.SortStableFunc(out, func(a, b domain.ProgressEntry) int {
		return a.Date.Compare(b.Date)
	})
	return out
}
