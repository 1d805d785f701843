package analytics

import (
	"slices"
	"strings"

	"github.com/hylla/sikte/internal/domain"
)

// CategoryStats is one category rollup row. TotalTimeSpent is in minutes and
// sums sessions of every type attributed to goals in the category.
type CategoryStats struct {
	Category        string  `json:"category" yaml:"category"`
	TotalGoals      int     `json:"total_goals" yaml:"total_goals"`
	CompletedGoals  int     `json:"completed_goals" yaml:"completed_goals"`
	AverageProgress float64 `json:"average_progress" yaml:"average_progress"`
	TotalTimeSpent  int     `json:"total_time_spent" yaml:"total_time_spent"`
}

// CategoryAnalytics rolls up the full goal history by category, sorted by
// category name. Every goal snapshot contributes separately: successive
// snapshots of the same goal id are deliberate event-log entries, not
// duplicates to collapse.
func (s *Store) CategoryAnalytics() []CategoryStats {
	log := s.snapshot()

	type accum struct {
		totalGoals     int
		completedGoals int
		totalProgress  float64
		totalTimeSpent int
	}
	byCategory := map[string]*accum{}
	categoryByGoalID := map[string]string{}

	for _, goal := range log.GoalHistory {
		key := goal.CategoryKey()
		acc := byCategory[key]
		if acc == nil {
			acc = &accum{}
			byCategory[key] = acc
		}
		acc.totalGoals++
		if goal.Status == domain.StatusCompleted {
			acc.completedGoals++
		}
		acc.totalProgress += s.progressRatio(goal)

		// First snapshot wins for session attribution.
		if _, seen := categoryByGoalID[goal.ID]; !seen {
			categoryByGoalID[goal.ID] = key
		}
	}

	// Time spent counts every session type, not just work.
	for _, session := range log.Sessions {
		if session.GoalID == "" {
			continue
		}
		key, ok := categoryByGoalID[session.GoalID]
		if !ok {
			continue
		}
		byCategory[key].totalTimeSpent += session.Duration
	}

	out := make([]CategoryStats, 0, len(byCategory))
	for key, acc := range byCategory {
		row := CategoryStats{
			Category:       key,
			TotalGoals:     acc.totalGoals,
			CompletedGoals: acc.completedGoals,
			TotalTimeSpent: acc.totalTimeSpent,
		}
		if acc.totalGoals > 0 {
			row.AverageProgress = acc.totalProgress / float64(acc.totalGoals)
		}
		out = append(out, row)
	}
	slices.SortFunc(out, func(a, b CategoryStats) int {
		return strings.Compare(a.Category, b.Category)
	})
	return out
}

// progressRatio returns a goal's completion percentage. Snapshots with a
// non-positive target contribute zero and raise an anomaly warning instead of
// propagating NaN or Inf into the aggregates.
func (s *Store) progressRatio(goal domain.Goal) float64 {
	if goal.TargetValue <= 0 {
		s.logger.Warn("goal snapshot has non-positive target, counting progress as zero",
			"goal_id", goal.ID, "target_value", goal.TargetValue)
		return 0
	}
	return goal.CurrentValue / goal.TargetValue * 100
}
