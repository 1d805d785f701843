package analytics

import (
	"math"
	"time"

	"github.com/hylla/sikte/internal/domain"
	"github.com/hylla/sikte/internal/timeutil"
)

// NoCategory is returned as MostProductiveCategory when the log holds no
// categorized time at all.
const NoCategory = "None"

// ReportSummary aggregates the whole report range.
type ReportSummary struct {
	TotalGoals             int    `json:"total_goals" yaml:"total_goals"`
	CompletedGoals         int    `json:"completed_goals" yaml:"completed_goals"`
	TotalWorkTime          int    `json:"total_work_time" yaml:"total_work_time"`
	AverageDailyProgress   int    `json:"average_daily_progress" yaml:"average_daily_progress"`
	MostProductiveCategory string `json:"most_productive_category" yaml:"most_productive_category"`
}

// DailyProgress is one calendar-day bucket within a report range.
type DailyProgress struct {
	Date         string `json:"date" yaml:"date"`
	Progress     int    `json:"progress" yaml:"progress"`
	WorkTime     int    `json:"work_time" yaml:"work_time"`
	GoalsUpdated int    `json:"goals_updated" yaml:"goals_updated"`
}

// GoalBreakdown is one per-goal report row.
type GoalBreakdown struct {
	GoalID    string            `json:"goal_id" yaml:"goal_id"`
	Title     string            `json:"title" yaml:"title"`
	Category  string            `json:"category" yaml:"category"`
	Progress  int               `json:"progress" yaml:"progress"`
	TimeSpent int               `json:"time_spent" yaml:"time_spent"`
	Status    domain.GoalStatus `json:"status" yaml:"status"`
}

// Report is the date-range report handed to export collaborators. Consumers
// must treat it as read-only data.
type Report struct {
	Summary       ReportSummary   `json:"summary" yaml:"summary"`
	DailyProgress []DailyProgress `json:"daily_progress" yaml:"daily_progress"`
	GoalBreakdown []GoalBreakdown `json:"goal_breakdown" yaml:"goal_breakdown"`
}

// GenerateReport builds the date-range report for [start, end] inclusive.
// It returns domain.ErrInvalidRange when end falls before start and never
// returns a partial report.
func (s *Store) GenerateReport(start, end time.Time) (Report, error) {
	if end.Before(start) {
		return Report{}, domain.ErrInvalidRange
	}
	log := s.snapshot()
	start = start.UTC()
	end = end.UTC()

	goals := make([]domain.Goal, 0)
	for _, goal := range log.GoalHistory {
		if inRange(goal.CreatedAt, start, end) {
			goals = append(goals, goal)
		}
	}
	sessions := make([]domain.ProductivitySession, 0)
	for _, session := range log.Sessions {
		if inRange(session.Date, start, end) {
			sessions = append(sessions, session)
		}
	}
	entries := make([]domain.ProgressEntry, 0)
	for _, entry := range log.ProgressEntries {
		if inRange(entry.Date, start, end) {
			entries = append(entries, entry)
		}
	}

	report := Report{
		DailyProgress: s.dailyBuckets(start, end, goals, sessions, entries),
		GoalBreakdown: s.goalBreakdown(goals, sessions),
	}
	report.Summary = s.summarize(goals, sessions, report.DailyProgress)
	return report, nil
}

// summarize builds the report summary. The category leaderboard deliberately
// spans the whole log, not the report range: the original product computed
// MostProductiveCategory from the unwindowed category rollup and downstream
// consumers rely on that reading.
func (s *Store) summarize(goals []domain.Goal, sessions []domain.ProductivitySession, days []DailyProgress) ReportSummary {
	summary := ReportSummary{
		TotalGoals:             len(goals),
		MostProductiveCategory: NoCategory,
	}
	for _, goal := range goals {
		if goal.Status == domain.StatusCompleted {
			summary.CompletedGoals++
		}
	}
	for _, session := range sessions {
		if session.Type == domain.SessionWork {
			summary.TotalWorkTime += session.Duration
		}
	}

	bestTime := -1
	for _, row := range s.CategoryAnalytics() {
		if row.TotalTimeSpent > bestTime {
			summary.MostProductiveCategory = row.Category
			bestTime = row.TotalTimeSpent
		}
	}

	if len(days) > 0 {
		total := 0
		for _, day := range days {
			total += day.Progress
		}
		summary.AverageDailyProgress = int(math.Round(float64(total) / float64(len(days))))
	}
	return summary
}

// dailyBuckets initializes one bucket per calendar day in range and fills it
// from the filtered entries and sessions.
func (s *Store) dailyBuckets(start, end time.Time, goals []domain.Goal, sessions []domain.ProductivitySession, entries []domain.ProgressEntry) []DailyProgress {
	dayKeys := timeutil.DaysInRange(start, end)
	buckets := make(map[string]*DailyProgress, len(dayKeys))
	out := make([]DailyProgress, len(dayKeys))
	for i, key := range dayKeys {
		out[i] = DailyProgress{Date: key}
		buckets[key] = &out[i]
	}

	goalByID := map[string]domain.Goal{}
	for _, goal := range goals {
		if _, seen := goalByID[goal.ID]; !seen {
			goalByID[goal.ID] = goal
		}
	}

	progressByDay := map[string]float64{}
	for _, entry := range entries {
		key := timeutil.DayKey(entry.Date)
		bucket, ok := buckets[key]
		if !ok {
			continue
		}
		// Entries whose goal is outside the filtered set still count as an
		// update; they just carry no progress percentage.
		bucket.GoalsUpdated++
		if goal, ok := goalByID[entry.GoalID]; ok {
			if goal.TargetValue <= 0 {
				s.logger.Warn("goal snapshot has non-positive target, counting progress as zero",
					"goal_id", goal.ID, "target_value", goal.TargetValue)
				continue
			}
			progressByDay[key] += entry.Value / goal.TargetValue * 100
		}
	}
	for _, session := range sessions {
		if session.Type != domain.SessionWork {
			continue
		}
		if bucket, ok := buckets[timeutil.DayKey(session.Date)]; ok {
			bucket.WorkTime += session.Duration
		}
	}
	for key, progress := range progressByDay {
		buckets[key].Progress = int(math.Round(progress))
	}
	return out
}

// goalBreakdown emits one row per filtered goal snapshot, with work time
// attributed by goal id.
func (s *Store) goalBreakdown(goals []domain.Goal, sessions []domain.ProductivitySession) []GoalBreakdown {
	workByGoal := map[string]int{}
	for _, session := range sessions {
		if session.Type == domain.SessionWork && session.GoalID != "" {
			workByGoal[session.GoalID] += session.Duration
		}
	}

	out := make([]GoalBreakdown, 0, len(goals))
	for _, goal := range goals {
		out = append(out, GoalBreakdown{
			GoalID:    goal.ID,
			Title:     goal.Title,
			Category:  goal.Category,
			Progress:  int(math.Round(s.progressRatio(goal))),
			TimeSpent: workByGoal[goal.ID],
			Status:    goal.Status,
		})
	}
	return out
}

// inRange reports whether ts falls within [start, end] inclusive.
func inRange(ts, start, end time.Time) bool {
	return !ts.Before(start) && !ts.After(end)
}
