package analytics

import (
	"time"

	"github.com/hylla/sikte/internal/domain"
	"github.com/hylla/sikte/internal/timeutil"
)

// DefaultStatsWindowDays is the trailing window used when callers pass a
// negative window.
const DefaultStatsWindowDays = 7

// NoDataDay is returned as MostProductiveDay when the window contains no
// work sessions.
const NoDataDay = "No data"

// ProductivityStats summarizes work and break sessions over a trailing
// window. Times are in minutes.
type ProductivityStats struct {
	TotalWorkTime        int     `json:"total_work_time" yaml:"total_work_time"`
	TotalBreakTime       int     `json:"total_break_time" yaml:"total_break_time"`
	AverageSessionLength float64 `json:"average_session_length" yaml:"average_session_length"`
	CompletionRate       float64 `json:"completion_rate" yaml:"completion_rate"`
	MostProductiveDay    string  `json:"most_productive_day" yaml:"most_productive_day"`
}

// ProductivityStats computes rolling session statistics for the trailing
// window of windowDays days ending now. An empty window yields zero values
// and the NoDataDay sentinel.
func (s *Store) ProductivityStats(windowDays int) ProductivityStats {
	if windowDays < 0 {
		windowDays = DefaultStatsWindowDays
	}
	log := s.snapshot()
	cutoff := cutoffFor(s.clock(), windowDays)

	var (
		workCount      int
		completedCount int
		workTime       int
		breakTime      int
	)
	workByDay := map[string]int{}
	for _, session := range log.Sessions {
		if session.Date.Before(cutoff) {
			continue
		}
		switch session.Type {
		case domain.SessionWork:
			workCount++
			workTime += session.Duration
			if session.Completed {
				completedCount++
			}
			workByDay[timeutil.DayKey(session.Date)] += session.Duration
		case domain.SessionBreak:
			breakTime += session.Duration
		}
	}

	stats := ProductivityStats{
		TotalWorkTime:     workTime,
		TotalBreakTime:    breakTime,
		MostProductiveDay: NoDataDay,
	}
	if workCount > 0 {
		stats.AverageSessionLength = float64(workTime) / float64(workCount)
		stats.CompletionRate = float64(completedCount) / float64(workCount) * 100
		stats.MostProductiveDay = maxWorkDay(workByDay)
	}
	return stats
}

// maxWorkDay picks the day with the largest summed work duration. Ties
// resolve to the lexicographically smallest day key so results stay
// deterministic regardless of map iteration order.
func maxWorkDay(workByDay map[string]int) string {
	best := ""
	bestMinutes := -1
	for day, minutes := range workByDay {
		if minutes > bestMinutes || (minutes == bestMinutes && day < best) {
			best = day
			bestMinutes = minutes
		}
	}
	if best == "" {
		return NoDataDay
	}
	return best
}

// cutoffFor resolves the inclusive lower bound of a trailing window.
func cutoffFor(now time.Time, windowDays int) time.Time {
	return timeutil.Cutoff(now, windowDays)
}
