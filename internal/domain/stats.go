package domain

import (
	"math"
	"strconv"
	"time"
)

const (
	// WorkoutsPerGoal is the fixed milestone: every 10 logged workouts count as one goal.
	WorkoutsPerGoal = 10
	// RecentLimit bounds the recent-activity list.
	RecentLimit = 5
	// HistoryLimit bounds the history list.
	HistoryLimit = 10
	// MonthSlots is the fixed length of the monthly calorie series.
	MonthSlots = 31
)

// Dashboard bundles every value derived from the record list.
type Dashboard struct {
	TotalWorkouts int
	TotalMinutes  int
	TotalCalories int
	GoalsAchieved int
	Recent        []WorkoutRecord
	History       []WorkoutRecord
	WeeklyCounts  [7]int
	MonthlyLabels []string
	MonthlyValues []int
}

// BuildDashboard recomputes every aggregate from scratch.
func BuildDashboard(records []WorkoutRecord, now time.Time) Dashboard {
	labels, calories := MonthlyCalories(records, now)
	return Dashboard{
		TotalWorkouts: TotalCount(records),
		TotalMinutes:  TotalDuration(records),
		TotalCalories: TotalCalories(records),
		GoalsAchieved: GoalsAchieved(records),
		Recent:        RecentActivity(records, RecentLimit),
		History:       History(records, HistoryLimit),
		WeeklyCounts:  WeeklyCounts(records, now),
		MonthlyLabels: labels,
		MonthlyValues: calories,
	}
}

func TotalCount(records []WorkoutRecord) int { return len(records) }

func TotalDuration(records []WorkoutRecord) int {
	total := 0
	for _, r := range records {
		total = addSaturating(total, r.DurationMinutes)
	}
	return total
}

func TotalCalories(records []WorkoutRecord) int {
	total := 0
	for _, r := range records {
		total = addSaturating(total, r.CaloriesBurned)
	}
	return total
}

func GoalsAchieved(records []WorkoutRecord) int {
	return TotalCount(records) / WorkoutsPerGoal
}

// RecentActivity returns the last n records, newest first.
func RecentActivity(records []WorkoutRecord, n int) []WorkoutRecord {
	if n <= 0 {
		return []WorkoutRecord{}
	}
	if n > len(records) {
		n = len(records)
	}
	out := make([]WorkoutRecord, 0, n)
	for i := len(records) - 1; i >= len(records)-n; i-- {
		out = append(out, records[i])
	}
	return out
}

// History is RecentActivity with the longer window used by the history view.
func History(records []WorkoutRecord, n int) []WorkoutRecord {
	return RecentActivity(records, n)
}

// WeekStart steps now back to the most recent Sunday (weekday 0) in now's
// location. The clock time is kept, so on that Sunday only records at or
// after the current time of day fall inside the week.
func WeekStart(now time.Time) time.Time {
	return now.AddDate(0, 0, -int(now.Weekday()))
}

// MonthStart is local midnight of the first day of now's month.
func MonthStart(now time.Time) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
}

// WeeklyCounts buckets this week's records by weekday, Sunday at index 0.
func WeeklyCounts(records []WorkoutRecord, now time.Time) [7]int {
	var counts [7]int
	start := WeekStart(now)
	for _, r := range records {
		if r.OccurredAt.Before(start) {
			continue
		}
		counts[r.OccurredAt.In(now.Location()).Weekday()]++
	}
	return counts
}

// MonthlyCalories sums this month's calories per day of month. The series
// always has MonthSlots entries; days the month does not have stay zero.
func MonthlyCalories(records []WorkoutRecord, now time.Time) ([]string, []int) {
	labels := make([]string, MonthSlots)
	values := make([]int, MonthSlots)
	for i := range labels {
		labels[i] = strconv.Itoa(i + 1)
	}

	start := MonthStart(now)
	for _, r := range records {
		if r.OccurredAt.Before(start) {
			continue
		}
		day := r.OccurredAt.In(now.Location()).Day()
		values[day-1] = addSaturating(values[day-1], r.CaloriesBurned)
	}
	return labels, values
}

// addSaturating clamps to the int range instead of wrapping.
func addSaturating(a, b int) int {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return math.MaxInt
	case b < 0 && a < math.MinInt-b:
		return math.MinInt
	}
	return a + b
}
