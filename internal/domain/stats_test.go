package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func recordsAt(times ...time.Time) []WorkoutRecord {
	out := make([]WorkoutRecord, len(times))
	for i, ts := range times {
		out[i] = WorkoutRecord{ID: int64(i + 1), Type: "Running", DurationMinutes: 10, CaloriesBurned: 100, OccurredAt: ts}
	}
	return out
}

func TestTotals(t *testing.T) {
	records := []WorkoutRecord{
		{DurationMinutes: 30, CaloriesBurned: 250},
		{DurationMinutes: 45, CaloriesBurned: 400},
		{DurationMinutes: 0, CaloriesBurned: 0},
	}

	require.Equal(t, 3, TotalCount(records))
	require.Equal(t, 75, TotalDuration(records))
	require.Equal(t, 650, TotalCalories(records))
}

func TestTotalsSaturateInsteadOfWrapping(t *testing.T) {
	huge, _ := ParseLeadingInt("99999999999999999999")
	records := []WorkoutRecord{
		{DurationMinutes: huge, CaloriesBurned: huge},
		{DurationMinutes: huge, CaloriesBurned: huge},
	}

	require.Equal(t, math.MaxInt, TotalDuration(records))
	require.Equal(t, math.MaxInt, TotalCalories(records))

	now := time.Date(2024, time.June, 12, 9, 0, 0, 0, time.UTC)
	records[0].OccurredAt = now
	records[1].OccurredAt = now
	_, values := MonthlyCalories(records, now)
	require.Equal(t, math.MaxInt, values[11])

	require.Equal(t, math.MinInt, addSaturating(math.MinInt, -1))
	require.Equal(t, -5, addSaturating(10, -15))
}

func TestGoalsAchieved(t *testing.T) {
	cases := map[int]int{0: 0, 9: 0, 10: 1, 19: 1, 37: 3}
	for count, want := range cases {
		records := make([]WorkoutRecord, count)
		require.Equal(t, want, GoalsAchieved(records), "count %d", count)
	}
}

func TestRecentActivityNewestFirst(t *testing.T) {
	var records []WorkoutRecord
	for _, typ := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		records = append(records, WorkoutRecord{Type: typ})
	}

	recent := RecentActivity(records, RecentLimit)
	got := make([]string, 0, len(recent))
	for _, r := range recent {
		got = append(got, r.Type)
	}
	require.Equal(t, []string{"G", "F", "E", "D", "C"}, got)

	history := History(records, HistoryLimit)
	require.Len(t, history, 7)
	require.Equal(t, "G", history[0].Type)
	require.Equal(t, "A", history[6].Type)

	require.Empty(t, RecentActivity(nil, RecentLimit))
	require.Empty(t, RecentActivity(records, 0))
}

func TestWeekStartKeepsClockTime(t *testing.T) {
	// 2024-06-12 is a Wednesday.
	now := time.Date(2024, time.June, 12, 15, 30, 0, 0, time.UTC)
	require.Equal(t, time.Date(2024, time.June, 9, 15, 30, 0, 0, time.UTC), WeekStart(now))

	sunday := time.Date(2024, time.June, 9, 8, 0, 0, 0, time.UTC)
	require.Equal(t, sunday, WeekStart(sunday))

	// Crosses a month boundary.
	monday := time.Date(2024, time.July, 1, 9, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2024, time.June, 30, 9, 0, 0, 0, time.UTC), WeekStart(monday))
}

func TestWeeklyCountsSkipsSundayBeforeClockTime(t *testing.T) {
	// Wednesday 15:00; the week starts Sunday 15:00.
	now := time.Date(2024, time.May, 15, 15, 0, 0, 0, time.UTC)
	morning := time.Date(2024, time.May, 12, 9, 0, 0, 0, time.UTC)
	evening := time.Date(2024, time.May, 12, 18, 0, 0, 0, time.UTC)

	require.Equal(t, [7]int{}, WeeklyCounts(recordsAt(morning), now))
	require.Equal(t, [7]int{1, 0, 0, 0, 0, 0, 0}, WeeklyCounts(recordsAt(morning, evening), now))
}

func TestWeeklyCountsBoundary(t *testing.T) {
	now := time.Date(2024, time.June, 12, 15, 30, 0, 0, time.UTC)
	start := WeekStart(now)

	records := recordsAt(
		start,                             // included, Sunday
		start.Add(-time.Millisecond),      // excluded
		start.Add(24*time.Hour+time.Hour), // Monday
		now,                               // Wednesday
		now.Add(-time.Hour),               // Wednesday
	)

	counts := WeeklyCounts(records, now)
	require.Equal(t, [7]int{1, 1, 0, 2, 0, 0, 0}, counts)
}

func TestWeeklyCountsUsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	// Wednesday 10:00 local; the week starts Sunday 10:00 local.
	now := time.Date(2024, time.June, 12, 10, 0, 0, 0, loc)

	// Sunday 02:00 UTC is still Saturday evening in UTC-5.
	saturday := time.Date(2024, time.June, 9, 2, 0, 0, 0, time.UTC)
	// Sunday 06:00 UTC is Sunday 01:00 local, before the clock time.
	early := time.Date(2024, time.June, 9, 6, 0, 0, 0, time.UTC)
	// Sunday 16:00 UTC is Sunday 11:00 local.
	late := time.Date(2024, time.June, 9, 16, 0, 0, 0, time.UTC)

	counts := WeeklyCounts(recordsAt(saturday, early, late), now)
	require.Equal(t, [7]int{1, 0, 0, 0, 0, 0, 0}, counts)
}

func TestMonthlyCaloriesShape(t *testing.T) {
	// February 2023 has 28 days; the series still has 31 slots.
	now := time.Date(2023, time.February, 20, 12, 0, 0, 0, time.UTC)
	records := []WorkoutRecord{
		{CaloriesBurned: 100, OccurredAt: time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC)},
		{CaloriesBurned: 50, OccurredAt: time.Date(2023, time.February, 1, 18, 0, 0, 0, time.UTC)},
		{CaloriesBurned: 300, OccurredAt: time.Date(2023, time.February, 20, 7, 0, 0, 0, time.UTC)},
		{CaloriesBurned: 999, OccurredAt: time.Date(2023, time.January, 31, 23, 59, 59, 0, time.UTC)},
	}

	labels, values := MonthlyCalories(records, now)
	require.Len(t, labels, MonthSlots)
	require.Len(t, values, MonthSlots)
	require.Equal(t, "1", labels[0])
	require.Equal(t, "31", labels[30])
	require.Equal(t, 150, values[0])
	require.Equal(t, 300, values[19])
	for day := 29; day <= 31; day++ {
		require.Zero(t, values[day-1], "day %d", day)
	}

	total := 0
	for _, v := range values {
		total += v
	}
	require.Equal(t, 450, total, "records before the 1st are excluded")
}

func TestBuildDashboardEmpty(t *testing.T) {
	d := BuildDashboard(nil, time.Date(2024, time.June, 12, 0, 0, 0, 0, time.UTC))

	require.Zero(t, d.TotalWorkouts)
	require.Zero(t, d.TotalMinutes)
	require.Zero(t, d.TotalCalories)
	require.Zero(t, d.GoalsAchieved)
	require.Empty(t, d.Recent)
	require.Empty(t, d.History)
	require.Equal(t, [7]int{}, d.WeeklyCounts)
	require.Len(t, d.MonthlyValues, MonthSlots)
}
