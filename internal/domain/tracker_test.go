package domain_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/rajvarma2599/fitnessapp/internal/domain"
	"github.com/rajvarma2599/fitnessapp/internal/observability"
	"github.com/rajvarma2599/fitnessapp/internal/persistence"
	"github.com/rajvarma2599/fitnessapp/internal/persistence/memory"
)

func quietLogger() log.FieldLogger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}

// stepClock advances by step on every call.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(step)
		return now
	}
}

func TestLogAppendsInSubmissionOrderAndPersists(t *testing.T) {
	ctx := context.Background()
	blobs := memory.NewStore()
	store := persistence.NewAdapter(blobs, persistence.DefaultKey)

	start := time.Date(2024, time.June, 12, 9, 0, 0, 0, time.UTC)
	tracker, err := domain.NewTracker(ctx, store, domain.WithClock(stepClock(start, time.Second)), domain.WithLogger(quietLogger()))
	require.NoError(t, err)

	types := []string{"Running", "Cycling", "Yoga", "Swimming", "Weightlifting", "HIIT"}
	for _, typ := range types {
		_, err := tracker.Log(ctx, domain.WorkoutInput{Type: typ, Duration: "30", Calories: "200"})
		require.NoError(t, err)
	}

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, len(types))
	for i, typ := range types {
		require.Equal(t, typ, loaded[i].Type)
		if i > 0 {
			require.Greater(t, loaded[i].ID, loaded[i-1].ID)
			require.False(t, loaded[i].OccurredAt.Before(loaded[i-1].OccurredAt))
		}
	}

	reopened, err := domain.NewTracker(ctx, store, domain.WithLogger(quietLogger()))
	require.NoError(t, err)
	require.Equal(t, loaded, reopened.Snapshot())
}

func TestLogBuildsRecordFromInput(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.June, 12, 9, 0, 0, 123456789, time.UTC)
	tracker, err := domain.NewTracker(ctx, persistence.NewAdapter(memory.NewStore(), ""),
		domain.WithClock(func() time.Time { return now }), domain.WithLogger(quietLogger()))
	require.NoError(t, err)

	record, err := tracker.Log(ctx, domain.WorkoutInput{Type: "Running", Duration: "45", Calories: "-20", Notes: "intervals"})
	require.NoError(t, err)

	require.Equal(t, now.UnixMilli(), record.ID)
	require.Equal(t, "Running", record.Type)
	require.Equal(t, 45, record.DurationMinutes)
	require.Equal(t, -20, record.CaloriesBurned, "negative input is accepted as entered")
	require.Equal(t, "intervals", record.Notes)
	require.Equal(t, now.Truncate(time.Millisecond), record.OccurredAt)
}

func TestLogKeepsIDsUniqueWithinOneMillisecond(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.June, 12, 9, 0, 0, 0, time.UTC)
	tracker, err := domain.NewTracker(ctx, persistence.NewAdapter(memory.NewStore(), ""),
		domain.WithClock(func() time.Time { return now }), domain.WithLogger(quietLogger()))
	require.NoError(t, err)

	first, err := tracker.Log(ctx, domain.WorkoutInput{Type: "A"})
	require.NoError(t, err)
	second, err := tracker.Log(ctx, domain.WorkoutInput{Type: "B"})
	require.NoError(t, err)

	require.Equal(t, first.ID+1, second.ID)
}

func TestLogKeepsTimestampsOrderedWhenClockStepsBack(t *testing.T) {
	ctx := context.Background()
	later := time.Date(2024, time.June, 12, 9, 0, 5, 0, time.UTC)
	readings := []time.Time{later, later.Add(-3 * time.Second)}
	clock := func() time.Time {
		now := readings[0]
		if len(readings) > 1 {
			readings = readings[1:]
		}
		return now
	}
	tracker, err := domain.NewTracker(ctx, persistence.NewAdapter(memory.NewStore(), ""),
		domain.WithClock(clock), domain.WithLogger(quietLogger()))
	require.NoError(t, err)

	first, err := tracker.Log(ctx, domain.WorkoutInput{Type: "A"})
	require.NoError(t, err)
	second, err := tracker.Log(ctx, domain.WorkoutInput{Type: "B"})
	require.NoError(t, err)

	require.Greater(t, second.ID, first.ID)
	require.False(t, second.OccurredAt.Before(first.OccurredAt))
	require.Equal(t, later, second.OccurredAt)
}

func TestLogTotalsStayNonNegativeForHugeInput(t *testing.T) {
	ctx := context.Background()
	tracker, err := domain.NewTracker(ctx, persistence.NewAdapter(memory.NewStore(), ""), domain.WithLogger(quietLogger()))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := tracker.Log(ctx, domain.WorkoutInput{Type: "Ultra", Duration: "99999999999999999999", Calories: "99999999999999999999"})
		require.NoError(t, err)
	}

	dashboard := tracker.Dashboard()
	require.GreaterOrEqual(t, dashboard.TotalMinutes, 0)
	require.GreaterOrEqual(t, dashboard.TotalCalories, 0)
}

func TestLogAcceptsNonNumericInput(t *testing.T) {
	ctx := context.Background()
	tracker, err := domain.NewTracker(ctx, persistence.NewAdapter(memory.NewStore(), ""), domain.WithLogger(quietLogger()))
	require.NoError(t, err)

	record, err := tracker.Log(ctx, domain.WorkoutInput{Type: "Yoga", Duration: "half an hour", Calories: "150kcal"})
	require.NoError(t, err)
	require.Equal(t, 0, record.DurationMinutes)
	require.Equal(t, 150, record.CaloriesBurned)
	require.Len(t, tracker.Snapshot(), 1)
}

func TestLogRollsBackWhenSaveFails(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{}
	tracker, err := domain.NewTracker(ctx, store, domain.WithLogger(quietLogger()))
	require.NoError(t, err)

	_, err = tracker.Log(ctx, domain.WorkoutInput{Type: "Running"})
	require.NoError(t, err)

	before := testutil.ToFloat64(observability.SaveFailures())
	store.err = errors.New("quota exceeded")
	publisher := &recordingPublisher{}
	tracker, err = domain.NewTracker(ctx, store, domain.WithLogger(quietLogger()), domain.WithPublisher(publisher))
	require.NoError(t, err)

	_, err = tracker.Log(ctx, domain.WorkoutInput{Type: "Cycling"})
	require.ErrorIs(t, err, store.err)
	require.Len(t, tracker.Snapshot(), 1, "failed append must not linger in memory")
	require.Empty(t, publisher.records, "nothing is published for unsaved records")
	require.Equal(t, before+1, testutil.ToFloat64(observability.SaveFailures()))
}

func TestNewTrackerResetsUnparseableData(t *testing.T) {
	ctx := context.Background()
	blobs := memory.NewStore()
	require.NoError(t, blobs.Put(ctx, persistence.DefaultKey, []byte(`[{"id":1,"type":`)))

	before := testutil.ToFloat64(observability.LoadResets())
	tracker, err := domain.NewTracker(ctx, persistence.NewAdapter(blobs, ""), domain.WithLogger(quietLogger()))
	require.NoError(t, err)
	require.Empty(t, tracker.Snapshot())
	require.Equal(t, before+1, testutil.ToFloat64(observability.LoadResets()))

	_, err = tracker.Log(ctx, domain.WorkoutInput{Type: "Running", Duration: "10", Calories: "90"})
	require.NoError(t, err)

	loaded, err := persistence.NewAdapter(blobs, "").Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1, "the corrupt blob is replaced on the next save")
}

func TestNewTrackerFailsOnStorageError(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := domain.NewTracker(context.Background(), &flakyStore{loadErr: boom}, domain.WithLogger(quietLogger()))
	require.ErrorIs(t, err, boom)
}

func TestLogPublishesAfterSave(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{err: errors.New("broker down")}
	tracker, err := domain.NewTracker(ctx, persistence.NewAdapter(memory.NewStore(), ""),
		domain.WithPublisher(publisher), domain.WithLogger(quietLogger()))
	require.NoError(t, err)

	record, err := tracker.Log(ctx, domain.WorkoutInput{Type: "Rowing", Duration: "20", Calories: "180"})
	require.NoError(t, err, "publish failures never fail the log")
	require.Equal(t, []domain.WorkoutRecord{record}, publisher.records)
}

func TestAppendSkipsReplays(t *testing.T) {
	ctx := context.Background()
	tracker, err := domain.NewTracker(ctx, persistence.NewAdapter(memory.NewStore(), ""), domain.WithLogger(quietLogger()))
	require.NoError(t, err)

	ts := time.Date(2024, time.June, 12, 9, 0, 0, 0, time.UTC)
	applied, err := tracker.Append(ctx, domain.WorkoutRecord{ID: 10, Type: "A", OccurredAt: ts})
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = tracker.Append(ctx, domain.WorkoutRecord{ID: 10, Type: "A", OccurredAt: ts})
	require.NoError(t, err)
	require.False(t, applied)

	applied, err = tracker.Append(ctx, domain.WorkoutRecord{ID: 9, Type: "older", OccurredAt: ts})
	require.NoError(t, err)
	require.False(t, applied)

	applied, err = tracker.Append(ctx, domain.WorkoutRecord{ID: 11, Type: "B", OccurredAt: ts})
	require.NoError(t, err)
	require.True(t, applied)

	require.Len(t, tracker.Snapshot(), 2)
}

func TestDashboardUsesTrackerLocation(t *testing.T) {
	ctx := context.Background()
	loc := time.FixedZone("UTC+10", 10*60*60)
	// Saturday 20:00 UTC is Sunday 06:00 in UTC+10.
	now := time.Date(2024, time.June, 15, 20, 0, 0, 0, time.UTC)
	tracker, err := domain.NewTracker(ctx, persistence.NewAdapter(memory.NewStore(), ""),
		domain.WithClock(func() time.Time { return now }), domain.WithLocation(loc), domain.WithLogger(quietLogger()))
	require.NoError(t, err)

	_, err = tracker.Log(ctx, domain.WorkoutInput{Type: "Running", Duration: "30", Calories: "300"})
	require.NoError(t, err)

	dashboard := tracker.Dashboard()
	require.Equal(t, [7]int{1, 0, 0, 0, 0, 0, 0}, dashboard.WeeklyCounts)
	require.Equal(t, 300, dashboard.MonthlyValues[15], "counted on the 16th locally")
	require.Equal(t, 1, dashboard.TotalWorkouts)
	require.Equal(t, 30, dashboard.TotalMinutes)
}

type flakyStore struct {
	records []domain.WorkoutRecord
	err     error
	loadErr error
}

func (s *flakyStore) Load(context.Context) ([]domain.WorkoutRecord, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return append([]domain.WorkoutRecord(nil), s.records...), nil
}

func (s *flakyStore) Save(_ context.Context, records []domain.WorkoutRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append([]domain.WorkoutRecord(nil), records...)
	return nil
}

type recordingPublisher struct {
	records []domain.WorkoutRecord
	err     error
}

func (p *recordingPublisher) PublishWorkoutLogged(_ context.Context, record domain.WorkoutRecord) error {
	p.records = append(p.records, record)
	return p.err
}
