// Package domain defines the workout model, the aggregation engine, and the
// Tracker that owns the record list.
package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rajvarma2599/fitnessapp/internal/observability"
)

// Store reads and writes the full record list as one unit.
type Store interface {
	// Load returns (nil, nil) when nothing has been stored yet and a
	// *ParseError when the stored data cannot be decoded.
	Load(ctx context.Context) ([]WorkoutRecord, error)
	Save(ctx context.Context, records []WorkoutRecord) error
}

// Publisher receives records after they have been persisted. It is called
// while the tracker is locked and must not block.
type Publisher interface {
	PublishWorkoutLogged(ctx context.Context, record WorkoutRecord) error
}

// NoopPublisher discards every record.
type NoopPublisher struct{}

// PublishWorkoutLogged performs no action.
func (NoopPublisher) PublishWorkoutLogged(context.Context, WorkoutRecord) error { return nil }

// Option configures optional behaviour for the Tracker.
type Option func(*Tracker)

// WithClock overrides the time source used for new records.
func WithClock(clock func() time.Time) Option {
	return func(t *Tracker) {
		t.clock = clock
	}
}

// WithLocation sets the location used for weekly and monthly bucketing.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.location = loc
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(logger log.FieldLogger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// WithPublisher attaches a publisher notified after every successful log.
func WithPublisher(p Publisher) Option {
	return func(t *Tracker) {
		t.publisher = p
	}
}

// Tracker owns the in-memory record list and mirrors it to a Store.
// Mutations are serialised so every save sees a complete list.
type Tracker struct {
	mu        sync.Mutex
	records   []WorkoutRecord
	store     Store
	publisher Publisher
	clock     func() time.Time
	location  *time.Location
	logger    log.FieldLogger
}

// NewTracker loads the stored list once. Unparseable data resets the tracker
// to an empty list; any other storage error is returned.
func NewTracker(ctx context.Context, store Store, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		store:     store,
		publisher: NoopPublisher{},
		clock:     time.Now,
		location:  time.Local,
		logger:    log.WithField("component", "tracker"),
	}
	for _, opt := range opts {
		opt(t)
	}

	records, err := store.Load(ctx)
	if err != nil {
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			return nil, fmt.Errorf("load workouts: %w", err)
		}
		t.logger.WithError(err).Warn("stored workouts are unparseable, starting with an empty list")
		observability.RecordLoadReset()
		records = nil
	}

	t.records = append(make([]WorkoutRecord, 0, len(records)), records...)
	t.logger.WithField("count", len(t.records)).Info("workouts loaded")
	return t, nil
}

// Log builds a record from raw form input, appends it, and persists the full
// list. If the save fails the append is undone and the error returned.
func (t *Tracker) Log(ctx context.Context, input WorkoutInput) (WorkoutRecord, error) {
	duration, exact := ParseLeadingInt(input.Duration)
	if !exact {
		t.logger.WithField("duration", input.Duration).Warn("duration is not a whole number, accepted as parsed")
	}
	calories, exact := ParseLeadingInt(input.Calories)
	if !exact {
		t.logger.WithField("calories", input.Calories).Warn("calories is not a whole number, accepted as parsed")
	}

	t.mu.Lock()
	now := t.clock().UTC().Truncate(time.Millisecond)
	if n := len(t.records); n > 0 && now.Before(t.records[n-1].OccurredAt) {
		// Clock stepped back; keep insertion order chronological.
		now = t.records[n-1].OccurredAt.UTC()
	}
	record := WorkoutRecord{
		ID:              t.nextID(now),
		Type:            input.Type,
		DurationMinutes: duration,
		CaloriesBurned:  calories,
		Notes:           input.Notes,
		OccurredAt:      now,
	}

	if err := t.appendAndSave(ctx, record); err != nil {
		t.mu.Unlock()
		observability.RecordSaveFailure()
		return WorkoutRecord{}, err
	}
	// Published under mu so events leave in ID order.
	publishErr := t.publisher.PublishWorkoutLogged(ctx, record)
	t.mu.Unlock()

	observability.RecordWorkoutLogged(record.OccurredAt)
	t.logger.WithFields(log.Fields{
		"id":       record.ID,
		"type":     record.Type,
		"duration": record.DurationMinutes,
		"calories": record.CaloriesBurned,
	}).Info("workout logged")

	if publishErr != nil {
		t.logger.WithError(publishErr).WithField("id", record.ID).Warn("workout logged event not published")
	}
	return record, nil
}

// Append applies an already-built record, as replicas do. Records whose ID is
// not newer than the last held record are skipped and reported as false.
func (t *Tracker) Append(ctx context.Context, record WorkoutRecord) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n := len(t.records); n > 0 && record.ID <= t.records[n-1].ID {
		return false, nil
	}
	if err := t.appendAndSave(ctx, record); err != nil {
		observability.RecordSaveFailure()
		return false, err
	}
	return true, nil
}

// Snapshot returns a copy of the list in insertion order.
func (t *Tracker) Snapshot() []WorkoutRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]WorkoutRecord(nil), t.records...)
}

// Dashboard recomputes all aggregates as of now.
func (t *Tracker) Dashboard() Dashboard {
	return BuildDashboard(t.Snapshot(), t.Now())
}

// Now is the tracker's clock in its bucketing location.
func (t *Tracker) Now() time.Time {
	return t.clock().In(t.location)
}

// Location is the location used for bucketing and display.
func (t *Tracker) Location() *time.Location {
	return t.location
}

// appendAndSave must be called with mu held.
func (t *Tracker) appendAndSave(ctx context.Context, record WorkoutRecord) error {
	t.records = append(t.records, record)
	if err := t.store.Save(ctx, t.records); err != nil {
		t.records = t.records[:len(t.records)-1]
		return fmt.Errorf("save workouts: %w", err)
	}
	return nil
}

// nextID must be called with mu held.
func (t *Tracker) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if n := len(t.records); n > 0 && id <= t.records[n-1].ID {
		id = t.records[n-1].ID + 1
	}
	return id
}
