package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/rajvarma2599/fitnessapp/internal/domain"
	"github.com/rajvarma2599/fitnessapp/internal/events"
)

// ReplicaHandler mirrors workout.logged events into a second tracker so a
// standby copy of the log stays current.
type ReplicaHandler struct {
	tracker *domain.Tracker
	logger  log.FieldLogger
}

// NewReplicaHandler constructs a ReplicaHandler that appends to tracker.
func NewReplicaHandler(tracker *domain.Tracker, logger log.FieldLogger) *ReplicaHandler {
	return &ReplicaHandler{tracker: tracker, logger: logger}
}

// Handle applies a workout.logged event. Other event types and malformed
// payloads are skipped; only a failed save is returned so the message is
// retried.
func (h *ReplicaHandler) Handle(ctx context.Context, msg Message) error {
	if msg.EventType != events.WorkoutLoggedType {
		recordReplicaSkip("event_type")
		return nil
	}

	var event events.WorkoutLogged
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		h.logger.WithError(err).WithField("event_id", msg.EventID).Warn("skipping malformed workout event")
		recordReplicaSkip("malformed")
		return nil
	}

	applied, err := h.tracker.Append(ctx, domain.WorkoutRecord{
		ID:              event.WorkoutID,
		Type:            event.Type,
		DurationMinutes: event.Duration,
		CaloriesBurned:  event.Calories,
		Notes:           event.Notes,
		OccurredAt:      event.OccurredAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("apply workout %d: %w", event.WorkoutID, err)
	}
	if !applied {
		recordReplicaSkip("replay")
		h.logger.WithField("workout_id", event.WorkoutID).Debug("workout already in replica")
		return nil
	}

	h.logger.WithFields(log.Fields{
		"workout_id": event.WorkoutID,
		"type":       event.Type,
	}).Info("replica applied workout")
	return nil
}
