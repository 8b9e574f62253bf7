// Package events defines the payloads published to the workout event stream.
package events

import "time"

// WorkoutLoggedType is the event_type header value for WorkoutLogged.
const WorkoutLoggedType = "workout.logged"

// WorkoutLogged is emitted after a workout has been persisted.
type WorkoutLogged struct {
	EventID    string    `json:"event_id"`
	WorkoutID  int64     `json:"workout_id"`
	Type       string    `json:"type"`
	Duration   int       `json:"duration"`
	Calories   int       `json:"calories"`
	Notes      string    `json:"notes"`
	OccurredAt time.Time `json:"occurred_at"`
	Version    string    `json:"version"`
}
