package domain

import "time"

// WorkoutRecord is one logged exercise session. The JSON keys are the
// persisted layout and must not change.
type WorkoutRecord struct {
	ID              int64     `json:"id"`
	Type            string    `json:"type"`
	DurationMinutes int       `json:"duration"`
	CaloriesBurned  int       `json:"calories"`
	Notes           string    `json:"notes"`
	OccurredAt      time.Time `json:"date"`
}

// WorkoutInput is the raw, unvalidated form submission.
type WorkoutInput struct {
	Type     string
	Duration string
	Calories string
	Notes    string
}

// ParseError reports a persisted blob that could not be decoded.
type ParseError struct {
	Key string
	Err error
}

func (e *ParseError) Error() string {
	if e.Key == "" {
		return "unparseable workout data: " + e.Err.Error()
	}
	return "unparseable workout data under key " + e.Key + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }
