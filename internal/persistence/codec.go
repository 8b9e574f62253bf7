// Package persistence stores the workout list as a single serialized blob
// under one key, on top of any BlobStore backend.
package persistence

import (
	"bytes"
	"encoding/json"

	"github.com/rajvarma2599/fitnessapp/internal/domain"
)

// Encode serialises the full list as a JSON array with UTC timestamps.
func Encode(records []domain.WorkoutRecord) ([]byte, error) {
	out := make([]domain.WorkoutRecord, len(records))
	for i, r := range records {
		r.OccurredAt = r.OccurredAt.UTC()
		out[i] = r
	}
	return json.Marshal(out)
}

// Decode parses a stored blob. An empty blob or a JSON null decodes to an
// empty list; anything else that is not a JSON array of records is a
// *domain.ParseError.
func Decode(key string, blob []byte) ([]domain.WorkoutRecord, error) {
	trimmed := bytes.TrimSpace(blob)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []domain.WorkoutRecord{}, nil
	}

	var records []domain.WorkoutRecord
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, &domain.ParseError{Key: key, Err: err}
	}
	return records, nil
}
