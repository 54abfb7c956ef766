// Package backup moves the whole training log in and out of the store as a
// single JSON document.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// Collection keys of the export document.
const (
	KeyUserProfiles     = "userProfiles"
	KeyExercises        = "exercises"
	KeyWorkouts         = "workouts"
	KeyTrainingSessions = "trainingSessions"
	KeyMesocycles       = "mesocycles"
)

// Document is the export format: one array per collection.
type Document struct {
	UserProfiles     []models.UserProfile     `json:"userProfiles"`
	Exercises        []models.Exercise        `json:"exercises"`
	Workouts         []models.Workout         `json:"workouts"`
	TrainingSessions []models.TrainingSession `json:"trainingSessions"`
	Mesocycles       []models.Mesocycle       `json:"mesocycles"`
	ExportDate       time.Time                `json:"exportDate"`
	Version          int                      `json:"version"`
}

// ImportFormatError reports a payload that cannot be imported. Nothing is
// written when it is returned.
type ImportFormatError struct {
	Field  string
	Reason string
}

func (e *ImportFormatError) Error() string {
	if e.Field == "" {
		return "invalid import: " + e.Reason
	}
	return fmt.Sprintf("invalid import: %s: %s", e.Field, e.Reason)
}

func (d *Document) snapshot() storage.Snapshot {
	return storage.Snapshot{
		Profiles:   d.UserProfiles,
		Exercises:  d.Exercises,
		Workouts:   d.Workouts,
		Sessions:   d.TrainingSessions,
		Mesocycles: d.Mesocycles,
	}
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Export reads the whole store into a Document.
func Export(ctx context.Context, db *storage.DB) (_ *Document, err error) {
	defer func() { count(db, "export", err) }()

	snap, err := db.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading store: %w", err)
	}
	version, _, err := db.SchemaVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading schema version: %w", err)
	}
	return &Document{
		UserProfiles:     emptyIfNil(snap.Profiles),
		Exercises:        emptyIfNil(snap.Exercises),
		Workouts:         emptyIfNil(snap.Workouts),
		TrainingSessions: emptyIfNil(snap.Sessions),
		Mesocycles:       emptyIfNil(snap.Mesocycles),
		ExportDate:       db.Now().UTC(),
		Version:          version,
	}, nil
}

// WriteJSON encodes doc as indented JSON.
func WriteJSON(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return nil
}

// Decode parses and checks an import payload without touching the store.
// Absent or null collections are empty.
func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading import: %w", err)
	}
	if !json.Valid(data) {
		return nil, &ImportFormatError{Reason: "payload is not valid JSON"}
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &ImportFormatError{Reason: "payload must be a JSON object"}
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, &ImportFormatError{Reason: err.Error()}
	}

	var doc Document
	collections := []struct {
		key    string
		decode func(json.RawMessage) error
	}{
		{KeyUserProfiles, func(m json.RawMessage) error { return json.Unmarshal(m, &doc.UserProfiles) }},
		{KeyExercises, func(m json.RawMessage) error { return json.Unmarshal(m, &doc.Exercises) }},
		{KeyWorkouts, func(m json.RawMessage) error { return json.Unmarshal(m, &doc.Workouts) }},
		{KeyTrainingSessions, func(m json.RawMessage) error { return json.Unmarshal(m, &doc.TrainingSessions) }},
		{KeyMesocycles, func(m json.RawMessage) error { return json.Unmarshal(m, &doc.Mesocycles) }},
	}
	for _, c := range collections {
		msg, ok := raw[c.key]
		if !ok {
			continue
		}
		msg = bytes.TrimSpace(msg)
		if bytes.Equal(msg, []byte("null")) {
			continue
		}
		if len(msg) == 0 || msg[0] != '[' {
			return nil, &ImportFormatError{Field: c.key, Reason: "must be an array"}
		}
		if err := c.decode(msg); err != nil {
			return nil, &ImportFormatError{Field: c.key, Reason: err.Error()}
		}
	}
	if v, ok := raw["version"]; ok {
		if err := json.Unmarshal(v, &doc.Version); err != nil {
			return nil, &ImportFormatError{Field: "version", Reason: "must be an integer"}
		}
	}
	return &doc, nil
}

// Check applies the record rules to every record of doc and rejects a
// document with more than one active mesocycle. now bounds workout dates.
func Check(doc *Document, now time.Time) error {
	for i := range doc.UserProfiles {
		if err := doc.UserProfiles[i].Validate(); err != nil {
			return recordError(KeyUserProfiles, i, err)
		}
	}
	for i := range doc.Exercises {
		if err := doc.Exercises[i].Validate(); err != nil {
			return recordError(KeyExercises, i, err)
		}
	}
	for i := range doc.Workouts {
		doc.Workouts[i].Normalize()
		if err := doc.Workouts[i].Validate(now); err != nil {
			return recordError(KeyWorkouts, i, err)
		}
	}
	for i := range doc.TrainingSessions {
		if err := doc.TrainingSessions[i].Validate(); err != nil {
			return recordError(KeyTrainingSessions, i, err)
		}
	}
	active := -1
	for i := range doc.Mesocycles {
		m := &doc.Mesocycles[i]
		if err := m.Validate(); err != nil {
			return recordError(KeyMesocycles, i, err)
		}
		if m.Status != models.StatusActive {
			continue
		}
		if active >= 0 {
			return &ImportFormatError{
				Field:  fmt.Sprintf("%s[%d]", KeyMesocycles, i),
				Reason: fmt.Sprintf("only one mesocycle may be active, %s[%d] already is", KeyMesocycles, active),
			}
		}
		active = i
	}
	return nil
}

func recordError(key string, i int, err error) error {
	return &ImportFormatError{Field: fmt.Sprintf("%s[%d]", key, i), Reason: err.Error()}
}

// Import replaces the whole store with the payload read from r. The payload
// is fully decoded and checked before anything is cleared, and the
// replacement runs in one transaction.
func Import(ctx context.Context, db *storage.DB, r io.Reader) (_ *Document, err error) {
	defer func() { count(db, "import", err) }()

	doc, err := Decode(r)
	if err != nil {
		return nil, err
	}
	if err := Check(doc, db.Now()); err != nil {
		return nil, err
	}
	if err := db.ReplaceAll(ctx, doc.snapshot()); err != nil {
		return nil, fmt.Errorf("replacing store content: %w", err)
	}
	return doc, nil
}

func count(db *storage.DB, direction string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	db.Metrics().CounterBackups.WithLabelValues(direction, result).Inc()
}
