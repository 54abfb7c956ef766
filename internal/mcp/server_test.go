package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/liftlog/internal/analytics"
	"github.com/claude/liftlog/internal/models"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// fakeSource is an in-memory DataSource recording the ranges it is asked
// for.
type fakeSource struct {
	exercises []models.Exercise
	workouts  []models.Workout
	records   map[string][]analytics.PersonalRecord
	active    *models.Mesocycle
	profile   *models.UserProfile

	gotStart, gotEnd time.Time
	gotPeriod        string
	gotLimit         int
}

func (f *fakeSource) Stats(context.Context) (*analytics.Stats, error) {
	return &analytics.Stats{TotalWorkouts: len(f.workouts)}, nil
}

func (f *fakeSource) Exercises(context.Context) ([]models.Exercise, error) {
	return f.exercises, nil
}

func (f *fakeSource) PersonalRecords(_ context.Context, id string) ([]analytics.PersonalRecord, error) {
	return f.records[id], nil
}

func (f *fakeSource) ProgressTrend(context.Context, string) ([]analytics.TrendPoint, error) {
	return nil, nil
}

func (f *fakeSource) MuscleGroupVolume(_ context.Context, start, end time.Time) (*analytics.MuscleGroupReport, error) {
	f.gotStart, f.gotEnd = start, end
	return &analytics.MuscleGroupReport{}, nil
}

func (f *fakeSource) Workouts(_ context.Context, start, end time.Time) ([]models.Workout, error) {
	f.gotStart, f.gotEnd = start, end
	return f.workouts, nil
}

func (f *fakeSource) RecentWorkouts(_ context.Context, limit int) ([]models.Workout, error) {
	f.gotLimit = limit
	return f.workouts, nil
}

func (f *fakeSource) ActiveMesocycle(context.Context) (*models.Mesocycle, error) {
	return f.active, nil
}

func (f *fakeSource) Profile(context.Context) (*models.UserProfile, error) {
	return f.profile, nil
}

func (f *fakeSource) TrainingSummary(_ context.Context, period string, start, end time.Time) ([]analytics.PeriodSummary, error) {
	f.gotPeriod, f.gotStart, f.gotEnd = period, start, end
	return nil, nil
}

func (f *fakeSource) TrainingIntensity(_ context.Context, start, end time.Time) (*analytics.IntensityReport, error) {
	f.gotStart, f.gotEnd = start, end
	return &analytics.IntensityReport{}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHandlers(ds DataSource) *handlers {
	return &handlers{ds: ds, log: discardLogger(), now: func() time.Time { return testNow }}
}

func callTool(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func toolText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil {
		t.Fatal("nil tool result")
	}
	for _, c := range res.Content {
		switch tc := c.(type) {
		case mcp.TextContent:
			return tc.Text
		case *mcp.TextContent:
			return tc.Text
		}
	}
	t.Fatalf("no text content in %+v", res.Content)
	return ""
}

func library() []models.Exercise {
	return []models.Exercise{
		{ID: "ex-bench", Name: "Bench Press", Category: models.CategoryBarbell},
		{ID: "ex-curl", Name: "Dumbbell Curl", Category: models.CategoryDumbbell},
	}
}

// TestDefaultTimeRange verifies range defaults and parsing.
func TestDefaultTimeRange(t *testing.T) {
	// Both empty → the last 7 days
	start, end, err := defaultTimeRange("", "", testNow, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !end.Equal(testNow) || !start.Equal(testNow.AddDate(0, 0, -7)) {
		t.Errorf("default range = %v..%v", start, end)
	}

	// Date-only end includes the whole day
	start, end, err = defaultTimeRange("2024-01-01", "2024-01-31", testNow, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("start = %v, want %v", start, want)
	}
	if want := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC); !end.Equal(want) {
		t.Errorf("end = %v, want %v", end, want)
	}

	// RFC3339
	start, _, err = defaultTimeRange("2024-06-15T10:30:00Z", "", testNow, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Hour() != 10 || start.Minute() != 30 {
		t.Errorf("start = %v, want 10:30", start)
	}

	// Invalid
	if _, _, err = defaultTimeRange("not-a-date", "", testNow, 7); err == nil {
		t.Error("expected error for invalid date")
	}

	// Inverted
	if _, _, err = defaultTimeRange("2024-02-01", "2024-01-01", testNow, 7); err == nil {
		t.Error("expected error for end before start")
	}
}

// TestResolveExercise verifies lookup by id and by case-insensitive name.
func TestResolveExercise(t *testing.T) {
	h := newHandlers(&fakeSource{exercises: library()})
	tests := []struct {
		ref    string
		wantID string
	}{
		{"ex-curl", "ex-curl"},
		{"Bench Press", "ex-bench"},
		{"bench press", "ex-bench"},
		{"  DUMBBELL CURL ", "ex-curl"},
		{"Squat", ""},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			ex, err := h.resolveExercise(context.Background(), tt.ref)
			if err != nil {
				t.Fatal(err)
			}
			got := ""
			if ex != nil {
				got = ex.ID
			}
			if got != tt.wantID {
				t.Errorf("resolveExercise(%q) = %q, want %q", tt.ref, got, tt.wantID)
			}
		})
	}
}

// TestGetPersonalRecords verifies records are looked up by the resolved id
// and an unknown exercise is a tool error.
func TestGetPersonalRecords(t *testing.T) {
	ds := &fakeSource{
		exercises: library(),
		records: map[string][]analytics.PersonalRecord{
			"ex-bench": {{Bucket: "5RM", Weight: 100, Reps: 5}},
		},
	}
	h := newHandlers(ds)

	res, err := h.getPersonalRecords(context.Background(), callTool("get_personal_records", map[string]any{"exercise": "bench press"}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, res))
	}
	var body struct {
		Exercise string                     `json:"exercise"`
		Records  []analytics.PersonalRecord `json:"records"`
	}
	if err := json.Unmarshal([]byte(toolText(t, res)), &body); err != nil {
		t.Fatal(err)
	}
	if body.Exercise != "Bench Press" || len(body.Records) != 1 || body.Records[0].Weight != 100 {
		t.Errorf("body = %+v", body)
	}

	res, _ = h.getPersonalRecords(context.Background(), callTool("get_personal_records", map[string]any{"exercise": "Squat"}))
	if !res.IsError {
		t.Error("expected tool error for unknown exercise")
	}

	res, _ = h.getPersonalRecords(context.Background(), callTool("get_personal_records", map[string]any{}))
	if !res.IsError {
		t.Error("expected tool error for missing exercise")
	}
}

// TestGetWorkoutsFiltersByExercise verifies the default range and the
// exercise filter.
func TestGetWorkoutsFiltersByExercise(t *testing.T) {
	ds := &fakeSource{
		exercises: library(),
		workouts: []models.Workout{
			{ID: "w1", Exercises: []models.WorkoutExercise{{ExerciseID: "ex-bench"}}},
			{ID: "w2", Exercises: []models.WorkoutExercise{{ExerciseID: "ex-curl"}}},
		},
	}
	h := newHandlers(ds)

	res, err := h.getWorkouts(context.Background(), callTool("get_workouts", map[string]any{"exercise": "dumbbell curl"}))
	if err != nil {
		t.Fatal(err)
	}
	var got []models.Workout
	if err := json.Unmarshal([]byte(toolText(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "w2" {
		t.Errorf("workouts = %+v, want only w2", got)
	}
	if !ds.gotEnd.Equal(testNow) || !ds.gotStart.Equal(testNow.AddDate(0, 0, -7)) {
		t.Errorf("range = %v..%v", ds.gotStart, ds.gotEnd)
	}
}

// TestGetActiveMesocycle verifies both the active and the idle answer.
func TestGetActiveMesocycle(t *testing.T) {
	ds := &fakeSource{}
	h := newHandlers(ds)

	res, err := h.getActiveMesocycle(context.Background(), callTool("get_active_mesocycle", nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError || !strings.Contains(toolText(t, res), "No mesocycle") {
		t.Errorf("idle result = %q", toolText(t, res))
	}

	ds.active = &models.Mesocycle{ID: "m1", Name: "Hypertrophy", CurrentWeek: 2}
	res, _ = h.getActiveMesocycle(context.Background(), callTool("get_active_mesocycle", nil))
	var m models.Mesocycle
	if err := json.Unmarshal([]byte(toolText(t, res)), &m); err != nil {
		t.Fatal(err)
	}
	if m.Name != "Hypertrophy" || m.CurrentWeek != 2 {
		t.Errorf("mesocycle = %+v", m)
	}
}

// TestGetTrainingSummary verifies the period default, its validation and
// the eight week default range.
func TestGetTrainingSummary(t *testing.T) {
	ds := &fakeSource{}
	h := newHandlers(ds)

	res, err := h.getTrainingSummary(context.Background(), callTool("get_training_summary", nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, res))
	}
	if ds.gotPeriod != analytics.PeriodWeek {
		t.Errorf("period = %q, want week", ds.gotPeriod)
	}
	if !ds.gotStart.Equal(testNow.AddDate(0, 0, -56)) {
		t.Errorf("start = %v", ds.gotStart)
	}
	if text := toolText(t, res); strings.TrimSpace(text) != "[]" {
		t.Errorf("empty summary = %q, want []", text)
	}

	res, _ = h.getTrainingSummary(context.Background(), callTool("get_training_summary", map[string]any{"period": "year"}))
	if !res.IsError {
		t.Error("expected tool error for unknown period")
	}
}

// TestListExercisesCategory verifies the category filter.
func TestListExercisesCategory(t *testing.T) {
	h := newHandlers(&fakeSource{exercises: library()})
	res, err := h.listExercises(context.Background(), callTool("list_exercises", map[string]any{"category": "dumbbell"}))
	if err != nil {
		t.Fatal(err)
	}
	var got []models.Exercise
	if err := json.Unmarshal([]byte(toolText(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "ex-curl" {
		t.Errorf("exercises = %+v", got)
	}
}

// TestResources verifies the resource payloads.
func TestResources(t *testing.T) {
	ds := &fakeSource{workouts: []models.Workout{{ID: "w1"}}}
	h := newHandlers(ds)
	read := func(uri string, fn func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error)) string {
		t.Helper()
		req := mcp.ReadResourceRequest{}
		req.Params.URI = uri
		contents, err := fn(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}
		if len(contents) != 1 {
			t.Fatalf("%s returned %d contents", uri, len(contents))
		}
		tc, ok := contents[0].(mcp.TextResourceContents)
		if !ok {
			t.Fatalf("%s content type %T", uri, contents[0])
		}
		if tc.URI != uri || tc.MIMEType != "application/json" {
			t.Errorf("%s content = %+v", uri, tc)
		}
		return tc.Text
	}

	if got := read("liftlog://profile", h.profile); got != `{"profile":null}` {
		t.Errorf("empty profile = %s", got)
	}

	got := read("liftlog://recent_workouts", h.recentWorkouts)
	if !strings.Contains(got, `"count":1`) {
		t.Errorf("recent workouts = %s", got)
	}
	if ds.gotLimit != recentWorkoutLimit {
		t.Errorf("limit = %d, want %d", ds.gotLimit, recentWorkoutLimit)
	}
}

// TestInstructionsFollowProfileUnits verifies the weight unit named in the
// server instructions comes from the profile.
func TestInstructionsFollowProfileUnits(t *testing.T) {
	imperial := models.DefaultPreferences()
	imperial.Units = models.UnitsImperial
	metric := models.DefaultPreferences()

	tests := []struct {
		name    string
		profile *models.UserProfile
		want    string
	}{
		{"no profile", nil, "Weights are in kilograms."},
		{"metric", &models.UserProfile{Name: "A", Preferences: metric}, "Weights are in kilograms."},
		{"imperial", &models.UserProfile{Name: "A", Preferences: imperial}, "Weights are in pounds."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := instructions(context.Background(), &fakeSource{profile: tt.profile}, discardLogger())
			if !strings.HasSuffix(got, tt.want) {
				t.Errorf("instructions = %q, want suffix %q", got, tt.want)
			}
		})
	}
}
