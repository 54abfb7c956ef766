package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/liftlog/internal/analytics"
	"github.com/claude/liftlog/internal/models"
)

// defaultTimeRange returns start/end defaulting to the days days before now.
// A date-only end includes that whole day.
func defaultTimeRange(startStr, endStr string, now time.Time, days int) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr, true)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = now
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr, false)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -days)
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end must be after start")
	}
	return start, end, nil
}

func parseFlexTime(s string, endOfDay bool) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

// --- Tool definitions ---

var toolGetTrainingStats = mcp.NewTool("get_training_stats",
	mcp.WithDescription("Overall training statistics: workout counts, total sets and volume (kg), average duration, workouts per week, and current/longest daily streaks."),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the exercise library with equipment category and muscle groups. Use the returned id or name in other tools."),
	mcp.WithString("category", mcp.Description("Optional category filter"), mcp.Enum("barbell", "dumbbell", "machine", "cable", "bodyweight", "kettlebell", "band", "other")),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("Heaviest completed set per rep range (1RM, 3RM, 5RM, 8RM, 10RM, 15RM, 20RM) for one exercise, with estimated one-rep max."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise id or name (case-insensitive)")),
)

var toolGetProgressTrend = mcp.NewTool("get_progress_trend",
	mcp.WithDescription("Per-workout best set for one exercise over time, oldest first, with session volume and estimated one-rep max."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise id or name (case-insensitive)")),
)

var toolGetMuscleGroupVolume = mcp.NewTool("get_muscle_group_volume",
	mcp.WithDescription("Completed-set volume and set counts per muscle group. Every muscle group an exercise targets is credited with its full volume."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("Workouts in a date range with every exercise entry and set (weight in kg, reps, RIR, completion)."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
	mcp.WithString("exercise", mcp.Description("Only workouts containing this exercise (id or name)")),
)

var toolGetActiveMesocycle = mcp.NewTool("get_active_mesocycle",
	mcp.WithDescription("The active training block: dates, current week, deload week, split days and their exercise targets. Returns a message when none is active."),
)

var toolGetTrainingSummary = mcp.NewTool("get_training_summary",
	mcp.WithDescription("Working sets, reps, tonnage and session counts per week or month, newest first."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 8 weeks ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
	mcp.WithString("period", mcp.Description("Aggregation period. Defaults to week."), mcp.Enum(analytics.PeriodWeek, analytics.PeriodMonth)),
)

var toolGetTrainingIntensity = mcp.NewTool("get_training_intensity",
	mcp.WithDescription("Reps-in-reserve distribution, failure rate and per-exercise totals for completed sets."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 4 weeks ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

// --- Tool handlers ---

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) queryFailed(tool string, err error) (*mcp.CallToolResult, error) {
	h.log.Warn("mcp tool query failed", "tool", tool, "error", err)
	return mcp.NewToolResultError("query failed: " + err.Error()), nil
}

// resolveExercise matches ref against exercise ids, then names ignoring
// case.
func (h *handlers) resolveExercise(ctx context.Context, ref string) (*models.Exercise, error) {
	list, err := h.ds.Exercises(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == ref {
			return &list[i], nil
		}
	}
	ref = strings.TrimSpace(ref)
	for i := range list {
		if strings.EqualFold(list[i].Name, ref) {
			return &list[i], nil
		}
	}
	return nil, nil
}

func (h *handlers) requireExercise(ctx context.Context, req mcp.CallToolRequest) (*models.Exercise, *mcp.CallToolResult) {
	ref, err := req.RequireString("exercise")
	if err != nil || ref == "" {
		return nil, mcp.NewToolResultError("exercise parameter is required")
	}
	ex, err := h.resolveExercise(ctx, ref)
	if err != nil {
		res, _ := h.queryFailed(req.Params.Name, err)
		return nil, res
	}
	if ex == nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("unknown exercise %q; call list_exercises for valid names", ref))
	}
	return ex, nil
}

func (h *handlers) getTrainingStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.Stats(ctx)
	if err != nil {
		return h.queryFailed(req.Params.Name, err)
	}
	return jsonResult(stats)
}

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := h.ds.Exercises(ctx)
	if err != nil {
		return h.queryFailed(req.Params.Name, err)
	}
	category := models.ExerciseCategory(req.GetString("category", ""))
	filtered := make([]models.Exercise, 0, len(list))
	for _, e := range list {
		if category == "" || e.Category == category {
			filtered = append(filtered, e)
		}
	}
	return jsonResult(filtered)
}

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ex, res := h.requireExercise(ctx, req)
	if res != nil {
		return res, nil
	}
	records, err := h.ds.PersonalRecords(ctx, ex.ID)
	if err != nil {
		return h.queryFailed(req.Params.Name, err)
	}
	if records == nil {
		records = []analytics.PersonalRecord{}
	}
	return jsonResult(map[string]any{
		"exercise": ex.Name,
		"records":  records,
	})
}

func (h *handlers) getProgressTrend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ex, res := h.requireExercise(ctx, req)
	if res != nil {
		return res, nil
	}
	points, err := h.ds.ProgressTrend(ctx, ex.ID)
	if err != nil {
		return h.queryFailed(req.Params.Name, err)
	}
	if points == nil {
		points = []analytics.TrendPoint{}
	}
	return jsonResult(map[string]any{
		"exercise": ex.Name,
		"trend":    points,
	})
}

func (h *handlers) getMuscleGroupVolume(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""), h.now(), 7)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	report, err := h.ds.MuscleGroupVolume(ctx, start, end)
	if err != nil {
		return h.queryFailed(req.Params.Name, err)
	}
	return jsonResult(report)
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""), h.now(), 7)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	var exerciseID string
	if ref := req.GetString("exercise", ""); ref != "" {
		ex, err := h.resolveExercise(ctx, ref)
		if err != nil {
			return h.queryFailed(req.Params.Name, err)
		}
		if ex == nil {
			return mcp.NewToolResultError(fmt.Sprintf("unknown exercise %q", ref)), nil
		}
		exerciseID = ex.ID
	}

	workouts, err := h.ds.Workouts(ctx, start, end)
	if err != nil {
		return h.queryFailed(req.Params.Name, err)
	}
	filtered := make([]models.Workout, 0, len(workouts))
	for _, w := range workouts {
		if exerciseID == "" || containsExercise(w, exerciseID) {
			filtered = append(filtered, w)
		}
	}
	return jsonResult(filtered)
}

func containsExercise(w models.Workout, exerciseID string) bool {
	for _, we := range w.Exercises {
		if we.ExerciseID == exerciseID {
			return true
		}
		for _, s := range we.Sets {
			if s.ExerciseID == exerciseID {
				return true
			}
		}
	}
	return false
}

func (h *handlers) getActiveMesocycle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := h.ds.ActiveMesocycle(ctx)
	if err != nil {
		return h.queryFailed(req.Params.Name, err)
	}
	if m == nil {
		return mcp.NewToolResultText("No mesocycle is active."), nil
	}
	return jsonResult(m)
}

func (h *handlers) getTrainingSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""), h.now(), 56)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	period := req.GetString("period", analytics.PeriodWeek)
	if period != analytics.PeriodWeek && period != analytics.PeriodMonth {
		return mcp.NewToolResultError("period must be week or month"), nil
	}
	summary, err := h.ds.TrainingSummary(ctx, period, start, end)
	if err != nil {
		return h.queryFailed(req.Params.Name, err)
	}
	if summary == nil {
		summary = []analytics.PeriodSummary{}
	}
	return jsonResult(summary)
}

func (h *handlers) getTrainingIntensity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""), h.now(), 28)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	report, err := h.ds.TrainingIntensity(ctx, start, end)
	if err != nil {
		return h.queryFailed(req.Params.Name, err)
	}
	return jsonResult(report)
}
