package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/claude/liftlog/internal/analytics"
	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// writeConfig points a config file at a fresh store in a temp dir.
func writeConfig(t *testing.T) (cfgPath, storePath string) {
	t.Helper()
	dir := t.TempDir()
	storePath = filepath.Join(dir, "liftlog.db")
	cfgPath = filepath.Join(dir, "liftlog.yaml")
	yaml := fmt.Sprintf("store:\n  path: %q\n  seed_exercises: false\nprogression:\n  timezone: UTC\n", storePath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o644))
	return cfgPath, storePath
}

// seedStore writes one exercise and one completed workout.
func seedStore(t *testing.T, storePath string) {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, storePath, slog.New(slog.NewTextHandler(io.Discard, nil)), storage.Options{})
	require.NoError(t, err)
	defer func() { require.NoError(t, db.Close()) }()

	id, err := db.CreateExercise(ctx, models.Exercise{
		Name: "Back Squat", Category: models.CategoryBarbell, MuscleGroups: []models.MuscleGroup{models.MuscleQuads},
	})
	require.NoError(t, err)
	reps := 5
	_, err = db.CreateWorkout(ctx, models.Workout{
		Date:      time.Now().Add(-24 * time.Hour),
		Completed: true,
		Exercises: []models.WorkoutExercise{{ExerciseID: id, Sets: []models.WorkoutSet{
			{SetNumber: 1, TargetReps: 5, ActualReps: &reps, Weight: 100, Completed: true},
			{SetNumber: 2, TargetReps: 5, ActualReps: &reps, Weight: 100, Completed: true},
		}}},
	})
	require.NoError(t, err)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand("test")
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateReportsVersion(t *testing.T) {
	cfgPath, storePath := writeConfig(t)

	out, err := run(t, "--config", cfgPath, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, storePath)
	assert.Regexp(t, `schema version (\d+) \(latest \d+\)`, out)

	_, err = os.Stat(storePath)
	assert.NoError(t, err, "migrate creates the store")
}

func TestStatsJSON(t *testing.T) {
	cfgPath, storePath := writeConfig(t)
	seedStore(t, storePath)

	out, err := run(t, "--config", cfgPath, "stats", "--json")
	require.NoError(t, err)

	var stats analytics.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 1, stats.CompletedWorkouts)
	assert.Equal(t, 2, stats.TotalSets)
	assert.InDelta(t, 1000.0, stats.TotalVolume, 0.001)
}

func TestStatsText(t *testing.T) {
	cfgPath, storePath := writeConfig(t)
	seedStore(t, storePath)

	out, err := run(t, "--config", cfgPath, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Workouts:          1 (1 completed)")
	assert.Contains(t, out, "Volume:            1000.0 kg")
}

func TestExportResetImport(t *testing.T) {
	cfgPath, storePath := writeConfig(t)
	seedStore(t, storePath)
	backupPath := filepath.Join(t.TempDir(), "backup.json")

	_, err := run(t, "--config", cfgPath, "export", "--output", backupPath)
	require.NoError(t, err)
	data, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Back Squat")

	_, err = run(t, "--config", cfgPath, "reset")
	require.Error(t, err, "reset needs --yes")

	out, err := run(t, "--config", cfgPath, "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "all data cleared")

	out, err = run(t, "--config", cfgPath, "stats", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"totalWorkouts": 0`)

	out, err = run(t, "--config", cfgPath, "import", backupPath)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 exercises, 1 workouts")

	out, err = run(t, "--config", cfgPath, "stats", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"totalWorkouts": 1`)
}

func TestImportMalformedKeepsData(t *testing.T) {
	cfgPath, storePath := writeConfig(t)
	seedStore(t, storePath)
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"workouts": {}}`), 0o644))

	_, err := run(t, "--config", cfgPath, "import", bad)
	require.Error(t, err)

	out, err := run(t, "--config", cfgPath, "stats", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"totalWorkouts": 1`)
}

func TestExportSpreadsheet(t *testing.T) {
	cfgPath, storePath := writeConfig(t)
	seedStore(t, storePath)
	xlsxPath := filepath.Join(t.TempDir(), "log.xlsx")

	_, err := run(t, "--config", cfgPath, "export", "--format", "xlsx", "-o", xlsxPath)
	require.NoError(t, err)

	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Contains(t, f.GetSheetList(), "Workouts")
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	cfgPath, _ := writeConfig(t)
	_, err := run(t, "--config", cfgPath, "export", "--format", "csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestInvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "liftlog.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("server:\n  port: 0\n"), 0o644))

	_, err := run(t, "--config", cfgPath, "stats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}

func TestNewLoggerWritesFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "liftlog.log")
	log, closer := newLogger(config.LogConfig{Level: "debug", File: logPath, MaxSizeMB: 1, MaxBackups: 1}, io.Discard)
	require.NotNil(t, closer)

	log.Debug("hello", "k", "v")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=hello k=v")
}

func TestNewLoggerFallback(t *testing.T) {
	buf := &bytes.Buffer{}
	log, closer := newLogger(config.LogConfig{Level: "warn"}, buf)
	assert.Nil(t, closer)

	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestImportAlphaExport(t *testing.T) {
	cfgPath, _ := writeConfig(t)
	export := filepath.Join(t.TempDir(), "alpha.csv")
	require.NoError(t, os.WriteFile(export, []byte(
		"\"Legs\";\"2026-02-19 17:30 h\";\"1:02 hr\"\n"+
			"\"1. Hack Squats · Machine · 8 reps\"\n"+
			"#;KG;REPS;RIR\n"+
			"1;115;8;1\n"), 0o644))

	out, err := run(t, "--config", cfgPath, "import", "--format", "alpha", export)
	require.NoError(t, err)
	assert.Contains(t, out, "created 1 workouts (0 sessions skipped), 1 new exercises")

	out, err = run(t, "--config", cfgPath, "import", "-f", "alpha", export)
	require.NoError(t, err)
	assert.Contains(t, out, "created 0 workouts (1 sessions skipped)")
}
