package storage

import (
	"context"
	"log/slog"

	"github.com/claude/liftlog/internal/schema"
)

// Versions returns the schema history of the store, oldest first.
//
//  1. integer-keyed profiles, exercises, workouts, sessions
//  2. mesocycles; workouts gain mesocycle, split day, duration and feedback
//  3. text-keyed shadow tables for the four integer-keyed tables; rows are
//     copied with new identifiers and the legacy tables are emptied
//  4. the empty legacy tables are dropped
//  5. secondary indexes for the read API
//  6. training sessions gain an update time, backfilled from creation
func Versions(logger *slog.Logger) []schema.Version {
	return []schema.Version{
		{
			Number: 1,
			Tables: []schema.TableDef{
				{
					Name: "user_profiles",
					Create: `CREATE TABLE user_profiles (
						id               INTEGER PRIMARY KEY AUTOINCREMENT,
						name             TEXT NOT NULL,
						experience_level TEXT NOT NULL DEFAULT 'beginner',
						preferences      TEXT NOT NULL DEFAULT '{}',
						created_at       TEXT NOT NULL
					)`,
					KeyColumn: "id", KeyType: "INTEGER",
				},
				{
					Name: "exercises",
					Create: `CREATE TABLE exercises (
						id            INTEGER PRIMARY KEY AUTOINCREMENT,
						name          TEXT NOT NULL,
						category      TEXT NOT NULL,
						muscle_groups TEXT NOT NULL DEFAULT '[]',
						equipment     TEXT,
						notes         TEXT,
						is_custom     INTEGER NOT NULL DEFAULT 0,
						created_at    TEXT NOT NULL
					)`,
					KeyColumn: "id", KeyType: "INTEGER",
				},
				legacyWorkoutsV1,
				{
					Name: "training_sessions",
					Create: `CREATE TABLE training_sessions (
						id          INTEGER PRIMARY KEY AUTOINCREMENT,
						workout_id  INTEGER NOT NULL,
						exercise_id INTEGER NOT NULL,
						date        TEXT NOT NULL,
						pump        INTEGER,
						soreness    INTEGER,
						fatigue     INTEGER,
						performance TEXT,
						notes       TEXT,
						created_at  TEXT NOT NULL
					)`,
					KeyColumn: "id", KeyType: "INTEGER",
				},
			},
		},
		{
			Number: 2,
			Tables: []schema.TableDef{
				mesocyclesTable,
				legacyWorkoutsV2,
			},
			AddColumns: []schema.Column{
				{Table: "workouts", Name: "mesocycle_id", Decl: "TEXT"},
				{Table: "workouts", Name: "week_number", Decl: "INTEGER"},
				{Table: "workouts", Name: "split_day_id", Decl: "TEXT"},
				{Table: "workouts", Name: "duration_minutes", Decl: "INTEGER"},
				{Table: "workouts", Name: "feedback", Decl: "TEXT"},
			},
		},
		{
			Number: 3,
			Tables: []schema.TableDef{
				{
					Name: TableProfiles,
					Create: `CREATE TABLE user_profiles_v2 (
						id               TEXT PRIMARY KEY,
						name             TEXT NOT NULL,
						experience_level TEXT NOT NULL,
						preferences      TEXT NOT NULL,
						created_at       TEXT NOT NULL,
						updated_at       TEXT NOT NULL
					)`,
					KeyColumn: "id", KeyType: "TEXT",
				},
				{
					Name: TableExercises,
					Create: `CREATE TABLE exercises_v2 (
						id            TEXT PRIMARY KEY,
						name          TEXT NOT NULL,
						name_key      TEXT NOT NULL,
						category      TEXT NOT NULL,
						muscle_groups TEXT NOT NULL,
						equipment     TEXT NOT NULL DEFAULT '',
						notes         TEXT NOT NULL DEFAULT '',
						is_custom     INTEGER NOT NULL DEFAULT 0,
						created_at    TEXT NOT NULL,
						updated_at    TEXT NOT NULL
					)`,
					KeyColumn: "id", KeyType: "TEXT",
				},
				{
					Name: TableWorkouts,
					Create: `CREATE TABLE workouts_v2 (
						id               TEXT PRIMARY KEY,
						date             TEXT NOT NULL,
						mesocycle_id     TEXT NOT NULL DEFAULT '',
						week_number      INTEGER NOT NULL DEFAULT 0,
						split_day_id     TEXT NOT NULL DEFAULT '',
						exercises        TEXT NOT NULL DEFAULT '[]',
						notes            TEXT NOT NULL DEFAULT '',
						completed        INTEGER NOT NULL DEFAULT 0,
						duration_minutes INTEGER,
						feedback         TEXT,
						created_at       TEXT NOT NULL,
						updated_at       TEXT NOT NULL
					)`,
					KeyColumn: "id", KeyType: "TEXT",
				},
				{
					Name: TableSessions,
					Create: `CREATE TABLE training_sessions_v2 (
						id          TEXT PRIMARY KEY,
						workout_id  TEXT NOT NULL,
						exercise_id TEXT NOT NULL,
						date        TEXT NOT NULL,
						pump        INTEGER NOT NULL,
						soreness    INTEGER NOT NULL,
						fatigue     INTEGER NOT NULL,
						performance TEXT NOT NULL,
						notes       TEXT NOT NULL DEFAULT '',
						created_at  TEXT NOT NULL
					)`,
					KeyColumn: "id", KeyType: "TEXT",
				},
			},
			Upgrade: newKeyUpgrade(logger).run,
		},
		{
			Number: 4,
			Drop:   []string{"user_profiles", "exercises", "workouts", "training_sessions"},
		},
		{
			Number: 5,
			Indexes: []schema.Index{
				{Table: TableWorkouts, Create: `CREATE INDEX IF NOT EXISTS idx_workouts_v2_date ON workouts_v2(date)`},
				{Table: TableWorkouts, Create: `CREATE INDEX IF NOT EXISTS idx_workouts_v2_mesocycle ON workouts_v2(mesocycle_id, date)`},
				{Table: TableSessions, Create: `CREATE INDEX IF NOT EXISTS idx_sessions_v2_workout ON training_sessions_v2(workout_id)`},
				{Table: TableSessions, Create: `CREATE INDEX IF NOT EXISTS idx_sessions_v2_exercise ON training_sessions_v2(exercise_id)`},
				{Table: TableExercises, Create: `CREATE INDEX IF NOT EXISTS idx_exercises_v2_category ON exercises_v2(category)`},
				{Table: TableExercises, Create: `CREATE INDEX IF NOT EXISTS idx_exercises_v2_name_key ON exercises_v2(name_key)`},
				{Table: TableMesocycles, Create: `CREATE INDEX IF NOT EXISTS idx_mesocycles_status ON mesocycles(status)`},
			},
		},
		{
			Number: 6,
			Tables: []schema.TableDef{sessionsTable},
			AddColumns: []schema.Column{
				{Table: TableSessions, Name: "updated_at", Decl: "TEXT NOT NULL DEFAULT ''"},
			},
			Upgrade: func(ctx context.Context, tx *schema.Tx) error {
				return tx.Exec(ctx, `UPDATE training_sessions_v2 SET updated_at = created_at WHERE updated_at = ''`)
			},
		},
	}
}

var sessionsTable = schema.TableDef{
	Name: TableSessions,
	Create: `CREATE TABLE training_sessions_v2 (
		id          TEXT PRIMARY KEY,
		workout_id  TEXT NOT NULL,
		exercise_id TEXT NOT NULL,
		date        TEXT NOT NULL,
		pump        INTEGER NOT NULL,
		soreness    INTEGER NOT NULL,
		fatigue     INTEGER NOT NULL,
		performance TEXT NOT NULL,
		notes       TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL DEFAULT ''
	)`,
	KeyColumn: "id", KeyType: "TEXT",
}

var legacyWorkoutsV1 = schema.TableDef{
	Name: "workouts",
	Create: `CREATE TABLE workouts (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		date       TEXT NOT NULL,
		exercises  TEXT NOT NULL DEFAULT '[]',
		notes      TEXT,
		completed  INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	)`,
	KeyColumn: "id", KeyType: "INTEGER",
}

// legacyWorkoutsV2 is the v1 workouts table after the v2 additive columns.
var legacyWorkoutsV2 = schema.TableDef{
	Name: "workouts",
	Create: `CREATE TABLE workouts (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		date             TEXT NOT NULL,
		exercises        TEXT NOT NULL DEFAULT '[]',
		notes            TEXT,
		completed        INTEGER NOT NULL DEFAULT 0,
		created_at       TEXT NOT NULL,
		mesocycle_id     TEXT,
		week_number      INTEGER,
		split_day_id     TEXT,
		duration_minutes INTEGER,
		feedback         TEXT
	)`,
	KeyColumn: "id", KeyType: "INTEGER",
}

var mesocyclesTable = schema.TableDef{
	Name: TableMesocycles,
	Create: `CREATE TABLE mesocycles (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		start_date     TEXT NOT NULL,
		end_date       TEXT NOT NULL,
		duration_weeks INTEGER NOT NULL,
		current_week   INTEGER NOT NULL DEFAULT 1,
		deload_week    INTEGER NOT NULL,
		training_split TEXT NOT NULL,
		split_days     TEXT NOT NULL DEFAULT '[]',
		status         TEXT NOT NULL DEFAULT 'planned',
		notes          TEXT NOT NULL DEFAULT '',
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	)`,
	KeyColumn: "id", KeyType: "TEXT",
}
