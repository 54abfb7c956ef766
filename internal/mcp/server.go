package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/liftlog/internal/models"
)

const baseInstructions = "liftlog training log. Read-only access to workouts, personal records, progress trends, muscle-group volume and the active mesocycle."

// profileLookupTimeout bounds the profile read made while building the
// server instructions.
const profileLookupTimeout = 5 * time.Second

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	ctx, cancel := context.WithTimeout(context.Background(), profileLookupTimeout)
	defer cancel()

	s := server.NewMCPServer("liftlog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions(instructions(ctx, ds, log)),
	)

	h := &handlers{ds: ds, log: log, now: time.Now}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetTrainingStats, Handler: h.getTrainingStats},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
		server.ServerTool{Tool: toolGetProgressTrend, Handler: h.getProgressTrend},
		server.ServerTool{Tool: toolGetMuscleGroupVolume, Handler: h.getMuscleGroupVolume},
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
		server.ServerTool{Tool: toolGetActiveMesocycle, Handler: h.getActiveMesocycle},
		server.ServerTool{Tool: toolGetTrainingSummary, Handler: h.getTrainingSummary},
		server.ServerTool{Tool: toolGetTrainingIntensity, Handler: h.getTrainingIntensity},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resProfile, Handler: h.profile},
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
		server.ServerResource{Resource: resExerciseLibrary, Handler: h.exerciseLibrary},
	)

	return s
}

// instructions names the weight unit of the athlete's profile. Kilograms
// are assumed when there is no profile.
func instructions(ctx context.Context, ds DataSource, log *slog.Logger) string {
	p, err := ds.Profile(ctx)
	if err != nil {
		log.Warn("reading profile for server instructions", "error", err)
	}
	unit := "kilograms"
	if p != nil && p.Preferences.Units == models.UnitsImperial {
		unit = "pounds"
	}
	return baseInstructions + " Weights are in " + unit + "."
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
	now func() time.Time
}

// --- Resource definitions ---

var resProfile = mcp.NewResource(
	"liftlog://profile",
	"Profile",
	mcp.WithResourceDescription("The athlete profile: experience level, goals and preferences"),
	mcp.WithMIMEType("application/json"),
)

var resRecentWorkouts = mcp.NewResource(
	"liftlog://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("The 10 most recent workouts with all sets"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseLibrary = mcp.NewResource(
	"liftlog://exercise_library",
	"Exercise Library",
	mcp.WithResourceDescription("Every exercise with its category and muscle groups"),
	mcp.WithMIMEType("application/json"),
)
