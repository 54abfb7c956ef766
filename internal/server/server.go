package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/progression"
	"github.com/claude/liftlog/internal/storage"
)

// maxImportBytes bounds the body of an import request.
const maxImportBytes = 64 << 20

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       *storage.DB
	engine   *progression.Engine
	alpha    *alpha.Importer
	log      *slog.Logger
	gatherer prometheus.Gatherer
	apiKey   string
	router   chi.Router
}

// Options configures New.
type Options struct {
	// Gatherer backs /metrics. The route is not mounted when nil.
	Gatherer prometheus.Gatherer
	// APIKey, when set, is required in the X-API-Key header of /api requests.
	APIKey string
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, engine *progression.Engine, log *slog.Logger, opts Options) *Server {
	s := &Server{
		db:       db,
		engine:   engine,
		alpha:    alpha.NewImporter(db, log, engine.Location()),
		log:      log,
		gatherer: opts.Gatherer,
		apiKey:   opts.APIKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(RequestMetrics(s.db.Metrics()))
	s.router.Use(CORS)

	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(APIKeyAuth(s.apiKey))
		}

		r.Route("/exercises", func(r chi.Router) {
			r.Get("/", s.handleListExercises)
			r.Post("/", s.handleCreateExercise)
			r.Get("/{id}", s.handleGetExercise)
			r.Patch("/{id}", s.handleUpdateExercise)
			r.Delete("/{id}", s.handleDeleteExercise)
		})
		r.Route("/workouts", func(r chi.Router) {
			r.Get("/", s.handleListWorkouts)
			r.Post("/", s.handleCreateWorkout)
			r.Get("/{id}", s.handleGetWorkout)
			r.Patch("/{id}", s.handleUpdateWorkout)
			r.Delete("/{id}", s.handleDeleteWorkout)
		})
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.handleListSessions)
			r.Post("/", s.handleCreateSession)
			r.Get("/{id}", s.handleGetSession)
			r.Patch("/{id}", s.handleUpdateSession)
			r.Delete("/{id}", s.handleDeleteSession)
		})
		r.Route("/mesocycles", func(r chi.Router) {
			r.Get("/", s.handleListMesocycles)
			r.Post("/", s.handleCreateMesocycle)
			r.Get("/active", s.handleActiveMesocycle)
			r.Get("/{id}", s.handleGetMesocycle)
			r.Patch("/{id}", s.handleUpdateMesocycle)
			r.Delete("/{id}", s.handleDeleteMesocycle)
			r.Get("/{id}/next-split", s.handleNextSplit)
			r.Post("/{id}/start", s.handleStartFromSplit)
		})

		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handlePutProfile)
		r.Delete("/profile", s.handleDeleteProfile)

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/stats", s.handleStats)
			r.Get("/records", s.handleRecords)
			r.Get("/trend", s.handleTrend)
			r.Get("/muscle-groups", s.handleMuscleGroups)
			r.Get("/calendar", s.handleCalendar)
			r.Get("/intensity", s.handleIntensity)
			r.Get("/summary", s.handleSummary)
		})

		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
		r.Post("/ingest/alpha", s.handleAlphaIngest)
		r.Delete("/data", s.handleClearData)
		r.Get("/live", s.handleLive)
		r.Get("/live/stats", s.handleLiveStats)
	})
}
