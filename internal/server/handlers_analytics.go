package server

import (
	"net/http"

	"github.com/claude/liftlog/internal/analytics"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	workouts, err := s.db.ListWorkouts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.ComputeStats(workouts, s.db.Now(), s.engine.Location()))
}

func (s *Server) exerciseParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.URL.Query().Get("exercise")
	if id == "" {
		writeBadRequest(w, "exercise parameter required")
		return "", false
	}
	if _, err := s.db.GetExercise(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return "", false
	}
	return id, true
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	id, ok := s.exerciseParam(w, r)
	if !ok {
		return
	}
	workouts, err := s.db.CompletedWorkouts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.PersonalRecords(workouts, id))
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	id, ok := s.exerciseParam(w, r)
	if !ok {
		return
	}
	workouts, err := s.db.CompletedWorkouts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	points := analytics.ProgressTrend(workouts, id)
	if points == nil {
		points = []analytics.TrendPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleMuscleGroups(w http.ResponseWriter, r *http.Request) {
	win, err := parseWindow(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	workouts, err := s.db.ListWorkouts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	index, err := s.db.ExerciseIndex(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.MuscleGroupVolumes(workouts, index, win))
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	win, err := parseWindow(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	workouts, err := s.db.CompletedWorkouts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	days := analytics.Calendar(workouts, win.Start, win.End, s.engine.Location())
	if days == nil {
		days = []analytics.CalendarDay{}
	}
	writeJSON(w, http.StatusOK, days)
}

func (s *Server) handleIntensity(w http.ResponseWriter, r *http.Request) {
	win, err := parseWindow(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	workouts, err := s.db.CompletedWorkouts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	index, err := s.db.ExerciseIndex(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.TrainingIntensity(workouts, index, win))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	win, err := parseWindow(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	period := r.URL.Query().Get("period")
	if period == "" {
		period = analytics.PeriodWeek
	}
	workouts, err := s.db.CompletedWorkouts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	summary, err := analytics.VolumeByPeriod(workouts, period, win, s.engine.Location(), s.engine.FirstDayOfWeek(r.Context()))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
