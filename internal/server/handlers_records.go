package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/liftlog/internal/models"
)

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	var (
		list []models.Exercise
		err  error
	)
	if c := r.URL.Query().Get("category"); c != "" {
		category := models.ExerciseCategory(c)
		if !category.Valid() {
			writeBadRequest(w, "unknown category "+c)
			return
		}
		list, err = s.db.ExercisesByCategory(r.Context(), category)
	} else {
		list, err = s.db.ListExercises(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if m := r.URL.Query().Get("muscle"); m != "" {
		group := models.MuscleGroup(m)
		if !group.Valid() {
			writeBadRequest(w, "unknown muscle group "+m)
			return
		}
		filtered := make([]models.Exercise, 0, len(list))
		for i := range list {
			if list[i].Targets(group) {
				filtered = append(filtered, list[i])
			}
		}
		list = filtered
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	e, err := s.db.GetExercise(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	var e models.Exercise
	if !decodeJSON(w, r, &e) {
		return
	}
	id, err := s.db.CreateExercise(r.Context(), e)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.db.GetExercise(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	var patch models.ExercisePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.db.UpdateExercise(r.Context(), id, patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleGetExercise(w, r)
}

func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteExercise(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	win, err := parseWindow(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var list []models.Workout
	switch {
	case q.Get("mesocycle") != "":
		list, err = s.db.WorkoutsByMesocycle(r.Context(), q.Get("mesocycle"))
	case !win.Start.IsZero() || !win.End.IsZero():
		end := win.End
		if end.IsZero() {
			end = s.db.Now().Add(models.FutureTolerance)
		}
		list, err = s.db.WorkoutsInRange(r.Context(), win.Start, end)
	case limit > 0:
		list, err = s.db.RecentWorkouts(r.Context(), limit)
	default:
		list, err = s.db.ListWorkouts(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	wo, err := s.db.GetWorkout(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wo)
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var wo models.Workout
	if !decodeJSON(w, r, &wo) {
		return
	}
	id, err := s.db.CreateWorkout(r.Context(), wo)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.db.GetWorkout(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateWorkout(w http.ResponseWriter, r *http.Request) {
	var patch models.WorkoutPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if err := s.db.UpdateWorkout(r.Context(), chi.URLParam(r, "id"), patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleGetWorkout(w, r)
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteWorkout(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	var (
		list []models.TrainingSession
		err  error
	)
	q := r.URL.Query()
	switch {
	case q.Get("workout") != "":
		list, err = s.db.SessionsByWorkout(r.Context(), q.Get("workout"))
	case q.Get("exercise") != "":
		list, err = s.db.SessionsByExercise(r.Context(), q.Get("exercise"))
	default:
		list, err = s.db.ListSessions(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ts, err := s.db.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ts)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var ts models.TrainingSession
	if !decodeJSON(w, r, &ts) {
		return
	}
	id, err := s.db.CreateSession(r.Context(), ts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.db.GetSession(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var patch models.SessionPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if err := s.db.UpdateSession(r.Context(), chi.URLParam(r, "id"), patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleGetSession(w, r)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
