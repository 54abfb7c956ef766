package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// defaultProfileName names the profile created by the first PUT.
const defaultProfileName = "Athlete"

func (s *Server) handleListMesocycles(w http.ResponseWriter, r *http.Request) {
	var (
		list []models.Mesocycle
		err  error
	)
	if v := r.URL.Query().Get("status"); v != "" {
		status := models.MesocycleStatus(v)
		if !status.Valid() {
			writeBadRequest(w, "unknown status "+v)
			return
		}
		list, err = s.db.MesocyclesByStatus(r.Context(), status)
	} else {
		list, err = s.db.ListMesocycles(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleActiveMesocycle(w http.ResponseWriter, r *http.Request) {
	m, err := s.db.ActiveMesocycle(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if m == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active mesocycle"})
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleGetMesocycle(w http.ResponseWriter, r *http.Request) {
	m, err := s.db.GetMesocycle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleCreateMesocycle(w http.ResponseWriter, r *http.Request) {
	var m models.Mesocycle
	if !decodeJSON(w, r, &m) {
		return
	}
	id, err := s.db.CreateMesocycle(r.Context(), m)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.db.GetMesocycle(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateMesocycle(w http.ResponseWriter, r *http.Request) {
	var patch models.MesocyclePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if err := s.db.UpdateMesocycle(r.Context(), chi.URLParam(r, "id"), patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleGetMesocycle(w, r)
}

func (s *Server) handleDeleteMesocycle(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteMesocycle(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNextSplit(w http.ResponseWriter, r *http.Request) {
	day, err := s.engine.NextSplitDayFor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if day == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "mesocycle has no split days"})
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// handleStartFromSplit returns an unsaved workout prefilled from a split
// day. The client saves it with POST /workouts once it is logged.
func (s *Server) handleStartFromSplit(w http.ResponseWriter, r *http.Request) {
	splitDay := r.URL.Query().Get("split_day")
	if splitDay == "" {
		writeBadRequest(w, "split_day parameter required")
		return
	}
	draft, err := s.engine.StartWorkoutFromSplit(r.Context(), chi.URLParam(r, "id"), splitDay)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.db.Profile(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handlePutProfile updates the profile, creating it on first use.
func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var patch models.ProfilePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	p, err := s.db.Profile(r.Context())
	var nf *storage.NotFoundError
	if errors.As(err, &nf) {
		p, err = s.db.EnsureProfile(r.Context(), defaultProfileName)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.db.UpdateProfile(r.Context(), p.ID, patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleGetProfile(w, r)
}

// handleDeleteProfile removes the device profile. Training data is kept.
func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.db.Profile(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.db.DeleteProfile(r.Context(), p.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
