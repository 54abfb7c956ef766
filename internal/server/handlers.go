package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/liftlog/internal/analytics"
	"github.com/claude/liftlog/internal/backup"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// writeError maps store and import errors to status codes. Anything
// unrecognized is logged and reported as 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *models.ValidationError
		rerr *storage.ReferentialIntegrityError
		nerr *storage.NotFoundError
		ferr *backup.ImportFormatError
		merr *http.MaxBytesError
		perr *alpha.ParseError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      err.Error(),
			"violations": verr.Violations,
		})
	case errors.As(err, &rerr):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      err.Error(),
			"references": rerr.References,
		})
	case errors.As(err, &nerr):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &ferr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error(), "field": ferr.Field})
	case errors.As(err, &perr):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error(), "line": perr.Line})
	case errors.As(err, &merr):
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
	default:
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

// decodeJSON reads the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

// parseTime accepts RFC 3339 timestamps or plain dates. A plain date used
// as an upper bound covers that whole day.
func parseTime(v string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want RFC 3339 or YYYY-MM-DD", v)
	}
	if endOfDay {
		t = t.Add(24 * time.Hour)
	}
	return t, nil
}

// parseWindow reads optional start and end query parameters. Missing
// bounds are open.
func parseWindow(r *http.Request) (analytics.Window, error) {
	var win analytics.Window
	var err error
	if v := r.URL.Query().Get("start"); v != "" {
		if win.Start, err = parseTime(v, false); err != nil {
			return win, err
		}
	}
	if v := r.URL.Query().Get("end"); v != "" {
		if win.End, err = parseTime(v, true); err != nil {
			return win, err
		}
	}
	if !win.Start.IsZero() && !win.End.IsZero() && !win.End.After(win.Start) {
		return win, fmt.Errorf("end must be after start")
	}
	return win, nil
}

func parseLimit(r *http.Request) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("limit must be a positive integer")
	}
	return n, nil
}
