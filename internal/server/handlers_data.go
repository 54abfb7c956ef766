package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/claude/liftlog/internal/analytics"
	"github.com/claude/liftlog/internal/backup"
	"github.com/claude/liftlog/internal/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := backup.Export(r.Context(), s.db)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	stamp := doc.ExportDate.Format("20060102-150405")

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="liftlog-%s.json"`, stamp))
		if err := backup.WriteJSON(doc, w); err != nil {
			s.log.Error("writing export", "error", err)
		}
	case "xlsx":
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="liftlog-%s.xlsx"`, stamp))
		if err := backup.WriteSpreadsheet(doc, w); err != nil {
			s.log.Error("writing spreadsheet export", "error", err)
		}
	default:
		writeBadRequest(w, "unknown format "+format)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	doc, err := backup.Import(r.Context(), s.db, body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info("import complete",
		"exercises", len(doc.Exercises),
		"workouts", len(doc.Workouts),
		"mesocycles", len(doc.Mesocycles),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"imported": map[string]int{
			backup.KeyUserProfiles:     len(doc.UserProfiles),
			backup.KeyExercises:        len(doc.Exercises),
			backup.KeyWorkouts:         len(doc.Workouts),
			backup.KeyTrainingSessions: len(doc.TrainingSessions),
			backup.KeyMesocycles:       len(doc.Mesocycles),
		},
	})
}

// handleAlphaIngest stores the sessions of an Alpha Progression export sent
// as the request body.
func (s *Server) handleAlphaIngest(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	result, err := s.alpha.Ingest(r.Context(), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleClearData(w http.ResponseWriter, r *http.Request) {
	if err := s.db.ClearAll(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLive streams a server-sent event for every committed write to the
// requested tables (all tables when none are given).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	var tables []string
	for _, v := range r.URL.Query()["table"] {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t == "" {
				continue
			}
			if !knownTable(t) {
				writeBadRequest(w, "unknown table "+t)
				return
			}
			tables = append(tables, t)
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming not supported"})
		return
	}

	changes, cancel := s.db.Subscribe(tables...)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "event: ready\ndata: %s\n\n", mustJSON(map[string]any{"tables": tables}))
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", mustJSON(c))
			flusher.Flush()
		}
	}
}

// handleLiveStats streams the training stats, recomputed after every
// committed workout write.
func (s *Server) handleLiveStats(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming not supported"})
		return
	}

	stats := func(ctx context.Context) (analytics.Stats, error) {
		workouts, err := s.db.ListWorkouts(ctx)
		if err != nil {
			return analytics.Stats{}, err
		}
		return analytics.ComputeStats(workouts, s.db.Now(), s.engine.Location()), nil
	}
	results := storage.Watch(r.Context(), s.db, stats, storage.TableWorkouts)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for res := range results {
		if res.Err != nil {
			s.log.Warn("live stats query failed", "error", res.Err)
			fmt.Fprintf(w, "event: error\ndata: %s\n\n", mustJSON(map[string]string{"error": res.Err.Error()}))
		} else {
			fmt.Fprintf(w, "event: stats\ndata: %s\n\n", mustJSON(res.Value))
		}
		flusher.Flush()
	}
}

func knownTable(t string) bool {
	for _, known := range storage.AllTables {
		if t == known {
			return true
		}
	}
	return false
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return `{}`
	}
	return string(b)
}
