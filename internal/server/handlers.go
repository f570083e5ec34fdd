package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/claude/replog/internal/session"
	"github.com/claude/replog/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFromRequest(r))
}

func (s *Server) handleWorkoutTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"types":     s.deps.Catalog.Types(),
		"templates": s.deps.Catalog.Templates(),
	})
}

type composeRequest struct {
	Title     string   `json:"title"`
	Exercises []string `json:"exercises"`
}

// handleCompose runs a create-workout form. On success the workout joins the
// catalog; on failure the form state with its flags is returned.
func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	var req composeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	c := session.NewComposer()
	c.Fill(req.Title, req.Exercises)
	workout, ok := c.Submit()
	if !ok {
		s.deps.Metrics.Rejected("compose")
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": "validation failed",
			"form":  c.View(),
		})
		return
	}

	s.deps.Catalog.AddComposed(workout)
	s.deps.Metrics.Composed()
	s.log.Info("workout composed", "title", workout.Title, "exercises", len(workout.Exercises))
	writeJSON(w, http.StatusCreated, workout)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "history not configured"})
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	rows, err := s.deps.History.QueryHistory(r.Context(), userFromRequest(r).ID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleHistoryWorkout(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "history not configured"})
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}
	detail, err := s.deps.History.GetLoggedWorkout(r.Context(), id, userFromRequest(r).ID)
	if errors.Is(err, storage.ErrWorkoutNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleHistoryStats(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "history not configured"})
		return
	}
	stats, err := s.deps.History.GetHistoryStats(r.Context(), userFromRequest(r).ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
