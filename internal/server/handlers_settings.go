package server

import (
	"encoding/json"
	"net/http"

	"github.com/claude/replog/internal/settings"
)

type unitResponse struct {
	Unit  settings.WeightUnit `json:"unit"`
	Label string              `json:"label"`
}

func (s *Server) handleGetUnit(w http.ResponseWriter, r *http.Request) {
	if s.deps.Units == nil {
		writeJSON(w, http.StatusOK, unitResponse{Unit: settings.DefaultWeightUnit, Label: settings.DefaultWeightUnit.Label()})
		return
	}
	u, err := s.deps.Units.WeightUnit(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, unitResponse{Unit: u, Label: u.Label()})
}

func (s *Server) handlePutUnit(w http.ResponseWriter, r *http.Request) {
	if s.deps.Units == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "settings not configured"})
		return
	}
	var req struct {
		Unit string `json:"unit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	u, err := settings.ParseWeightUnit(req.Unit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.deps.Units.SetWeightUnit(r.Context(), u); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, unitResponse{Unit: u, Label: u.Label()})
}
