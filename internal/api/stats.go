package api

import (
	"net/http"

	"github.com/seantiz/textlife/internal/engine"
)

// statsResponse is the JSON response for GET /v1/stats.
type statsResponse struct {
	engine.Stats
	SavedBoards int `json:"saved_boards"`
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	boards, err := s.store.CountBoards(r.Context())
	if err != nil {
		s.logger.Error("count boards", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	s.writeJSON(w, http.StatusOK, statsResponse{
		Stats:       s.engine.Stats(),
		SavedBoards: boards,
	})
}

// handleListProviders returns the registered generation provider names.
func (s *Server) handleListProviders(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"providers": s.registry.List()})
}
