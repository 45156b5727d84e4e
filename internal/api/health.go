package api

import "net/http"

// healthResponse carries enough engine state for a probe to tell a wedged
// instance from a merely idle one.
type healthResponse struct {
	Status   string `json:"status"`
	Cols     int    `json:"cols"`
	Rows     int    `json:"rows"`
	Stepping bool   `json:"step_in_progress"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	cols, rows := s.engine.Dims()
	_, stepping := s.engine.StepInProgress()

	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Cols:     cols,
		Rows:     rows,
		Stepping: stepping,
	})
}
