package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/seantiz/textlife/internal/engine"
	"github.com/seantiz/textlife/internal/grid"
)

// gridResponse is the JSON body for GET /v1/grid.
type gridResponse struct {
	Cols     int           `json:"cols"`
	Rows     int           `json:"rows"`
	Cells    [][]grid.Cell `json:"cells"`
	InFlight []grid.Coord  `json:"in_flight"`
	StepID   string        `json:"step_id,omitempty"`
	Stepping bool          `json:"step_in_progress"`
}

type resizeRequest struct {
	Size int `json:"size"`
}

type stepRequest struct {
	Rule string `json:"rule"`
}

type cellRequest struct {
	Rule string `json:"rule,omitempty"`
	Text string `json:"text,omitempty"`
}

func (s *Server) handleGetGrid(w http.ResponseWriter, r *http.Request) {
	cols, rows := s.engine.Dims()
	stepID, stepping := s.engine.StepInProgress()

	inflight := s.engine.InFlight()
	if inflight == nil {
		inflight = []grid.Coord{}
	}

	s.writeJSON(w, http.StatusOK, gridResponse{
		Cols:     cols,
		Rows:     rows,
		Cells:    s.engine.Cells(),
		InFlight: inflight,
		StepID:   stepID,
		Stepping: stepping,
	})
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	if err := s.engine.Resize(req.Size); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cols, rows := s.engine.Dims()
	s.writeJSON(w, http.StatusOK, map[string]int{"cols": cols, "rows": rows})
}

func (s *Server) handleRunStep(w http.ResponseWriter, r *http.Request) {
	var req stepRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Rule == "" {
		s.writeError(w, http.StatusBadRequest, "rule is required")
		return
	}

	// The step outlives this request; it is joined via engine.Wait at
	// shutdown, not tied to the request context.
	stepID, err := s.engine.StartStep(context.Background(), req.Rule)
	if errors.Is(err, engine.ErrStepInProgress) {
		s.writeError(w, http.StatusConflict, "a step is already in progress")
		return
	}
	if errors.Is(err, engine.ErrUpdateInFlight) {
		s.writeError(w, http.StatusConflict, "single-cell updates are still in flight")
		return
	}
	if err != nil {
		s.logger.Error("start step", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to start step")
		return
	}

	s.writeJSON(w, http.StatusAccepted, map[string]string{"step_id": stepID})
}

func (s *Server) handleGenerateCell(w http.ResponseWriter, r *http.Request) {
	x, y, ok := s.cellCoords(w, r)
	if !ok {
		return
	}

	var req cellRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Rule == "" {
		s.writeError(w, http.StatusBadRequest, "rule is required")
		return
	}

	err := s.engine.StartCellUpdate(context.Background(), x, y, req.Rule)
	switch {
	case errors.Is(err, engine.ErrOutOfBounds):
		s.writeError(w, http.StatusBadRequest, "coordinate is outside the grid")
	case errors.Is(err, engine.ErrCellBusy):
		s.writeError(w, http.StatusConflict, "cell already has an update in flight")
	case errors.Is(err, engine.ErrStepInProgress):
		s.writeError(w, http.StatusConflict, "a step is already in progress")
	case err != nil:
		s.logger.Error("start cell update", "x", x, "y", y, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to start cell update")
	default:
		s.writeJSON(w, http.StatusAccepted, grid.Coord{X: x, Y: y})
	}
}

func (s *Server) handleSetCell(w http.ResponseWriter, r *http.Request) {
	x, y, ok := s.cellCoords(w, r)
	if !ok {
		return
	}

	var req cellRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	if err := s.engine.SetCellText(x, y, req.Text); err != nil {
		s.writeError(w, http.StatusBadRequest, "coordinate is outside the grid")
		return
	}
	s.writeJSON(w, http.StatusOK, grid.Coord{X: x, Y: y})
}

// cellCoords parses the {x}/{y} URL parameters.
func (s *Server) cellCoords(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	x, errX := strconv.Atoi(chi.URLParam(r, "x"))
	y, errY := strconv.Atoi(chi.URLParam(r, "y"))
	if errX != nil || errY != nil {
		s.writeError(w, http.StatusBadRequest, "cell coordinates must be integers")
		return 0, 0, false
	}
	return x, y, true
}
