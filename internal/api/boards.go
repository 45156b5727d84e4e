package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/seantiz/textlife/internal/model"
	"github.com/seantiz/textlife/internal/store"
)

// saveBoardRequest is the JSON body for POST /v1/boards.
type saveBoardRequest struct {
	Name string `json:"name"`
}

// listBoardsResponse wraps the board list response.
type listBoardsResponse struct {
	Boards []model.BoardInfo `json:"boards"`
}

func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := s.store.ListBoards(r.Context())
	if err != nil {
		s.logger.Error("list boards", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list boards")
		return
	}
	if boards == nil {
		boards = []model.BoardInfo{}
	}
	s.writeJSON(w, http.StatusOK, listBoardsResponse{Boards: boards})
}

// handleSaveBoard captures the current grid into a named save slot,
// overwriting any previous board of the same name.
func (s *Server) handleSaveBoard(w http.ResponseWriter, r *http.Request) {
	var req saveBoardRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	cols, rows := s.engine.Dims()
	b := &model.Board{
		Name:  req.Name,
		Cols:  cols,
		Rows:  rows,
		Cells: s.engine.Cells(),
	}
	if err := s.store.SaveBoard(r.Context(), b); err != nil {
		s.logger.Error("save board", "board", req.Name, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to save board")
		return
	}

	s.writeJSON(w, http.StatusCreated, model.BoardInfo{Name: b.Name, Cols: b.Cols, Rows: b.Rows})
}

// handleLoadBoard replaces the live grid with a saved board's contents.
func (s *Server) handleLoadBoard(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	b, err := s.store.GetBoard(r.Context(), name)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "board not found")
		return
	}
	if err != nil {
		s.logger.Error("get board", "board", name, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get board")
		return
	}

	if err := s.engine.Restore(b); err != nil {
		// A running step owns the grid; the load is declined, not queued.
		s.writeError(w, http.StatusConflict, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, model.BoardInfo{Name: b.Name, Cols: b.Cols, Rows: b.Rows, UpdatedAt: b.UpdatedAt})
}

func (s *Server) handleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	err := s.store.DeleteBoard(r.Context(), name)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "board not found")
		return
	}
	if err != nil {
		s.logger.Error("delete board", "board", name, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to delete board")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
