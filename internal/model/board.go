package model

import (
	"time"

	"github.com/seantiz/textlife/internal/grid"
)

// Board is a named save slot holding a full copy of the grid contents at
// save time. Boards are point-in-time saves the user asks for explicitly;
// the engine never writes them on its own, and no step-by-step history is
// kept.
type Board struct {
	Name      string        `json:"name"`
	Cols      int           `json:"cols"`
	Rows      int           `json:"rows"`
	Cells     [][]grid.Cell `json:"cells"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// BoardInfo is the list representation of a board, without cell contents.
type BoardInfo struct {
	Name      string    `json:"name"`
	Cols      int       `json:"cols"`
	Rows      int       `json:"rows"`
	UpdatedAt time.Time `json:"updated_at"`
}
