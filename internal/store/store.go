// Package store persists named board save slots.
package store

import (
	"context"
	"errors"

	"github.com/seantiz/textlife/internal/model"
)

// ErrNotFound is returned when a board is not found.
var ErrNotFound = errors.New("board not found")

// Store defines the persistence operations for boards. Saving an existing
// name overwrites that slot.
type Store interface {
	SaveBoard(ctx context.Context, b *model.Board) error
	GetBoard(ctx context.Context, name string) (*model.Board, error)
	ListBoards(ctx context.Context) ([]model.BoardInfo, error)
	DeleteBoard(ctx context.Context, name string) error
	CountBoards(ctx context.Context) (int, error)
	Close() error
}
