package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/seantiz/textlife/internal/grid"
	"github.com/seantiz/textlife/internal/model"

	_ "modernc.org/sqlite"
)

const createBoardsTable = `
CREATE TABLE IF NOT EXISTS boards (
    name       TEXT PRIMARY KEY,
    cols       INTEGER NOT NULL,
    rows       INTEGER NOT NULL,
    cells      TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
)`

// Compile-time interface satisfaction check.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the SQLite database at dbPath and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(createBoardsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create boards table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveBoard inserts a board, or overwrites the slot if the name exists.
// The original created_at is preserved on overwrite.
func (s *SQLiteStore) SaveBoard(ctx context.Context, b *model.Board) error {
	cells, err := json.Marshal(b.Cells)
	if err != nil {
		return fmt.Errorf("encode board cells: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO boards (name, cols, rows, cells, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			cols = excluded.cols,
			rows = excluded.rows,
			cells = excluded.cells,
			updated_at = excluded.updated_at`,
		b.Name, b.Cols, b.Rows, string(cells), now, now,
	)
	if err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	return nil
}

// GetBoard retrieves a board by name.
func (s *SQLiteStore) GetBoard(ctx context.Context, name string) (*model.Board, error) {
	b := &model.Board{}
	var cells string
	err := s.db.QueryRowContext(ctx,
		`SELECT name, cols, rows, cells, created_at, updated_at
		FROM boards WHERE name = ?`, name,
	).Scan(&b.Name, &b.Cols, &b.Rows, &cells, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}

	if err := json.Unmarshal([]byte(cells), &b.Cells); err != nil {
		return nil, fmt.Errorf("decode board cells: %w", err)
	}
	if _, ok := grid.FromCells(b.Cols, b.Rows, b.Cells); !ok {
		return nil, fmt.Errorf("board %q has inconsistent dimensions", name)
	}
	return b, nil
}

// ListBoards returns all boards without their cell contents, newest first.
func (s *SQLiteStore) ListBoards(ctx context.Context) ([]model.BoardInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, cols, rows, updated_at FROM boards ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer rows.Close()

	var infos []model.BoardInfo
	for rows.Next() {
		var info model.BoardInfo
		if err := rows.Scan(&info.Name, &info.Cols, &info.Rows, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan board: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate boards: %w", err)
	}
	return infos, nil
}

// DeleteBoard removes a board by name.
func (s *SQLiteStore) DeleteBoard(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountBoards returns the number of saved boards.
func (s *SQLiteStore) CountBoards(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM boards`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count boards: %w", err)
	}
	return n, nil
}
