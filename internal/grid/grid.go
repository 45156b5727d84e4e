// Package grid holds the toroidal cell grid, its immutable snapshots, and
// the wrap-around neighbor arithmetic used during generation.
package grid

// Cell is one grid position's current value. A successful generation sets
// Text and clears Err; a failed one records the failure message in Err and
// leaves the previous Text in place. Keeping the failure out of Text means
// an error indicator can never be mistaken for generated content.
type Cell struct {
	Text string `json:"text"`
	Err  string `json:"error,omitempty"`
}

// Coord identifies a cell by its (x, y) position. x grows east, y grows
// south.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Grid is a fixed-size two-dimensional array of cells, logically toroidal
// on both axes. Grid does no locking of its own; the engine that owns it
// serializes access.
type Grid struct {
	cols, rows int
	cells      [][]Cell // indexed [y][x]
}

// New allocates an empty cols×rows grid. Dimensions below 1 are clamped
// to 1.
func New(cols, rows int) *Grid {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	cells := make([][]Cell, rows)
	for y := range cells {
		cells[y] = make([]Cell, cols)
	}
	return &Grid{cols: cols, rows: rows, cells: cells}
}

// FromCells builds a grid from previously captured contents, as stored in a
// saved board. It returns false when the cell slice does not match the
// declared dimensions.
func FromCells(cols, rows int, cells [][]Cell) (*Grid, bool) {
	if cols < 1 || rows < 1 || len(cells) != rows {
		return nil, false
	}
	g := New(cols, rows)
	for y, row := range cells {
		if len(row) != cols {
			return nil, false
		}
		copy(g.cells[y], row)
	}
	return g, true
}

// Cols returns the grid width.
func (g *Grid) Cols() int { return g.cols }

// Rows returns the grid height.
func (g *Grid) Rows() int { return g.rows }

// InBounds reports whether (x, y) is a valid coordinate.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.cols && y >= 0 && y < g.rows
}

// Cell returns the cell at (x, y), or false when out of bounds.
func (g *Grid) Cell(x, y int) (Cell, bool) {
	if !g.InBounds(x, y) {
		return Cell{}, false
	}
	return g.cells[y][x], true
}

// SetText records a successful generation result, clearing any prior error
// marker. It reports false when the coordinate is outside the current
// bounds, in which case the write is dropped.
func (g *Grid) SetText(x, y int, text string) bool {
	if !g.InBounds(x, y) {
		return false
	}
	g.cells[y][x] = Cell{Text: text}
	return true
}

// SetErr records a failed generation for the cell. The previous text is
// kept so the cell degrades visibly rather than losing its last value.
// It reports false when the coordinate is outside the current bounds.
func (g *Grid) SetErr(x, y int, msg string) bool {
	if !g.InBounds(x, y) {
		return false
	}
	g.cells[y][x].Err = msg
	return true
}

// Cells returns a deep copy of the current contents, row-major.
func (g *Grid) Cells() [][]Cell {
	out := make([][]Cell, g.rows)
	for y := range g.cells {
		out[y] = make([]Cell, g.cols)
		copy(out[y], g.cells[y])
	}
	return out
}

// Resize returns a new cols×rows grid containing the overlapping top-left
// region of g's contents; cells outside the old bounds start empty. The
// receiver is left untouched, so tasks still holding it are unaffected.
func (g *Grid) Resize(cols, rows int) *Grid {
	ng := New(cols, rows)
	for y := 0; y < min(g.rows, ng.rows); y++ {
		copy(ng.cells[y], g.cells[y][:min(g.cols, ng.cols)])
	}
	return ng
}

// Snapshot captures the current cell texts as an independently-owned copy.
func (g *Grid) Snapshot() *Snapshot {
	text := make([][]string, g.rows)
	for y, row := range g.cells {
		text[y] = make([]string, g.cols)
		for x, c := range row {
			text[y][x] = c.Text
		}
	}
	return &Snapshot{cols: g.cols, rows: g.rows, text: text}
}

// Snapshot is an immutable copy of a grid's texts, taken at the start of a
// generation pass. Neighbor reads during the pass go through the snapshot,
// so writes the pass makes to the live grid are never observed by it.
type Snapshot struct {
	cols, rows int
	text       [][]string
}

// Cols returns the snapshot width.
func (s *Snapshot) Cols() int { return s.cols }

// Rows returns the snapshot height.
func (s *Snapshot) Rows() int { return s.rows }

// Text returns the captured text at (x, y), wrapping both axes toroidally.
func (s *Snapshot) Text(x, y int) string {
	x = ((x % s.cols) + s.cols) % s.cols
	y = ((y % s.rows) + s.rows) % s.rows
	return s.text[y][x]
}

// Neighborhood is a cell's captured text together with its four adjacent
// texts. The grid wraps, so every cell has exactly four neighbors.
type Neighborhood struct {
	Current string
	North   string
	South   string
	West    string
	East    string
}

// Neighborhood resolves the 4-neighborhood of (x, y) from the snapshot.
func (s *Snapshot) Neighborhood(x, y int) Neighborhood {
	return Neighborhood{
		Current: s.Text(x, y),
		North:   s.Text(x, y-1),
		South:   s.Text(x, y+1),
		West:    s.Text(x-1, y),
		East:    s.Text(x+1, y),
	}
}
