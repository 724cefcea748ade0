package grid_world

import (
	"errors"
	"fmt"
)

// Cell identifies a grid position by row and column. Cells are plain values, so they
// compare by value and can be used directly as map keys.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// CellKind classifies a grid cell.
type CellKind int

const (
	Blocked CellKind = iota
	Passable
	Start
	Goal
)

func (kind CellKind) String() string {
	switch kind {
	case Blocked:
		return "blocked"
	case Passable:
		return "passable"
	case Start:
		return "start"
	case Goal:
		return "goal"
	}
	return fmt.Sprintf("CellKind(%d)", int(kind))
}

// IsPassable reports whether an agent may occupy a cell of this kind.
func (kind CellKind) IsPassable() bool {
	return kind == Passable || kind == Start || kind == Goal
}

// Raw grid codes, as supplied by scene descriptions.
const (
	CODE_BLOCKED  = 0
	CODE_PASSABLE = 1
	CODE_OBSTACLE = 2
	CODE_START    = 3
	CODE_GOAL     = 4
)

var (
	// ErrInvalidGrid is returned for malformed dimensions, unknown codes, or a grid
	// without exactly one start and one goal.
	ErrInvalidGrid = errors.New("invalid grid")
	// ErrNotFound is returned by Locate when no cell has the requested kind.
	ErrNotFound = errors.New("cell kind not found")
	// ErrInvalidFactor is returned by Upscale for factors below one.
	ErrInvalidFactor = errors.New("upscale factor must be a positive integer")
)

// Grid is an immutable occupancy grid. The cell data is owned by the grid and never
// mutated after construction, so a Grid may be shared freely between readers.
type Grid struct {
	rows, cols int
	kinds      []CellKind // row-major
	start      Cell
	goal       Cell
}

// New copies the passed kinds into a validated grid. The input must be rectangular,
// non-empty, and contain exactly one Start and exactly one Goal.
func New(kinds [][]CellKind) (*Grid, error) {
	grid, err := build(kinds)
	if err != nil {
		return nil, err
	}

	starts, goals := 0, 0
	for _, kind := range grid.kinds {
		switch kind {
		case Start:
			starts++
		case Goal:
			goals++
		}
	}
	if starts != 1 || goals != 1 {
		return nil, fmt.Errorf("%w: found %d start and %d goal cells, want exactly one of each",
			ErrInvalidGrid, starts, goals)
	}

	if err = grid.resolveMarkers(); err != nil {
		return nil, err
	}
	return grid, nil
}

// build copies and shape-checks the input without validating markers.
func build(kinds [][]CellKind) (*Grid, error) {
	if len(kinds) == 0 || len(kinds[0]) == 0 {
		return nil, fmt.Errorf("%w: grid has no cells", ErrInvalidGrid)
	}

	rows, cols := len(kinds), len(kinds[0])
	grid := &Grid{
		rows:  rows,
		cols:  cols,
		kinds: make([]CellKind, 0, rows*cols),
	}
	for r, row := range kinds {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidGrid, r, len(row), cols)
		}
		for c, kind := range row {
			if kind < Blocked || kind > Goal {
				return nil, fmt.Errorf("%w: unknown cell kind %d at (%d,%d)", ErrInvalidGrid, int(kind), r, c)
			}
		}
		grid.kinds = append(grid.kinds, row...)
	}
	return grid, nil
}

func (grid *Grid) resolveMarkers() (err error) {
	if grid.start, err = Locate(grid, Start); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGrid, err)
	}
	if grid.goal, err = Locate(grid, Goal); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGrid, err)
	}
	return nil
}

// FromCodes converts a raw code table into a grid.
// Codes: 0=blocked, 1=passable, 2=blocked obstacle, 3=start, 4=goal.
func FromCodes(raw [][]int) (*Grid, error) {
	kinds := make([][]CellKind, len(raw))
	for r, row := range raw {
		kinds[r] = make([]CellKind, len(row))
		for c, code := range row {
			switch code {
			case CODE_BLOCKED, CODE_OBSTACLE:
				kinds[r][c] = Blocked
			case CODE_PASSABLE:
				kinds[r][c] = Passable
			case CODE_START:
				kinds[r][c] = Start
			case CODE_GOAL:
				kinds[r][c] = Goal
			default:
				return nil, fmt.Errorf("%w: unknown code %d at (%d,%d)", ErrInvalidGrid, code, r, c)
			}
		}
	}
	return New(kinds)
}

// Rows returns the number of grid rows.
func (grid *Grid) Rows() int { return grid.rows }

// Cols returns the number of grid columns.
func (grid *Grid) Cols() int { return grid.cols }

// Start returns the start cell.
func (grid *Grid) Start() Cell { return grid.start }

// Goal returns the goal cell.
func (grid *Grid) Goal() Cell { return grid.goal }

// InBounds reports whether the cell lies within the grid.
func (grid *Grid) InBounds(cell Cell) bool {
	return cell.Row >= 0 && cell.Row < grid.rows && cell.Col >= 0 && cell.Col < grid.cols
}

// Kind returns the kind of an in-bounds cell; out-of-bounds cells read as Blocked.
func (grid *Grid) Kind(cell Cell) CellKind {
	if !grid.InBounds(cell) {
		return Blocked
	}
	return grid.kinds[cell.Row*grid.cols+cell.Col]
}

// Passable reports whether the cell is in bounds and in the passable set.
func (grid *Grid) Passable(cell Cell) bool {
	return grid.Kind(cell).IsPassable()
}

// Visit calls fn for every cell in row-major order.
func (grid *Grid) Visit(fn func(cell Cell, kind CellKind)) {
	for i, kind := range grid.kinds {
		fn(Cell{Row: i / grid.cols, Col: i % grid.cols}, kind)
	}
}

// Locate scans row-major and returns the first cell of the passed kind.
func Locate(grid *Grid, kind CellKind) (Cell, error) {
	for i, k := range grid.kinds {
		if k == kind {
			return Cell{Row: i / grid.cols, Col: i % grid.cols}, nil
		}
	}
	return Cell{}, fmt.Errorf("%w: no %s cell", ErrNotFound, kind)
}

// Upscale returns a new grid whose dimensions are multiplied by factor, where every
// source cell is replicated into a factor x factor block of the same kind. This changes
// spatial resolution only: a passable source cell yields an entirely passable block.
// The replicated Start and Goal markers resolve to the top-left cell of their blocks,
// the first match in row-major order.
func Upscale(grid *Grid, factor int) (*Grid, error) {
	if factor < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidFactor, factor)
	}

	scaled := &Grid{
		rows:  grid.rows * factor,
		cols:  grid.cols * factor,
		kinds: make([]CellKind, grid.rows*grid.cols*factor*factor),
	}
	for r := 0; r < scaled.rows; r++ {
		for c := 0; c < scaled.cols; c++ {
			scaled.kinds[r*scaled.cols+c] = grid.kinds[(r/factor)*grid.cols+c/factor]
		}
	}

	if err := scaled.resolveMarkers(); err != nil {
		return nil, err
	}
	return scaled, nil
}
