package grid_world

import (
	"fmt"
	"strings"
)

// Track cell runes, for describing small grids as text.
const (
	WALL     = 'W'
	TRACK    = 'o'
	START    = '-'
	FINISH   = '+'
	OBSTACLE = '#'
	// PATH only appears in console output.
	PATH = '*'
)

// DebugTrack is a small layout for development; the only route winds around the inner wall.
var DebugTrack []string = []string{
	"WWWWWW",
	"W-oooW",
	"WWWWoW",
	"W+oooW",
	"WWWWWW",
}

// DemoCodes is the default board: 18 rows by 12 columns, one cell per 10cm of the
// 120cm x 180cm plate. The car starts at the bottom right and the goal is top left.
var DemoCodes [][]int = [][]int{
	{4, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	{1, 1, 1, 1, 2, 2, 1, 1, 1, 1, 1, 1},
	{1, 1, 1, 1, 2, 2, 1, 1, 1, 0, 0, 1},
	{1, 0, 0, 1, 1, 1, 1, 1, 1, 0, 0, 1},
	{1, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	{1, 1, 1, 1, 1, 1, 2, 2, 1, 1, 1, 1},
	{1, 1, 1, 1, 1, 1, 2, 2, 1, 1, 1, 1},
	{0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1},
	{1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0},
	{1, 1, 2, 2, 1, 1, 1, 1, 1, 1, 1, 1},
	{1, 1, 2, 2, 1, 1, 1, 1, 1, 1, 1, 1},
	{1, 1, 1, 1, 1, 1, 1, 0, 0, 1, 1, 1},
	{1, 1, 1, 1, 1, 1, 1, 0, 0, 1, 1, 1},
	{1, 1, 1, 1, 2, 2, 1, 1, 1, 1, 1, 1},
	{1, 1, 1, 1, 2, 2, 1, 1, 1, 1, 1, 1},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 1},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 1},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 3},
}

// FromTrack converts a text track into a grid, one string per row, top row first.
// Note that unlike the codes table, walls and obstacles are distinguished only for the reader.
func FromTrack(track []string) (*Grid, error) {
	kinds := make([][]CellKind, len(track))
	for r, row := range track {
		kinds[r] = make([]CellKind, 0, len(row))
		for c, ch := range row {
			switch ch {
			case WALL, OBSTACLE:
				kinds[r] = append(kinds[r], Blocked)
			case TRACK:
				kinds[r] = append(kinds[r], Passable)
			case START:
				kinds[r] = append(kinds[r], Start)
			case FINISH:
				kinds[r] = append(kinds[r], Goal)
			default:
				return nil, fmt.Errorf("%w: unknown track rune %q at (%d,%d)", ErrInvalidGrid, ch, r, c)
			}
		}
	}
	return New(kinds)
}

// Render returns the grid as track text with the path overlaid, for visual reference.
func Render(grid *Grid, path []Cell) string {
	onPath := make(map[Cell]bool, len(path))
	for _, cell := range path {
		onPath[cell] = true
	}

	var sb strings.Builder
	for r := 0; r < grid.Rows(); r++ {
		for c := 0; c < grid.Cols(); c++ {
			cell := Cell{Row: r, Col: c}
			ch := rune(WALL)
			switch kind := grid.Kind(cell); {
			case kind == Start:
				ch = START
			case kind == Goal:
				ch = FINISH
			case onPath[cell]:
				ch = PATH
			case kind == Passable:
				ch = TRACK
			}
			sb.WriteRune(ch)
			sb.WriteRune(' ')
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}

// ShowGrid prints the grid and path to the console.
func ShowGrid(grid *Grid, path []Cell) {
	fmt.Printf("Grid %dx%d, start %v, goal %v, path length %d\n",
		grid.Rows(), grid.Cols(), grid.Start(), grid.Goal(), len(path))
	fmt.Print(Render(grid, path))
}
