package pathfinding

import (
	"errors"
	"math/rand"
	"testing"

	"navigation/grid_world"

	. "github.com/smartystreets/goconvey/convey"
)

// bfsDistance is a brute-force oracle: the true 4-connected step count from start to goal,
// or -1 if the goal is unreachable.
func bfsDistance(grid *grid_world.Grid) int {
	dist := map[grid_world.Cell]int{grid.Start(): 0}
	queue := []grid_world.Cell{grid.Start()}
	for len(queue) > 0 {
		cell := queue[0]
		queue = queue[1:]
		if cell == grid.Goal() {
			return dist[cell]
		}
		for _, dir := range directions {
			next := grid_world.Cell{Row: cell.Row + dir.Row, Col: cell.Col + dir.Col}
			if _, seen := dist[next]; seen || !grid.Passable(next) {
				continue
			}
			dist[next] = dist[cell] + 1
			queue = append(queue, next)
		}
	}
	return -1
}

// randomGrid returns a grid with roughly 30% blocked cells and distinct start and goal.
func randomGrid(r *rand.Rand) *grid_world.Grid {
	rows, cols := 2+r.Intn(7), 2+r.Intn(7)
	codes := make([][]int, rows)
	for i := range codes {
		codes[i] = make([]int, cols)
		for j := range codes[i] {
			if r.Float64() < 0.3 {
				codes[i][j] = grid_world.CODE_BLOCKED
			} else {
				codes[i][j] = grid_world.CODE_PASSABLE
			}
		}
	}
	start := r.Intn(rows * cols)
	goal := r.Intn(rows*cols - 1)
	if goal >= start {
		goal++
	}
	codes[start/cols][start%cols] = grid_world.CODE_START
	codes[goal/cols][goal%cols] = grid_world.CODE_GOAL

	grid, err := grid_world.FromCodes(codes)
	if err != nil {
		panic(err)
	}
	return grid
}

// isValidPath checks the path is a simple chain of unit steps over passable cells
// from start to goal.
func isValidPath(grid *grid_world.Grid, path []grid_world.Cell) bool {
	if len(path) == 0 || path[0] != grid.Start() || path[len(path)-1] != grid.Goal() {
		return false
	}
	seen := map[grid_world.Cell]bool{}
	for i, cell := range path {
		if !grid.Passable(cell) || seen[cell] {
			return false
		}
		seen[cell] = true
		if i > 0 && Manhattan(path[i-1], cell) != 1 {
			return false
		}
	}
	return true
}

func mustGrid(codes [][]int) *grid_world.Grid {
	grid, err := grid_world.FromCodes(codes)
	if err != nil {
		panic(err)
	}
	return grid
}

func TestFindPath(t *testing.T) {
	Convey("When searching the detour grid", t, func() {
		grid := mustGrid([][]int{
			{3, 1},
			{0, 1},
			{1, 4},
		})

		path := FindPath(grid)
		So(path, ShouldResemble, []grid_world.Cell{
			{Row: 0, Col: 0},
			{Row: 0, Col: 1},
			{Row: 1, Col: 1},
			{Row: 2, Col: 1},
		})
	})

	Convey("When start and goal are adjacent", t, func() {
		grid := mustGrid([][]int{
			{1, 1, 1},
			{1, 3, 4},
		})

		path := FindPath(grid)
		So(path, ShouldResemble, []grid_world.Cell{{Row: 1, Col: 1}, {Row: 1, Col: 2}})
	})

	Convey("When the goal is walled in", t, func() {
		grid := mustGrid([][]int{
			{3, 1, 1, 1},
			{1, 1, 0, 0},
			{1, 1, 0, 4},
		})

		result, err := Search(grid)
		So(err, ShouldBeNil)
		So(result.Found, ShouldBeFalse)
		So(result.Path, ShouldBeEmpty)
		So(FindPath(grid), ShouldBeEmpty)
	})

	Convey("When searching the debug track", t, func() {
		grid, err := grid_world.FromTrack(grid_world.DebugTrack)
		So(err, ShouldBeNil)

		result, err := Search(grid)
		So(err, ShouldBeNil)
		So(result.Found, ShouldBeTrue)
		So(result.Cost, ShouldEqual, 8)
		So(len(result.Path), ShouldEqual, 9)
		So(isValidPath(grid, result.Path), ShouldBeTrue)
		So(result.ExpandedNodes, ShouldBeGreaterThan, 0)
	})

	Convey("When searching the upscaled demo board", t, func() {
		grid, err := grid_world.FromCodes(grid_world.DemoCodes)
		So(err, ShouldBeNil)
		scaled, err := grid_world.Upscale(grid, 2)
		So(err, ShouldBeNil)

		path := FindPath(scaled)
		So(isValidPath(scaled, path), ShouldBeTrue)
		So(len(path)-1, ShouldEqual, bfsDistance(scaled))
	})
}

func TestFindPathIsOptimal(t *testing.T) {
	Convey("When comparing against brute-force BFS on random grids", t, func() {
		r := rand.New(rand.NewSource(7))
		reachable := 0
		for i := 0; i < 500; i++ {
			grid := randomGrid(r)
			want := bfsDistance(grid)
			path := FindPath(grid)

			if want < 0 {
				So(path, ShouldBeEmpty)
				continue
			}
			reachable++
			So(isValidPath(grid, path), ShouldBeTrue)
			So(len(path)-1, ShouldEqual, want)
		}
		So(reachable, ShouldBeGreaterThan, 0)
	})
}

func TestExpansionLimit(t *testing.T) {
	Convey("When the expansion cap is too small for the grid", t, func() {
		grid, err := grid_world.FromTrack(grid_world.DebugTrack)
		So(err, ShouldBeNil)

		result, err := Search(grid, WithMaxExpansions(2))
		So(errors.Is(err, ErrExpansionLimit), ShouldBeTrue)
		So(result.Found, ShouldBeFalse)
		So(result.ExpandedNodes, ShouldEqual, 2)
		So(FindPath(grid, WithMaxExpansions(2)), ShouldBeEmpty)
	})
}
