// Package pathfinding finds shortest 4-connected paths over occupancy grids with A*.
//
// Movement is unit cost along the axes only, so the Manhattan distance to the goal is an
// admissible and consistent heuristic and the first time the goal is popped from the
// frontier its path is a minimum-step path. The frontier is a binary heap (container/heap),
// giving O(E log V) over the V = rows*cols cells.
package pathfinding

import (
	"container/heap"
	"errors"
	"fmt"

	"navigation/grid_world"
)

// Neighbor offsets in expansion order: up, down, left, right. No diagonals.
var directions = [4]grid_world.Cell{
	{Row: -1, Col: 0},
	{Row: 1, Col: 0},
	{Row: 0, Col: -1},
	{Row: 0, Col: 1},
}

// ErrExpansionLimit is returned when a search expands more cells than its cap allows.
// On a validated grid with the default cap this cannot happen; it guards pathological inputs.
var ErrExpansionLimit = errors.New("search expansion limit exceeded")

// Result contains the outcome of a search.
type Result struct {
	// Path runs from start to goal inclusive, or is empty if the goal is unreachable.
	Path []grid_world.Cell
	// Cost is the number of steps along the path.
	Cost          int
	ExpandedNodes int
	Found         bool
}

// Options defines parameters for the search.
type Options struct {
	// MaxExpansions caps the number of expanded cells; zero or less means rows*cols.
	MaxExpansions int
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithMaxExpansions caps the number of cells a search may expand.
func WithMaxExpansions(maxExpansions int) Option {
	return func(options *Options) { options.MaxExpansions = maxExpansions }
}

// Manhattan returns |Δrow| + |Δcol| between two cells.
func Manhattan(from, to grid_world.Cell) int {
	return abs(from.Row-to.Row) + abs(from.Col-to.Col)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// FindPath returns a minimum-step path from the grid's start to its goal, inclusive of
// both, or an empty path if the goal is unreachable. The grid is assumed validated.
func FindPath(grid *grid_world.Grid, options ...Option) []grid_world.Cell {
	result, err := Search(grid, options...)
	if err != nil {
		return nil
	}
	return result.Path
}

// Search runs A* from the grid's start to its goal. An unreachable goal is not an error:
// the result is simply not Found and has an empty path.
func Search(grid *grid_world.Grid, options ...Option) (Result, error) {
	searchOptions := Options{}
	for _, option := range options {
		option(&searchOptions)
	}
	if searchOptions.MaxExpansions <= 0 {
		searchOptions.MaxExpansions = grid.Rows() * grid.Cols()
	}

	start, goal := grid.Start(), grid.Goal()

	// The path record lives only for this call.
	cameFrom := make(map[grid_world.Cell]grid_world.Cell)
	costFromStart := map[grid_world.Cell]int{start: 0}
	closed := make(map[grid_world.Cell]bool)

	openSet := make(frontier, 0, grid.Rows()+grid.Cols())
	heap.Init(&openSet)
	seq := 0
	enqueue := func(cell grid_world.Cell, g int) {
		heap.Push(&openSet, &frontierItem{
			cell: cell,
			g:    g,
			f:    g + Manhattan(cell, goal),
			seq:  seq,
		})
		seq++
	}
	enqueue(start, 0)

	expanded := 0
	for openSet.Len() > 0 {
		current := heap.Pop(&openSet).(*frontierItem)

		// Stale duplicate of a cell that was already expanded at a lower or equal cost.
		if closed[current.cell] {
			continue
		}
		if expanded >= searchOptions.MaxExpansions {
			return Result{ExpandedNodes: expanded},
				fmt.Errorf("%w: %d cells expanded", ErrExpansionLimit, expanded)
		}
		closed[current.cell] = true
		expanded++

		if current.cell == goal {
			return Result{
				Path:          reconstructPath(cameFrom, goal, start),
				Cost:          current.g,
				ExpandedNodes: expanded,
				Found:         true,
			}, nil
		}

		for _, dir := range directions {
			next := grid_world.Cell{Row: current.cell.Row + dir.Row, Col: current.cell.Col + dir.Col}
			if closed[next] || !grid.Passable(next) {
				continue
			}

			tentativeG := current.g + 1
			if best, seen := costFromStart[next]; !seen || tentativeG < best {
				costFromStart[next] = tentativeG
				cameFrom[next] = current.cell
				enqueue(next, tentativeG)
			}
		}
	}

	return Result{ExpandedNodes: expanded}, nil
}

// reconstructPath walks the came-from relation back from the goal and returns the
// path in traversal order, start first.
func reconstructPath(
	cameFrom map[grid_world.Cell]grid_world.Cell,
	current grid_world.Cell,
	start grid_world.Cell,
) []grid_world.Cell {
	path := []grid_world.Cell{current}
	for current != start {
		previous, exists := cameFrom[current]
		if !exists {
			break
		}
		path = append(path, previous)
		current = previous
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
