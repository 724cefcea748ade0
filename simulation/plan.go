package simulation

import (
	"fmt"

	"navigation/grid_world"
	"navigation/pathfinding"
	"navigation/projection"
)

// PlanConfig holds the one-shot planning parameters.
type PlanConfig struct {
	UpscaleFactor int
	Layout        projection.Layout
	MaxExpansions int
}

// Route is the result of planning: the searched grid, its cell path, and that path in
// world space. An unreachable goal yields a Route with empty Cells and Points.
type Route struct {
	Grid          *grid_world.Grid
	Cells         []grid_world.Cell
	Points        []projection.WorldPoint
	Layout        projection.Layout
	ExpandedNodes int
}

// Found reports whether a path to the goal exists.
func (route *Route) Found() bool {
	return len(route.Cells) > 0
}

// Plan upscales the grid, searches it, and projects the path. It runs once, to
// completion, before any tick.
func Plan(grid *grid_world.Grid, cfg PlanConfig) (*Route, error) {
	factor := cfg.UpscaleFactor
	if factor == 0 {
		factor = 1
	}
	scaled, err := grid_world.Upscale(grid, factor)
	if err != nil {
		return nil, err
	}

	result, err := pathfinding.Search(scaled, pathfinding.WithMaxExpansions(cfg.MaxExpansions))
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}

	return &Route{
		Grid:          scaled,
		Cells:         result.Path,
		Points:        cfg.Layout.Project(result.Path),
		Layout:        cfg.Layout,
		ExpandedNodes: result.ExpandedNodes,
	}, nil
}

// ComputePath builds a grid from raw codes (0=blocked, 1=passable, 2=obstacle, 3=start,
// 4=goal), upscales it, and returns the shortest start-to-goal path in world space.
// A malformed grid is an error; an unreachable goal is an empty path and no error.
func ComputePath(
	raw [][]int,
	upscaleFactor int,
	xOffset, zOffset, elevation float64,
) ([]projection.WorldPoint, error) {
	grid, err := grid_world.FromCodes(raw)
	if err != nil {
		return nil, err
	}
	if upscaleFactor < 1 {
		return nil, fmt.Errorf("%w: got %d", grid_world.ErrInvalidFactor, upscaleFactor)
	}

	route, err := Plan(grid, PlanConfig{
		UpscaleFactor: upscaleFactor,
		Layout: projection.Layout{
			XOffset:   xOffset,
			ZOffset:   zOffset,
			Elevation: elevation,
		},
	})
	if err != nil {
		return nil, err
	}
	return route.Points, nil
}
