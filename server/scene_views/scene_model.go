// scene_views contains views derived from the SceneFrame view-model: the grid, the
// agent and its remaining path, laid out in svg pixels.
package scene_views

import (
	"fmt"
	"strings"

	"navigation/grid_world"
	"navigation/navigator"
	"navigation/projection"
)

// CellPx is the width and height of a grid cell in svg pixels.
const CellPx = 32

// Cell is a grid cell oriented in svg coordinates: row 0 is the top of the view, as it is
// when the grid is printed to the console. Fields are immediately usable as view parameters.
type Cell struct {
	X, Y  int
	Fill  string
	Label string
}

// Scene is the static part of the view: the searched grid and the planned path.
type Scene struct {
	Cells   []Cell
	Width   int
	Height  int
	Planned string
	layout  projection.Layout
}

// NewScene lays out the grid and the planned world path in svg pixels.
func NewScene(
	grid *grid_world.Grid,
	layout projection.Layout,
	path []projection.WorldPoint,
) *Scene {
	scene := &Scene{
		Width:  grid.Cols() * CellPx,
		Height: grid.Rows() * CellPx,
		layout: layout,
	}
	grid.Visit(func(cell grid_world.Cell, kind grid_world.CellKind) {
		scene.Cells = append(scene.Cells, Cell{
			X:     cell.Col * CellPx,
			Y:     cell.Row * CellPx,
			Fill:  getFill(kind),
			Label: getLabel(kind),
		})
	})
	scene.Planned = scene.polyline(path)
	return scene
}

// SceneFrame is a navigator frame in svg pixels.
type SceneFrame struct {
	AgentX, AgentY   float64
	FacingX, FacingY float64 // the tip of the facing indicator
	Remaining        string  // svg polyline points
	State            string
	TargetIndex      int
	Position         string
	Waypoints        int
}

// Page is the data passed to the page template.
type Page struct {
	Scene *Scene
	Frame SceneFrame
}

// Convert transforms a navigator frame into the SceneFrame view-model.
func (scene *Scene) Convert(frame navigator.Frame) SceneFrame {
	x, y := scene.toPixels(frame.Position)
	return SceneFrame{
		AgentX:      x,
		AgentY:      y,
		FacingX:     x + frame.Facing.X*CellPx*0.75,
		FacingY:     y + frame.Facing.Z*CellPx*0.75,
		Remaining:   scene.polyline(frame.Remaining),
		State:       frame.State.String(),
		TargetIndex: frame.TargetIndex,
		Position: fmt.Sprintf("(%.2f, %.2f, %.2f)",
			frame.Position.X, frame.Position.Y, frame.Position.Z),
		Waypoints: len(frame.Remaining),
	}
}

// toPixels maps a world point to the center of the cell it projects from. Elevation is dropped.
func (scene *Scene) toPixels(p projection.WorldPoint) (x, y float64) {
	col := p.X - scene.layout.XOffset
	row := p.Z - scene.layout.ZOffset
	return (col + 0.5) * CellPx, (row + 0.5) * CellPx
}

func (scene *Scene) polyline(points []projection.WorldPoint) string {
	coords := make([]string, len(points))
	for i, p := range points {
		x, y := scene.toPixels(p)
		coords[i] = fmt.Sprintf("%.1f,%.1f", x, y)
	}
	return strings.Join(coords, " ")
}

func getFill(kind grid_world.CellKind) (fill string) {
	switch kind {
	case grid_world.Blocked:
		fill = "dimgray"
	case grid_world.Passable:
		fill = "lightgray"
	case grid_world.Start:
		fill = "lightblue"
	case grid_world.Goal:
		fill = "lightyellow"
	}
	return
}

func getLabel(kind grid_world.CellKind) string {
	switch kind {
	case grid_world.Start:
		return "S"
	case grid_world.Goal:
		return "G"
	}
	return ""
}
