// Package projection maps grid cells into continuous render-space coordinates.
package projection

import (
	"math"

	"navigation/grid_world"
)

// WorldPoint is a position (or direction) in render space. Grid columns run along X,
// grid rows along Z, and Y is elevation.
type WorldPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (p WorldPoint) Add(q WorldPoint) WorldPoint {
	return WorldPoint{p.X + q.X, p.Y + q.Y, p.Z + q.Z}
}

func (p WorldPoint) Sub(q WorldPoint) WorldPoint {
	return WorldPoint{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

func (p WorldPoint) Scale(s float64) WorldPoint {
	return WorldPoint{p.X * s, p.Y * s, p.Z * s}
}

func (p WorldPoint) Length() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// Distance returns the euclidean distance between two points.
func (p WorldPoint) Distance(q WorldPoint) float64 {
	return p.Sub(q).Length()
}

// Normalize returns the unit vector along p. ok is false for the zero vector, whose
// direction is undefined.
func (p WorldPoint) Normalize() (unit WorldPoint, ok bool) {
	length := p.Length()
	if length == 0 {
		return WorldPoint{}, false
	}
	return p.Scale(1 / length), true
}

// Project maps a cell path to world points: x = col + xOffset, y = elevation,
// z = row + zOffset. Order and length are preserved.
func Project(cells []grid_world.Cell, xOffset, zOffset, elevation float64) []WorldPoint {
	return Layout{XOffset: xOffset, ZOffset: zOffset, Elevation: elevation}.Project(cells)
}

// Layout holds the projection parameters, so renderers can map between grid and world space.
type Layout struct {
	XOffset   float64 `yaml:"xoffset" json:"xOffset"`
	ZOffset   float64 `yaml:"zoffset" json:"zOffset"`
	Elevation float64 `yaml:"elevation" json:"elevation"`
}

// ToWorld returns the world position of a cell.
func (layout Layout) ToWorld(cell grid_world.Cell) WorldPoint {
	return WorldPoint{
		X: float64(cell.Col) + layout.XOffset,
		Y: layout.Elevation,
		Z: float64(cell.Row) + layout.ZOffset,
	}
}

// ToCell returns the cell nearest to a world position. Elevation is ignored.
func (layout Layout) ToCell(p WorldPoint) grid_world.Cell {
	return grid_world.Cell{
		Row: int(math.Round(p.Z - layout.ZOffset)),
		Col: int(math.Round(p.X - layout.XOffset)),
	}
}

// Project maps each cell with ToWorld.
func (layout Layout) Project(cells []grid_world.Cell) []WorldPoint {
	points := make([]WorldPoint, len(cells))
	for i, cell := range cells {
		points[i] = layout.ToWorld(cell)
	}
	return points
}
