package terminal

import (
	"strings"
	"testing"

	"navigation/grid_world"
	"navigation/navigator"
	"navigation/projection"

	"github.com/gdamore/tcell/v2"
	. "github.com/smartystreets/goconvey/convey"
)

type point struct{ x, y int }

// fakeCanvas records the last rune drawn at each position.
type fakeCanvas map[point]rune

func (fc fakeCanvas) SetContent(x, y int, primary rune, _ []rune, _ tcell.Style) {
	fc[point{x, y}] = primary
}

func (fc fakeCanvas) at(cell grid_world.Cell) rune {
	return fc[point{cell.Col * cellWidth, cell.Row}]
}

func (fc fakeCanvas) line(y int) string {
	var sb strings.Builder
	for x := 0; ; x++ {
		r, ok := fc[point{x, y}]
		if !ok {
			return sb.String()
		}
		sb.WriteRune(r)
	}
}

func TestDraw(t *testing.T) {
	Convey("Given the debug track and its path", t, func() {
		grid, err := grid_world.FromTrack(grid_world.DebugTrack)
		So(err, ShouldBeNil)
		layout := projection.Layout{XOffset: -1, ZOffset: -1}
		cells := []grid_world.Cell{{Row: 1, Col: 1}, {Row: 1, Col: 2}, {Row: 1, Col: 3}}
		nav := navigator.New(layout.Project(cells), 1)

		Convey("The first frame draws markers, path and agent", func() {
			canvas := fakeCanvas{}
			draw(canvas, grid, layout, nav.Frame())

			So(canvas.at(grid_world.Cell{Row: 0, Col: 0}), ShouldEqual, '█')
			So(canvas.at(grid_world.Cell{Row: 3, Col: 1}), ShouldEqual, 'G')
			So(canvas.at(grid_world.Cell{Row: 1, Col: 1}), ShouldEqual, '@')
			So(canvas.at(grid_world.Cell{Row: 1, Col: 2}), ShouldEqual, '•')
			So(canvas.at(grid_world.Cell{Row: 1, Col: 3}), ShouldEqual, '•')
			// Passable cells are left blank.
			So(canvas.at(grid_world.Cell{Row: 1, Col: 4}), ShouldEqual, 0)
			So(canvas.line(grid.Rows()+1), ShouldStartWith, "following  target 0")
		})

		Convey("Traveled waypoints are no longer drawn", func() {
			nav.Tick(0.1)
			nav.Tick(1)
			nav.Tick(0.1)
			frame := nav.Tick(0.4)
			So(frame.TargetIndex, ShouldEqual, 2)

			canvas := fakeCanvas{}
			draw(canvas, grid, layout, frame)
			// The start marker shows again once the agent leaves it.
			So(canvas.at(grid_world.Cell{Row: 1, Col: 1}), ShouldEqual, 'S')
			So(canvas.at(grid_world.Cell{Row: 1, Col: 2}), ShouldEqual, '@')
			So(canvas.at(grid_world.Cell{Row: 1, Col: 3}), ShouldEqual, '•')
		})

		Convey("An idle frame draws no agent", func() {
			canvas := fakeCanvas{}
			draw(canvas, grid, layout, navigator.New(nil, 1).Frame())
			So(canvas.at(grid_world.Cell{Row: 0, Col: 0}), ShouldEqual, '█')
			So(canvas.line(grid.Rows()+1), ShouldStartWith, "idle")
			for _, r := range canvas {
				So(r, ShouldNotEqual, '@')
			}
		})
	})
}

func TestIsQuit(t *testing.T) {
	Convey("Quit keys end the session", t, func() {
		So(isQuit(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)), ShouldBeTrue)
		So(isQuit(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)), ShouldBeTrue)
		So(isQuit(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)), ShouldBeTrue)
		So(isQuit(tcell.NewEventKey(tcell.KeyRune, 'w', tcell.ModNone)), ShouldBeFalse)
		So(isQuit(tcell.NewEventResize(80, 24)), ShouldBeFalse)
	})
}
