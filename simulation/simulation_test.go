package simulation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"navigation/grid_world"
	"navigation/navigator"
	"navigation/projection"

	. "github.com/smartystreets/goconvey/convey"
)

func TestComputePath(t *testing.T) {
	Convey("When computing the detour path", t, func() {
		points, err := ComputePath([][]int{
			{3, 1},
			{0, 1},
			{1, 4},
		}, 1, 0, 0, 0.5)
		So(err, ShouldBeNil)
		So(points, ShouldResemble, []projection.WorldPoint{
			{X: 0, Y: 0.5, Z: 0},
			{X: 1, Y: 0.5, Z: 0},
			{X: 1, Y: 0.5, Z: 1},
			{X: 1, Y: 0.5, Z: 2},
		})
	})

	Convey("When the grid is upscaled", t, func() {
		points, err := ComputePath([][]int{{3, 1, 4}}, 2, -1, -1, 0)
		So(err, ShouldBeNil)
		// Start block top-left (0,0) to goal block top-left (0,4).
		So(len(points), ShouldEqual, 5)
		So(points[0], ShouldResemble, projection.WorldPoint{X: -1, Y: 0, Z: -1})
		So(points[4], ShouldResemble, projection.WorldPoint{X: 3, Y: 0, Z: -1})
	})

	Convey("When the grid is malformed", t, func() {
		_, err := ComputePath([][]int{{3, 3, 4}}, 1, 0, 0, 0)
		So(errors.Is(err, grid_world.ErrInvalidGrid), ShouldBeTrue)

		_, err = ComputePath([][]int{{3, 1, 4}}, 0, 0, 0, 0)
		So(errors.Is(err, grid_world.ErrInvalidFactor), ShouldBeTrue)
	})

	Convey("When the goal is unreachable", t, func() {
		points, err := ComputePath([][]int{
			{3, 1, 0, 1},
			{1, 1, 0, 4},
		}, 1, 0, 0, 0)
		So(err, ShouldBeNil)
		So(points, ShouldBeEmpty)

		Convey("The navigator stays idle indefinitely", func() {
			nav := navigator.New(points, 2)
			for i := 0; i < 50; i++ {
				frame := nav.Tick(0.1)
				So(frame.State, ShouldEqual, navigator.Idle)
				So(frame.Position, ShouldResemble, projection.WorldPoint{})
			}
		})
	})
}

func TestPlan(t *testing.T) {
	Convey("When planning the demo board", t, func() {
		cfg := DefaultConfig()
		grid, err := cfg.BuildGrid()
		So(err, ShouldBeNil)

		route, err := Plan(grid, cfg.PlanConfig())
		So(err, ShouldBeNil)
		So(route.Found(), ShouldBeTrue)
		So(len(route.Points), ShouldEqual, len(route.Cells))
		So(route.Cells[0], ShouldResemble, grid.Start())
		So(route.Cells[len(route.Cells)-1], ShouldResemble, grid.Goal())
		// The bottom-right start cell maps to (5.5, 0.5, 8.5).
		So(route.Points[0], ShouldResemble, projection.WorldPoint{X: 5.5, Y: 0.5, Z: 8.5})
		So(route.ExpandedNodes, ShouldBeGreaterThan, 0)
	})

	Convey("When the expansion cap is hit", t, func() {
		grid, err := grid_world.FromTrack(grid_world.DebugTrack)
		So(err, ShouldBeNil)
		_, err = Plan(grid, PlanConfig{UpscaleFactor: 1, MaxExpansions: 1})
		So(err, ShouldNotBeNil)
	})
}

func newTestDriver(timeScale float64) *Driver {
	path := []projection.WorldPoint{{X: 0}, {X: 1}, {X: 1, Z: 1}}
	return NewDriver(navigator.New(path, 1), time.Millisecond*5, timeScale)
}

func TestDriver(t *testing.T) {
	Convey("When stepping the driver", t, func() {
		driver := newTestDriver(1)
		So(driver.Latest().State, ShouldEqual, navigator.Following)

		driver.Step(0.5)
		frame := driver.Step(0.5)
		So(frame.Position.X, ShouldAlmostEqual, 0.5)
		So(driver.Latest(), ShouldResemble, frame)
		So(driver.Odometer(), ShouldAlmostEqual, 0.5)
		So(driver.Ticks(), ShouldEqual, 2)

		Convey("A zero time scale pauses the agent", func() {
			driver.SetTimeScale(0)
			frame = driver.Step(10)
			So(frame.Position.X, ShouldAlmostEqual, 0.5)
			So(driver.Odometer(), ShouldAlmostEqual, 0.5)
		})

		Convey("A doubled time scale doubles the distance", func() {
			driver.SetTimeScale(2)
			frame = driver.Step(0.2)
			So(frame.Position.X, ShouldAlmostEqual, 0.9)
			So(driver.Odometer(), ShouldAlmostEqual, 0.9)
		})

		Convey("Negative time scales clamp to paused", func() {
			driver.SetTimeScale(-3)
			So(driver.TimeScale(), ShouldEqual, 0)
		})

		Convey("The odometer totals the whole path on arrival", func() {
			for i := 0; i < 100; i++ {
				frame = driver.Step(0.1)
			}
			So(frame.Arrived, ShouldBeTrue)
			So(driver.Odometer(), ShouldAlmostEqual, 2.0, 1e-9)
		})
	})

	Convey("When the driver runs until cancelled", t, func() {
		driver := newTestDriver(1)
		frames := make(chan navigator.Frame, 1024)
		ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*100)
		defer cancel()

		err := driver.Run(ctx, Publisher(frames))
		So(err, ShouldBeNil)
		So(driver.Ticks(), ShouldBeGreaterThan, 0)
		// The final frame may race the deadline and be dropped.
		So(len(frames), ShouldBeGreaterThanOrEqualTo, driver.Ticks()-1)
		So(len(frames), ShouldBeLessThanOrEqualTo, driver.Ticks())
	})

	Convey("When a publisher's receiver is not ready", t, func() {
		frames := make(chan navigator.Frame)
		publish := Publisher(frames)
		done := make(chan struct{})
		go func() {
			publish(context.Background(), navigator.Frame{})
			close(done)
		}()
		returned := false
		select {
		case <-done:
			returned = true
		case <-time.After(time.Second):
		}
		So(returned, ShouldBeTrue)
	})
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfig(t *testing.T) {
	Convey("When loading a full config", t, func() {
		path := writeConfig(t, `
kind: navigation
def:
  track:
    - "WWWWWW"
    - "W-oooW"
    - "WWWWoW"
    - "W+oooW"
    - "WWWWWW"
  upscaleFactor: 2
  xOffset: 1.5
  zOffset: -2
  elevation: 0.25
  speed: 3
  arrivalThreshold: 0.05
  tickRate: 20ms
  timeScale: 0.5
  maxExpansions: 500
`)
		cfg, err := FromYaml(path)
		So(err, ShouldBeNil)
		So(cfg.UpscaleFactor, ShouldEqual, 2)
		So(cfg.Layout, ShouldResemble, projection.Layout{XOffset: 1.5, ZOffset: -2, Elevation: 0.25})
		So(cfg.Speed, ShouldEqual, 3)
		So(cfg.ArrivalThreshold, ShouldEqual, 0.05)
		So(cfg.TickRate, ShouldEqual, 20*time.Millisecond)
		So(cfg.TimeScale, ShouldEqual, 0.5)
		So(cfg.MaxExpansions, ShouldEqual, 500)

		grid, err := cfg.BuildGrid()
		So(err, ShouldBeNil)
		So(grid.Rows(), ShouldEqual, 5)
	})

	Convey("When loading a partial config", t, func() {
		path := writeConfig(t, `
kind: navigation
def:
  grid:
    - [3, 1]
    - [0, 1]
    - [1, 4]
  speed: 4
`)
		cfg, err := FromYaml(path)
		So(err, ShouldBeNil)
		So(cfg.Speed, ShouldEqual, 4)
		So(cfg.TickRate, ShouldEqual, DefaultConfig().TickRate)
		So(cfg.Layout, ShouldResemble, DefaultConfig().Layout)
		So(cfg.Grid, ShouldResemble, [][]int{{3, 1}, {0, 1}, {1, 4}})
	})

	Convey("When the kind is wrong", t, func() {
		path := writeConfig(t, "kind: training\ndef:\n  speed: 1\n")
		_, err := FromYaml(path)
		So(errors.Is(err, ErrConfigKind), ShouldBeTrue)
	})

	Convey("When a parameter is invalid", t, func() {
		path := writeConfig(t, "kind: navigation\ndef:\n  speed: -1\n")
		_, err := FromYaml(path)
		So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
	})

	Convey("When the file is missing", t, func() {
		_, err := FromYaml(filepath.Join(t.TempDir(), "absent.yaml"))
		So(err, ShouldNotBeNil)
	})

	Convey("When the file changes between loads", t, func() {
		path := writeConfig(t, "kind: navigation\ndef:\n  timeScale: 1\n")
		loader := NewLoader(path)
		cfg, err := loader.Load()
		So(err, ShouldBeNil)
		So(cfg.TimeScale, ShouldEqual, 1)

		So(os.WriteFile(path, []byte("kind: navigation\ndef:\n  timeScale: 3\n"), 0o644), ShouldBeNil)
		cfg, err = loader.Load()
		So(err, ShouldBeNil)
		So(cfg.TimeScale, ShouldEqual, 3)
	})
}
