/*
Navigation plans a shortest path across an occupancy grid with A*, lifts it into a 3d render
space, and steers an agent along it at constant speed, one tick at a time. The agent's progress
is shown either in a browser page pushed over a websocket or directly in the terminal.
The path is planned once at startup; editing the config file while running only adjusts the
time scale.
*/

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"navigation/grid_world"
	"navigation/navigator"
	"navigation/server"
	"navigation/simulation"
	"navigation/terminal"

	"golang.org/x/sync/errgroup"
)

var (
	configPath *string
	dbg        *bool
	tui        *bool
	host       *string
	port       *string
)

func init() {
	configPath = flag.String("config", "./config.yaml", "The navigation config; defaults are used if it does not exist")
	dbg = flag.Bool("debug", false, "debug mode: run on the small debug track")
	tui = flag.Bool("tui", false, "render in the terminal instead of serving a page")
	host = flag.String("host", "", "The host ip")
	port = flag.String("port", "8080", "The host port")
}

// loadConfig reads the config at path. A missing file yields the defaults and a nil loader.
func loadConfig(path string) (*simulation.Config, *simulation.Loader, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		log.Printf("no config at %s, using defaults", path)
		return simulation.DefaultConfig(), nil, nil
	}
	loader := simulation.NewLoader(path)
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, loader, nil
}

func runApp() (err error) {
	cfg, loader, err := loadConfig(*configPath)
	if err != nil {
		return
	}
	if *dbg {
		cfg.Track = grid_world.DebugTrack
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	var grid *grid_world.Grid
	if grid, err = cfg.BuildGrid(); err != nil {
		return
	}
	var route *simulation.Route
	if route, err = simulation.Plan(grid, cfg.PlanConfig()); err != nil {
		return
	}
	grid_world.ShowGrid(route.Grid, route.Cells)
	if route.Found() {
		log.Printf("planned %d waypoints, expanded %d cells", len(route.Points), route.ExpandedNodes)
	} else {
		log.Printf("goal unreachable after expanding %d cells, the agent will stay idle", route.ExpandedNodes)
	}

	nav := navigator.New(
		route.Points,
		cfg.Speed,
		navigator.WithArrivalThreshold(cfg.ArrivalThreshold))
	driver := simulation.NewDriver(nav, cfg.TickRate, cfg.TimeScale)

	if loader != nil {
		loader.Watch(func(updated *simulation.Config, watchErr error) {
			if watchErr != nil {
				log.Println("config reload:", watchErr)
				return
			}
			driver.SetTimeScale(updated.TimeScale)
			log.Printf("config reload: time scale %v", updated.TimeScale)
		})
	}

	appCtx, appCancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer appCancel()
	group, groupCtx := errgroup.WithContext(appCtx)

	frames := make(chan navigator.Frame)
	group.Go(func() error {
		return driver.Run(groupCtx, simulation.Publisher(frames))
	})

	if *tui {
		var renderer *terminal.Renderer
		if renderer, err = terminal.NewRenderer(route.Grid, route.Layout); err != nil {
			appCancel()
			_ = group.Wait()
			return
		}
		// The screen owns the terminal from here on.
		log.SetOutput(io.Discard)
		group.Go(func() error {
			return renderer.Run(groupCtx, frames)
		})
	} else {
		var srv *server.Server
		addr := *host + ":" + *port
		if srv, err = server.NewServer(groupCtx, addr, route, driver, frames); err != nil {
			appCancel()
			_ = group.Wait()
			return
		}
		group.Go(srv.Serve)
	}

	if err = group.Wait(); errors.Is(err, terminal.ErrQuit) {
		err = nil
	}
	log.Printf("stopped after %d ticks, traveled %.2f", driver.Ticks(), driver.Odometer())
	return
}

func main() {
	flag.Parse()
	if err := runApp(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
