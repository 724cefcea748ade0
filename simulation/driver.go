package simulation

import (
	"context"
	"log"
	"sync"
	"time"

	"navigation/atomic_float"
	"navigation/navigator"

	channerics "github.com/niceyeti/channerics/channels"
)

// FrameFunc receives each frame as it is produced. It runs on the tick goroutine, so it
// is synchronous and should complete quickly; ctx allows it to abandon blocking sends.
type FrameFunc func(context.Context, navigator.Frame)

// Driver is the single tick source for a navigator. All ticks happen through Step, so
// the navigator's state is only ever mutated from one goroutine at a time. The latest
// frame, odometer and time scale may be read concurrently, e.g. by http handlers.
type Driver struct {
	nav      *navigator.Navigator
	tickRate time.Duration
	// Elapsed time is multiplied by timeScale before each tick.
	timeScale *atomic_float.AtomicFloat64
	// Distance traveled by the agent in world units.
	odometer *atomic_float.AtomicFloat64

	stepMu sync.Mutex
	mu     sync.RWMutex
	latest navigator.Frame
	ticks  int
}

// NewDriver returns a driver ticking nav every tickRate.
func NewDriver(nav *navigator.Navigator, tickRate time.Duration, timeScale float64) *Driver {
	return &Driver{
		nav:       nav,
		tickRate:  tickRate,
		timeScale: atomic_float.NewAtomicFloat64(timeScale),
		odometer:  atomic_float.NewAtomicFloat64(0),
		latest:    nav.Frame(),
	}
}

// Step advances the navigator by dt seconds of wall time, scaled by the time scale.
func (driver *Driver) Step(dt float64) navigator.Frame {
	driver.stepMu.Lock()
	defer driver.stepMu.Unlock()

	before := driver.nav.Position()
	prevState := driver.nav.State()

	frame := driver.nav.Tick(dt * driver.timeScale.Read())
	// Single writer, so the add cannot be contended.
	driver.odometer.MustAdd(frame.Position.Distance(before))

	if frame.State != prevState {
		log.Printf("navigator: %s -> %s at %+v", prevState, frame.State, frame.Position)
	}

	driver.mu.Lock()
	driver.latest = frame
	driver.ticks++
	driver.mu.Unlock()
	return frame
}

// Latest returns the most recent frame.
func (driver *Driver) Latest() navigator.Frame {
	driver.mu.RLock()
	defer driver.mu.RUnlock()
	return driver.latest
}

// Ticks returns the number of completed steps.
func (driver *Driver) Ticks() int {
	driver.mu.RLock()
	defer driver.mu.RUnlock()
	return driver.ticks
}

func (driver *Driver) Odometer() float64  { return driver.odometer.Read() }
func (driver *Driver) TimeScale() float64 { return driver.timeScale.Read() }

// SetTimeScale changes the time scale; negative values are clamped to zero (paused).
func (driver *Driver) SetTimeScale(scale float64) {
	if scale < 0 {
		scale = 0
	}
	driver.timeScale.Set(scale)
}

// Run steps the navigator once per tick period until ctx is done, passing every frame
// to publish (which may be nil). Elapsed time is measured per tick, so a late tick
// moves the agent proportionally further.
func (driver *Driver) Run(ctx context.Context, publish FrameFunc) error {
	ticker := channerics.NewTicker(ctx.Done(), driver.tickRate)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ticker:
			if !ok {
				return nil
			}
			now := time.Now()
			frame := driver.Step(now.Sub(last).Seconds())
			last = now
			if publish != nil {
				publish(ctx, frame)
			}
		}
	}
}

// Publisher returns a FrameFunc that forwards frames to a channel, dropping a frame when
// the receiver is not ready. Frames are complete snapshots, so a renderer only ever needs
// the newest one.
func Publisher(frames chan<- navigator.Frame) FrameFunc {
	return func(ctx context.Context, frame navigator.Frame) {
		select {
		case frames <- frame:
		case <-ctx.Done():
		default:
		}
	}
}
