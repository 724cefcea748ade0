package simulation

import (
	"errors"
	"fmt"
	"time"

	"navigation/grid_world"
	"navigation/navigator"
	"navigation/projection"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ConfigKind is the expected value of the config envelope's kind field.
const ConfigKind = "navigation"

var (
	// ErrConfigKind is returned when a config file describes something other than a navigation run.
	ErrConfigKind = errors.New("unexpected config kind")
	// ErrInvalidConfig is returned by Validate.
	ErrInvalidConfig = errors.New("invalid config")
)

// OuterConfig is the file envelope: a kind selector and an opaque definition.
type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// Config holds the scene and steering parameters of a run.
// Viper lowercases every key it reads, hence the lowercase yaml tags.
type Config struct {
	// Grid is a raw code table (0=blocked, 1=passable, 2=obstacle, 3=start, 4=goal).
	Grid [][]int `yaml:"grid"`
	// Track is an alternative text layout; it takes precedence over Grid when set.
	Track         []string `yaml:"track"`
	UpscaleFactor int      `yaml:"upscalefactor"`
	// Layout holds xOffset, zOffset and elevation for projecting cells into world space.
	projection.Layout `yaml:",inline"`
	// Speed is the agent's constant linear speed in world units per second.
	Speed            float64       `yaml:"speed"`
	ArrivalThreshold float64       `yaml:"arrivalthreshold"`
	TickRate         time.Duration `yaml:"tickrate"`
	// TimeScale multiplies elapsed time per tick: 0 pauses, 2 runs at double speed.
	TimeScale     float64 `yaml:"timescale"`
	MaxExpansions int     `yaml:"maxexpansions"`
}

// DefaultConfig returns the demo board centered at the origin, with the agent riding
// half a unit above the plate.
func DefaultConfig() *Config {
	return &Config{
		UpscaleFactor: 1,
		Layout: projection.Layout{
			XOffset:   -5.5,
			ZOffset:   -8.5,
			Elevation: 0.5,
		},
		Speed:            2,
		ArrivalThreshold: navigator.DefaultArrivalThreshold,
		TickRate:         16 * time.Millisecond,
		TimeScale:        1,
	}
}

// Validate rejects parameters the driver cannot run with.
func (cfg *Config) Validate() error {
	switch {
	case cfg.UpscaleFactor < 1:
		return fmt.Errorf("%w: upscaleFactor %d must be at least 1", ErrInvalidConfig, cfg.UpscaleFactor)
	case cfg.Speed <= 0:
		return fmt.Errorf("%w: speed %v must be positive", ErrInvalidConfig, cfg.Speed)
	case cfg.ArrivalThreshold <= 0:
		return fmt.Errorf("%w: arrivalThreshold %v must be positive", ErrInvalidConfig, cfg.ArrivalThreshold)
	case cfg.TickRate <= 0:
		return fmt.Errorf("%w: tickRate %v must be positive", ErrInvalidConfig, cfg.TickRate)
	case cfg.TimeScale < 0:
		return fmt.Errorf("%w: timeScale %v must not be negative", ErrInvalidConfig, cfg.TimeScale)
	}
	return nil
}

// BuildGrid builds the configured layout: the track if given, else the code table,
// else the demo board.
func (cfg *Config) BuildGrid() (*grid_world.Grid, error) {
	switch {
	case len(cfg.Track) > 0:
		return grid_world.FromTrack(cfg.Track)
	case len(cfg.Grid) > 0:
		return grid_world.FromCodes(cfg.Grid)
	}
	return grid_world.FromCodes(grid_world.DemoCodes)
}

// PlanConfig extracts the planning parameters.
func (cfg *Config) PlanConfig() PlanConfig {
	return PlanConfig{
		UpscaleFactor: cfg.UpscaleFactor,
		Layout:        cfg.Layout,
		MaxExpansions: cfg.MaxExpansions,
	}
}

// Loader reads a yaml config file through viper, and can watch it for changes.
type Loader struct {
	vp *viper.Viper
}

// NewLoader returns a loader for the yaml file at path.
func NewLoader(path string) *Loader {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	return &Loader{vp: vp}
}

// FromYaml reads and validates the config file at path.
func FromYaml(path string) (*Config, error) {
	return NewLoader(path).Load()
}

// Load (re)reads the file. Fields missing from the file keep their DefaultConfig values.
func (loader *Loader) Load() (*Config, error) {
	var err error
	if err = loader.vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	outerConfig := &OuterConfig{}
	if err = loader.vp.Unmarshal(outerConfig); err != nil {
		return nil, fmt.Errorf("decode config envelope: %w", err)
	}
	if outerConfig.Kind != ConfigKind {
		return nil, fmt.Errorf("%w: %q, want %q", ErrConfigKind, outerConfig.Kind, ConfigKind)
	}

	// The definition is decoded with yaml rather than mapstructure so the yaml tags and
	// duration strings apply.
	var spec []byte
	if spec, err = yaml.Marshal(outerConfig.Def); err != nil {
		return nil, fmt.Errorf("encode config def: %w", err)
	}

	cfg := DefaultConfig()
	if err = yaml.Unmarshal(spec, cfg); err != nil {
		return nil, fmt.Errorf("decode config def: %w", err)
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Watch reloads the file whenever it is written and passes the result to onChange.
// Only parameters that are safe to change mid-run should be applied by the caller;
// the path is never replanned.
func (loader *Loader) Watch(onChange func(*Config, error)) {
	loader.vp.OnConfigChange(func(event fsnotify.Event) {
		if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}
		onChange(loader.Load())
	})
	loader.vp.WatchConfig()
}
