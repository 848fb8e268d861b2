package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime settings of a scripted session. Values come from
// ORRERY_* environment variables and may then be overridden by CLI flags.
type Config struct {
	Width  int `env:"WIDTH" envDefault:"960"`
	Height int `env:"HEIGHT" envDefault:"540"`

	Frames   int     `env:"FRAMES" envDefault:"600"`
	FPS      float64 `env:"FPS" envDefault:"60"`
	RealTime bool    `env:"REALTIME" envDefault:"false"`
	Script   string  `env:"SCRIPT" envDefault:"0:overview,30:planet=earth,240:sun,420:click=0.5x0.5,540:overview"`

	Bodies string `env:"BODIES"`
	Assets string `env:"ASSETS" envDefault:"assets"`

	OutDir        string `env:"OUT" envDefault:"frames"`
	SnapshotEvery int    `env:"SNAPSHOT_EVERY" envDefault:"60"`
	Supersample   int    `env:"SUPERSAMPLE" envDefault:"1"`
	Workers       int    `env:"WORKERS" envDefault:"0"`

	Phase string    `env:"PHASE" envDefault:"random"`
	Epoch time.Time `env:"EPOCH"`
	Seed  uint64    `env:"SEED" envDefault:"1"`

	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`
	MetricsAddr string `env:"METRICS_ADDR"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "ORRERY_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks ranges that would otherwise surface as odd rendering bugs.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid viewport %dx%d", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %v", c.FPS)
	}
	if c.Supersample <= 0 {
		return fmt.Errorf("supersample must be positive, got %d", c.Supersample)
	}
	switch c.Phase {
	case "random", "ephemeris":
	default:
		return fmt.Errorf("unknown phase mode %q (want random or ephemeris)", c.Phase)
	}
	return nil
}

// FrameDelta is the simulated time step of one frame in seconds.
func (c Config) FrameDelta() float64 {
	return 1.0 / c.FPS
}
