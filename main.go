package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/echoflaresat/orrery/bodies"
	"github.com/echoflaresat/orrery/config"
	"github.com/echoflaresat/orrery/logging"
	"github.com/echoflaresat/orrery/metrics"
	"github.com/echoflaresat/orrery/nav"
	"github.com/echoflaresat/orrery/render"
	"github.com/echoflaresat/orrery/scene"
	"github.com/echoflaresat/orrery/shell"
	"github.com/echoflaresat/orrery/sim"
	"github.com/echoflaresat/orrery/texture"
	"github.com/prometheus/client_golang/prometheus"
)

type flags struct {
	width, height, frames *int
	fps                   *float64
	realtime              *bool
	script                *string
	bodies, assets        *string
	out                   *string
	snapshotEvery         *int
	supersample, workers  *int
	phase, epoch          *string
	seed                  *uint64
	logLevel, logFormat   *string
	metricsAddr           *string
	showHelp              *bool
}

// defineFlags registers the CLI flags with defaults taken from cfg, so flags
// override the environment.
func defineFlags(cfg config.Config) flags {
	epoch := ""
	if !cfg.Epoch.IsZero() {
		epoch = cfg.Epoch.Format(time.RFC3339)
	}
	return flags{
		width:  flag.Int("width", cfg.Width, "Viewport width in pixels"),
		height: flag.Int("height", cfg.Height, "Viewport height in pixels"),

		frames:   flag.Int("frames", cfg.Frames, "Number of frames to run (0 runs until interrupted)"),
		fps:      flag.Float64("fps", cfg.FPS, "Frames per simulated second"),
		realtime: flag.Bool("realtime", cfg.RealTime, "Pace frames by the wall clock"),
		script:   flag.String("script", cfg.Script, "Scripted timeline, e.g. 30:planet=earth,240:sun"),

		bodies: flag.String("bodies", cfg.Bodies, "Body table YAML file; empty uses the built-in table"),
		assets: flag.String("assets", cfg.Assets, "Root directory for relative texture paths"),

		out:           flag.String("out", cfg.OutDir, "Directory for PNG snapshots"),
		snapshotEvery: flag.Int("every", cfg.SnapshotEvery, "Write a snapshot every N frames (0 disables)"),
		supersample:   flag.Int("ss", cfg.Supersample, "Supersampling factor (higher is slower but smoother)"),
		workers:       flag.Int("workers", cfg.Workers, "Render goroutines (0 uses all CPUs)"),

		phase: flag.String("phase", cfg.Phase, "Initial orbital phases: random or ephemeris"),
		epoch: flag.String("epoch", epoch, "Ephemeris time in RFC3339 format; defaults to now"),
		seed:  flag.Uint64("seed", cfg.Seed, "Random seed for phases and stars"),

		logLevel:    flag.String("log-level", cfg.LogLevel, "Log level: debug, info, warn or error"),
		logFormat:   flag.String("log-format", cfg.LogFormat, "Log format: text or json"),
		metricsAddr: flag.String("metrics", cfg.MetricsAddr, "Serve Prometheus metrics on this address"),

		showHelp: flag.Bool("h", false, "Show this help message"),
	}
}

func (f flags) apply(cfg *config.Config) error {
	cfg.Width, cfg.Height = *f.width, *f.height
	cfg.Frames, cfg.FPS, cfg.RealTime, cfg.Script = *f.frames, *f.fps, *f.realtime, *f.script
	cfg.Bodies, cfg.Assets = *f.bodies, *f.assets
	cfg.OutDir, cfg.SnapshotEvery = *f.out, *f.snapshotEvery
	cfg.Supersample, cfg.Workers = *f.supersample, *f.workers
	cfg.Phase, cfg.Seed = *f.phase, *f.seed
	cfg.LogLevel, cfg.LogFormat, cfg.MetricsAddr = *f.logLevel, *f.logFormat, *f.metricsAddr

	cfg.Epoch = time.Time{}
	if *f.epoch != "" {
		t, err := time.Parse(time.RFC3339, *f.epoch)
		if err != nil {
			return fmt.Errorf("invalid epoch: %w", err)
		}
		cfg.Epoch = t
	}
	return cfg.Validate()
}

func printHelp() {
	fmt.Fprintf(os.Stderr, `Orrery - Solar System Session Renderer

Usage:
  %[1]s [options]

Every option can also be set through an ORRERY_* environment variable.

`, os.Args[0])

	printGroup("Viewport", []string{"width", "height"})
	printGroup("Session", []string{"frames", "fps", "realtime", "script"})
	printGroup("Bodies", []string{"bodies", "assets", "phase", "epoch", "seed"})
	printGroup("Rendering", []string{"out", "every", "ss", "workers"})
	printGroup("Observability", []string{"log-level", "log-format", "metrics"})
	printGroup("Misc", []string{"h"})
}

func printGroup(title string, keys []string) {
	fmt.Fprintf(os.Stderr, "%s:\n", title)
	for _, name := range keys {
		if f := flag.Lookup(name); f != nil {
			fmt.Fprintf(os.Stderr, "  -%-10s %s (default %q)\n", f.Name, f.Usage, f.DefValue)
		}
	}
	fmt.Fprintln(os.Stderr)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	fl := defineFlags(cfg)
	flag.Usage = printHelp
	flag.Parse()

	if *fl.showHelp {
		printHelp()
		return
	}
	if err := fl.apply(&cfg); err != nil {
		log.Fatal(err)
	}

	steps, err := parseScript(cfg.Script)
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, steps, logger); err != nil {
		log.Fatal(err)
	}
}

// run builds the scene, wires shell, navigation and picking together and
// drives the scripted session, writing snapshots along the way.
func run(ctx context.Context, cfg config.Config, steps []step, logger logging.Logger) error {
	collector, err := metrics.NewCollector(prometheus.NewRegistry())
	if err != nil {
		return err
	}
	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, collector, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	table, err := loadTable(cfg.Bodies)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	inbox := nav.NewInbox()
	ui := shell.New(table, inbox, logger)
	state := sim.NewState(nil, inbox, sim.Options{
		Width:   cfg.Width,
		Height:  cfg.Height,
		RNG:     rng,
		Logger:  logger,
		Metrics: collector,
	})

	loader := texture.MultiLoader{
		Files: texture.FileLoader{Root: cfg.Assets, Logger: logger},
		HTTP:  texture.HTTPLoader{Client: &http.Client{Timeout: 30 * time.Second}},
	}
	sc, err := scene.Build(ctx, table, loader, scene.Options{
		Phases:     phasesFor(cfg, table, rng),
		RNG:        rng,
		OnProgress: ui.Progress,
		OnComplete: ui.Complete,
		Logger:     logger,
		Metrics:    collector,
	})
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}
	defer sc.Close()
	state.SetScene(sc)

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return err
	}

	mode := sim.Accelerated
	if cfg.RealTime {
		mode = sim.RealTime
	}
	loop := sim.NewLoop(state, time.Duration(float64(time.Second)*cfg.FrameDelta()), mode)
	loop.Selector = ui

	d := &director{steps: steps, shell: ui, loop: loop}
	if err := d.advance(0); err != nil {
		return err
	}

	renderer := render.NewRenderer(cfg.Width, cfg.Height)
	renderer.Supersampling = cfg.Supersample
	renderer.Workers = cfg.Workers

	loop.AddListener(func(ctx context.Context, st *sim.State) error {
		if err := d.advance(st.Frame); err != nil {
			return err
		}
		if cfg.SnapshotEvery <= 0 || st.Frame%uint64(cfg.SnapshotEvery) != 0 {
			return nil
		}
		return snapshot(ctx, renderer, st, ui, cfg.OutDir, logger)
	})

	logger.Info(ctx, "session started",
		logging.Int("frames", cfg.Frames),
		logging.Int("script_steps", len(steps)),
		logging.String("out", cfg.OutDir),
	)
	return loop.Run(ctx, cfg.Frames)
}

func loadTable(path string) (*bodies.Table, error) {
	if path == "" {
		return bodies.Default()
	}
	return bodies.LoadFile(path)
}

func phasesFor(cfg config.Config, table *bodies.Table, rng *rand.Rand) bodies.Phases {
	if cfg.Phase != "ephemeris" {
		return bodies.RandomPhases(table, rng)
	}
	at := cfg.Epoch
	if at.IsZero() {
		at = time.Now()
	}
	return bodies.EphemerisPhases(table, at)
}

// director feeds scripted steps to the shell and the loop as frames pass.
type director struct {
	steps []step
	next  int
	shell *shell.Shell
	loop  *sim.Loop
}

// advance applies every step scheduled at or before frame.
func (d *director) advance(frame uint64) error {
	for d.next < len(d.steps) && uint64(d.steps[d.next].Frame) <= frame {
		if err := d.apply(d.steps[d.next]); err != nil {
			return err
		}
		d.next++
	}
	return nil
}

func (d *director) apply(s step) error {
	st := d.loop.State
	switch s.Action {
	case "overview":
		d.shell.Overview()
	case "close":
		d.shell.ClosePanel()
	case "sun":
		d.shell.SunSelected()
	case "planet":
		return d.shell.Press(s.Body)
	case "click":
		d.loop.Click(s.X*float64(st.Width), s.Y*float64(st.Height))
	case "move":
		d.loop.Move(s.X*float64(st.Width), s.Y*float64(st.Height))
	case "resize":
		d.loop.Resize(s.Width, s.Height)
	}
	return nil
}

func snapshot(ctx context.Context, r *render.Renderer, st *sim.State, ui *shell.Shell, dir string, logger logging.Logger) error {
	title, titleColor := ui.Title()
	r.Width, r.Height = st.Width, st.Height
	img, err := r.Render(ctx, render.View{
		Scene:      st.Scene,
		Camera:     st.Camera(),
		Title:      title,
		TitleColor: titleColor,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	path := filepath.Join(dir, fmt.Sprintf("frame_%05d.png", st.Frame))
	if err := writePNG(path, img); err != nil {
		return fmt.Errorf("failed to write PNG: %w", err)
	}
	logger.Info(ctx, "snapshot written",
		logging.String("path", path),
		logging.Uint64("frame", st.Frame),
		logging.String("focus", st.Focus),
	)
	return nil
}

func serveMetrics(addr string, collector *metrics.Collector, logger logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	logger.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return (&png.Encoder{CompressionLevel: png.BestSpeed}).Encode(f, img)
}
