package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the Prometheus metrics of a running scene. All recording
// methods are safe on a nil *Collector so callers can leave metrics disabled.
type Collector struct {
	gatherer prometheus.Gatherer

	Frames            prometheus.Counter
	FrameDuration     prometheus.Histogram
	NavCommands       *prometheus.CounterVec
	NavDropped        prometheus.Counter
	Transitions       prometheus.Gauge
	Picks             *prometheus.CounterVec
	TexturesLoaded    *prometheus.CounterVec
	LoadingProgress   prometheus.Gauge
	BodiesConstructed prometheus.Gauge
}

// NewCollector registers scene metrics against reg, defaulting to the global
// Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error

	if c.Frames, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orrery_frames_total",
		Help: "Number of frames stepped by the update loop.",
	}), "orrery_frames_total"); err != nil {
		return nil, err
	}
	if c.FrameDuration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "orrery_frame_duration_seconds",
		Help:    "Wall-clock time spent in one frame update, including the frame hook.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.016, 0.033, 0.1, 0.5, 1, 5},
	}), "orrery_frame_duration_seconds"); err != nil {
		return nil, err
	}
	if c.NavCommands, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orrery_nav_commands_total",
		Help: "Navigation commands acted upon, labeled by kind.",
	}, []string{"kind"}), "orrery_nav_commands_total"); err != nil {
		return nil, err
	}
	if c.NavDropped, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orrery_nav_commands_dropped_total",
		Help: "Navigation commands dropped because their body was not in the scene.",
	}), "orrery_nav_commands_dropped_total"); err != nil {
		return nil, err
	}
	if c.Transitions, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "orrery_camera_transition_active",
		Help: "1 while a camera transition is in flight.",
	}), "orrery_camera_transition_active"); err != nil {
		return nil, err
	}
	if c.Picks, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orrery_picks_total",
		Help: "Pointer clicks resolved by the picking layer, labeled by result (planet, sun, none, suppressed).",
	}, []string{"result"}), "orrery_picks_total"); err != nil {
		return nil, err
	}
	if c.TexturesLoaded, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orrery_textures_loaded_total",
		Help: "Texture loads during scene construction, labeled by outcome (ok, placeholder).",
	}, []string{"outcome"}), "orrery_textures_loaded_total"); err != nil {
		return nil, err
	}
	if c.LoadingProgress, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "orrery_loading_progress_percent",
		Help: "Scene construction progress in percent.",
	}), "orrery_loading_progress_percent"); err != nil {
		return nil, err
	}
	if c.BodiesConstructed, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "orrery_bodies_constructed",
		Help: "Number of body objects present in the scene.",
	}), "orrery_bodies_constructed"); err != nil {
		return nil, err
	}
	return c, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveFrame(d time.Duration) {
	if c == nil {
		return
	}
	c.Frames.Inc()
	c.FrameDuration.Observe(d.Seconds())
}

func (c *Collector) NavCommand(kind string) {
	if c == nil {
		return
	}
	c.NavCommands.WithLabelValues(kind).Inc()
}

func (c *Collector) NavCommandDropped() {
	if c == nil {
		return
	}
	c.NavDropped.Inc()
}

func (c *Collector) SetTransitionActive(active bool) {
	if c == nil {
		return
	}
	if active {
		c.Transitions.Set(1)
	} else {
		c.Transitions.Set(0)
	}
}

func (c *Collector) Pick(result string) {
	if c == nil {
		return
	}
	c.Picks.WithLabelValues(result).Inc()
}

func (c *Collector) TextureLoaded(placeholder bool) {
	if c == nil {
		return
	}
	outcome := "ok"
	if placeholder {
		outcome = "placeholder"
	}
	c.TexturesLoaded.WithLabelValues(outcome).Inc()
}

func (c *Collector) SetLoadingProgress(percent int) {
	if c == nil {
		return
	}
	c.LoadingProgress.Set(float64(percent))
}

func (c *Collector) SetBodies(n int) {
	if c == nil {
		return
	}
	c.BodiesConstructed.Set(float64(n))
}

// register adds col to reg, reusing an already registered collector of the
// same type so several scenes can share one registry.
func register[T prometheus.Collector](reg prometheus.Registerer, col T, name string) (T, error) {
	if err := reg.Register(col); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return col, nil
}
