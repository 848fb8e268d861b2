package sim

import (
	"context"
	"time"

	"github.com/echoflaresat/orrery/bodies"
	"github.com/echoflaresat/orrery/logging"
	"github.com/echoflaresat/orrery/metrics"
	"github.com/echoflaresat/orrery/pick"
)

// Mode describes how the Loop paces frames.
type Mode int

const (
	// RealTime waits Tick of wall-clock time between frames.
	RealTime Mode = iota
	// Accelerated runs frames back to back, still stepping by Tick.
	Accelerated
)

// Selector receives clicks that landed on a body.
type Selector interface {
	PlanetSelected(body *bodies.CelestialBody)
	SunSelected()
}

type EventKind int

const (
	PointerClick EventKind = iota
	PointerMove
	ViewportResize
)

// Event is a pointer or viewport event in client pixels. Events are queued
// and applied at the start of the next frame.
type Event struct {
	Kind   EventKind
	X, Y   float64
	Width  int
	Height int
}

const eventQueue = 64

// Loop drives a State one frame per tick and notifies listeners after each
// step. All State mutation happens on the goroutine running the loop.
type Loop struct {
	State    *State
	Tick     time.Duration
	Mode     Mode
	Selector Selector

	log       logging.Logger
	metrics   *metrics.Collector
	events    chan Event
	listeners []func(context.Context, *State) error
}

func NewLoop(state *State, tick time.Duration, mode Mode) *Loop {
	if tick <= 0 {
		tick = time.Second / 60
	}
	return &Loop{
		State:   state,
		Tick:    tick,
		Mode:    mode,
		log:     state.log,
		metrics: state.metrics,
		events:  make(chan Event, eventQueue),
	}
}

// AddListener registers a callback invoked after every frame. A listener
// error stops the loop.
func (l *Loop) AddListener(fn func(context.Context, *State) error) {
	l.listeners = append(l.listeners, fn)
}

// Post queues an event. It reports false when the queue is full.
func (l *Loop) Post(ev Event) bool {
	select {
	case l.events <- ev:
		return true
	default:
		return false
	}
}

func (l *Loop) Click(x, y float64) bool {
	return l.Post(Event{Kind: PointerClick, X: x, Y: y})
}

func (l *Loop) Move(x, y float64) bool {
	return l.Post(Event{Kind: PointerMove, X: x, Y: y})
}

func (l *Loop) Resize(width, height int) bool {
	return l.Post(Event{Kind: ViewportResize, Width: width, Height: height})
}

// Run steps frames until ctx is done or, when frames > 0, that many frames
// have run. Cancellation is not an error.
func (l *Loop) Run(ctx context.Context, frames int) error {
	var tick <-chan time.Time
	if l.Mode == RealTime {
		ticker := time.NewTicker(l.Tick)
		defer ticker.Stop()
		tick = ticker.C
	}

	for n := 0; frames <= 0 || n < frames; n++ {
		if ctx.Err() != nil {
			return nil
		}
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		}
		if err := l.frame(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Start runs the loop in a separate goroutine. The returned channel yields
// Run's result and is then closed.
func (l *Loop) Start(ctx context.Context, frames int) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- l.Run(ctx, frames)
	}()
	return done
}

func (l *Loop) frame(ctx context.Context) error {
	start := time.Now()
	l.drainEvents(ctx)
	l.State.Step(ctx, l.Tick.Seconds())
	for _, fn := range l.listeners {
		if err := fn(ctx, l.State); err != nil {
			return err
		}
	}
	l.metrics.ObserveFrame(time.Since(start))
	return nil
}

func (l *Loop) drainEvents(ctx context.Context) {
	for {
		select {
		case ev := <-l.events:
			l.handle(ctx, ev)
		default:
			return
		}
	}
}

func (l *Loop) handle(ctx context.Context, ev Event) {
	s := l.State
	switch ev.Kind {
	case ViewportResize:
		s.Resize(ev.Width, ev.Height)
	case PointerMove:
		if s.Busy() {
			// Keep the last hint until the flight lands.
			return
		}
		x, y := pick.NDC(ev.X, ev.Y, s.Width, s.Height)
		s.Hovering = pick.Hover(s.Scene, s.Camera(), x, y, false)
	case PointerClick:
		x, y := pick.NDC(ev.X, ev.Y, s.Width, s.Height)
		sel := pick.Click(s.Scene, s.Camera(), x, y, s.Busy())
		l.metrics.Pick(sel.Kind.String())
		if sel.Kind == pick.None {
			return
		}
		l.log.Debug(ctx, "body picked",
			logging.String("body", sel.Body.ID),
			logging.Float("distance", sel.Distance),
		)
		if l.Selector == nil {
			return
		}
		if sel.Kind == pick.Sun {
			l.Selector.SunSelected()
		} else {
			l.Selector.PlanetSelected(sel.Body)
		}
	}
}
