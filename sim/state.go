package sim

import (
	"context"
	"math/rand/v2"

	"github.com/echoflaresat/orrery/logging"
	"github.com/echoflaresat/orrery/metrics"
	"github.com/echoflaresat/orrery/nav"
	"github.com/echoflaresat/orrery/render"
	"github.com/echoflaresat/orrery/scene"
	"github.com/echoflaresat/orrery/vectors"
)

const (
	FocusedMultiplier = 0.02
	AmbientMultiplier = 0.3
)

// Options wires optional collaborators into a State.
type Options struct {
	Width   int
	Height  int
	FOVDeg  float64
	RNG     *rand.Rand
	Logger  logging.Logger
	Metrics *metrics.Collector
}

// State is the single owned aggregate the frame loop mutates. Picking and
// navigation read it; only Step writes it.
type State struct {
	Scene      *scene.Scene
	CameraPos  vectors.Vec3
	LookAt     vectors.Vec3
	Controls   *nav.Controls
	Focus      string // focused planet id, "" in overview and on the sun
	Transition *nav.Transition
	Hovering   bool
	Elapsed    float64
	Frame      uint64
	Width      int
	Height     int
	FOVDeg     float64

	controller nav.Controller
	inbox      *nav.Inbox
	rng        *rand.Rand
	log        logging.Logger
	metrics    *metrics.Collector
}

// NewState starts in overview: camera at (0, 80, 140) orbiting the origin.
// sc may be nil until the scene finishes building; see SetScene.
func NewState(sc *scene.Scene, inbox *nav.Inbox, opts Options) *State {
	if opts.Width <= 0 {
		opts.Width = 960
	}
	if opts.Height <= 0 {
		opts.Height = 540
	}
	if opts.FOVDeg <= 0 {
		opts.FOVDeg = render.DefaultFOVDeg
	}
	if opts.RNG == nil {
		opts.RNG = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if inbox == nil {
		inbox = nav.NewInbox()
	}
	return &State{
		Scene:     sc,
		CameraPos: nav.OverviewPose.Position,
		LookAt:    nav.OverviewPose.Target,
		Controls:  nav.NewControls(nav.OverviewPose.Target),
		Width:     opts.Width,
		Height:    opts.Height,
		FOVDeg:    opts.FOVDeg,
		inbox:     inbox,
		rng:       opts.RNG,
		log:       logging.OrNoop(opts.Logger),
		metrics:   opts.Metrics,
	}
}

func (s *State) SetScene(sc *scene.Scene) {
	s.Scene = sc
}

func (s *State) Inbox() *nav.Inbox {
	return s.inbox
}

// Busy reports whether a camera flight is in progress.
func (s *State) Busy() bool {
	return s.Transition != nil
}

// Camera is the perspective camera for the current pose and viewport.
func (s *State) Camera() render.Camera {
	return render.NewCamera(s.CameraPos, s.LookAt, s.FOVDeg, float64(s.Width)/float64(s.Height))
}

func (s *State) Resize(width, height int) {
	if width > 0 && height > 0 {
		s.Width, s.Height = width, height
	}
}

// OrbitalMultiplier scales a planet's nominal orbital speed: nearly frozen
// while it is focused, slow otherwise.
func (s *State) OrbitalMultiplier(id string) float64 {
	if s.Focus != "" && s.Focus == id {
		return FocusedMultiplier
	}
	return AmbientMultiplier
}

// Step advances one frame of dt seconds, in a fixed order:
// navigation, sun spin, glow view vector, corona, planets, labels, target
// resync, starfield, then camera flight or controls.
func (s *State) Step(ctx context.Context, dt float64) {
	s.Elapsed += dt
	s.Frame++

	s.pollNavigation(ctx)

	if sc := s.Scene; sc != nil {
		if sc.Sun != nil {
			sc.Sun.Rotate()
			sc.Sun.ViewVector = s.CameraPos
		}
		if sc.Corona != nil {
			sc.Corona.Rotate()
		}
		for _, p := range sc.Planets {
			p.Advance(s.OrbitalMultiplier(p.ID()))
			p.LabelVisible = s.Focus == ""
			if p.ID() == s.Focus && !s.Busy() {
				s.Controls.Target = p.WorldPosition()
			}
		}
		if sc.Stars != nil {
			sc.Stars.Twinkle(s.Elapsed, s.rng)
			sc.Stars.Rotate()
		}
	}

	s.updateCamera(ctx, dt)
}

func (s *State) pollNavigation(ctx context.Context) {
	cmd, ok := s.inbox.Take()
	if !ok {
		return
	}
	if !s.controller.Observe(cmd) {
		s.log.Debug(ctx, "stale navigation command ignored",
			logging.Uint64("id", cmd.ID),
			logging.Uint64("last", s.controller.Last()),
		)
		return
	}
	s.metrics.NavCommand(cmd.Kind.String())

	act, ok := nav.Resolve(cmd, s.Scene)
	if !ok {
		s.metrics.NavCommandDropped()
		s.log.Debug(ctx, "navigation command dropped, body not loaded",
			logging.Uint64("id", cmd.ID),
			logging.String("body", cmd.Body),
		)
		return
	}
	s.apply(ctx, act)
}

// apply starts the flight for a resolved command, superseding any flight
// already in progress from wherever the camera is now.
func (s *State) apply(ctx context.Context, act nav.Action) {
	s.Focus = act.Focus
	if act.Bounds != nil {
		s.Controls.Bounds = *act.Bounds
	}
	from := nav.Pose{Position: s.CameraPos, Target: s.Controls.Target}
	s.Transition = nav.NewTransition(from, act.To, act.Duration)
	s.Controls.Enabled = false
	s.metrics.SetTransitionActive(true)

	s.log.Info(ctx, "camera flight started",
		logging.String("kind", act.Kind.String()),
		logging.String("focus", act.Focus),
		logging.Float("duration", act.Duration),
	)
}

func (s *State) updateCamera(ctx context.Context, dt float64) {
	if s.Transition == nil {
		s.CameraPos = s.Controls.Update(s.CameraPos)
		s.LookAt = s.Controls.Target
		return
	}

	pose, done := s.Transition.Step(dt)
	s.CameraPos = pose.Position
	s.Controls.Target = pose.Target
	s.LookAt = s.Transition.LookAt()
	if !done {
		return
	}

	s.Controls.Target = s.Transition.To.Target
	s.Controls.Enabled = true
	s.Controls.Settle()
	s.Transition = nil
	s.metrics.SetTransitionActive(false)
	s.CameraPos = s.Controls.Update(s.CameraPos)
	s.LookAt = s.Controls.Target
	s.log.Debug(ctx, "camera flight finished", logging.String("focus", s.Focus))
}
