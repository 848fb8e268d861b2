package scene

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"

	"github.com/echoflaresat/orrery/bodies"
	"github.com/echoflaresat/orrery/logging"
	"github.com/echoflaresat/orrery/metrics"
	"github.com/echoflaresat/orrery/nav"
	"github.com/echoflaresat/orrery/texture"
	"golang.org/x/sync/errgroup"
)

const placeholderSize = 64

// Options tunes a scene build. The zero value builds the full scene with
// random orbital phases and no callbacks.
type Options struct {
	// Phases sets each planet's initial orbit angle. Planets missing from it
	// start at a random angle.
	Phases     bodies.Phases
	RNG        *rand.Rand
	StarCount  int
	OnProgress func(percent int)
	OnComplete func()
	Logger     logging.Logger
	Metrics    *metrics.Collector
}

// Scene is everything the frame loop animates and the renderer draws.
type Scene struct {
	Table   *bodies.Table
	Sun     *Sun
	Planets []*Object
	Stars   *Starfield
	Corona  *Corona
}

// Build loads every texture the table references and constructs the scene.
// Textures that fail to load are replaced by flat placeholders, so only
// context cancellation fails a build. A body's textures load concurrently and
// the body is added only once all of them have resolved.
func Build(ctx context.Context, table *bodies.Table, loader texture.Loader, opts Options) (*Scene, error) {
	log := logging.OrNoop(opts.Logger)
	rng := opts.RNG
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	starCount := opts.StarCount
	if starCount == 0 {
		starCount = DefaultStarCount
	}

	progress := NewProgress(table.TextureCount(), func(pct int) {
		opts.Metrics.SetLoadingProgress(pct)
		if opts.OnProgress != nil {
			opts.OnProgress(pct)
		}
	}, opts.OnComplete)

	b := &builder{loader: loader, log: log, metrics: opts.Metrics, progress: progress}

	s := &Scene{Table: table, Stars: NewStarfield(rng, starCount)}

	sunTex, err := b.loadBody(ctx, table.Sun)
	if err != nil {
		return nil, err
	}
	s.Sun = &Sun{Body: table.Sun, Surface: sunTex[0]}
	s.Corona = NewCorona(rng, table.Sun.Radius)

	for _, p := range table.Planets {
		texs, err := b.loadBody(ctx, p)
		if err != nil {
			s.Close()
			return nil, err
		}

		angle, ok := opts.Phases[p.ID]
		if !ok {
			angle = rng.Float64() * 2 * math.Pi
		}
		obj := &Object{
			Body:         p,
			OrbitAngle:   angle,
			Tilt:         p.TiltDeg * math.Pi / 180,
			Surface:      texs[0],
			LabelVisible: true,
			Orbit:        OrbitPath(p.Distance),
		}
		rest := texs[1:]
		if p.Clouds != "" {
			obj.Clouds = &rest[0]
			rest = rest[1:]
		}
		if p.HasRing() {
			obj.Ring = &rest[0]
		}
		s.Planets = append(s.Planets, obj)
	}

	opts.Metrics.SetBodies(1 + len(s.Planets))
	log.Info(ctx, "scene constructed",
		logging.String("table_version", table.Version),
		logging.Int("planets", len(s.Planets)),
		logging.Int("textures", table.TextureCount()),
		logging.Int("placeholders", b.placeholders),
	)
	progress.Complete()
	return s, nil
}

type builder struct {
	loader       texture.Loader
	log          logging.Logger
	metrics      *metrics.Collector
	progress     *Progress
	placeholders int
}

// loadBody resolves all of a body's textures, in TextureRefs order.
func (b *builder) loadBody(ctx context.Context, body *bodies.CelestialBody) ([]texture.Texture, error) {
	refs := body.TextureRefs()
	out := make([]texture.Texture, len(refs))
	failed := make([]bool, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		g.Go(func() error {
			tex, err := b.loader.Load(gctx, ref)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
					return err
				}
				b.log.Warn(ctx, "texture load failed, using placeholder",
					logging.String("body", body.ID),
					logging.String("ref", ref),
					logging.Err(err),
				)
				tex = texture.Placeholder(texture.PlaceholderColor, placeholderSize)
				failed[i] = true
			}
			out[i] = tex
			b.metrics.TextureLoaded(tex.Placeholder)
			b.progress.Loaded()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, t := range out {
			t.Close()
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		for _, t := range out {
			t.Close()
		}
		return nil, err
	}
	for _, f := range failed {
		if f {
			b.placeholders++
		}
	}
	return out, nil
}

// Planet finds a planet by id with a linear scan.
func (s *Scene) Planet(id string) (*Object, bool) {
	for _, p := range s.Planets {
		if p.Body.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Locate makes the scene a nav.Locator over its planets.
func (s *Scene) Locate(id string) (nav.Focusable, bool) {
	if s == nil {
		return nav.Focusable{}, false
	}
	p, ok := s.Planet(id)
	if !ok {
		return nav.Focusable{}, false
	}
	return nav.Focusable{ID: p.Body.ID, Radius: p.Body.Radius, Position: p.WorldPosition()}, true
}

// Close releases texture memory maps.
func (s *Scene) Close() error {
	var errs []error
	if s.Sun != nil {
		errs = append(errs, s.Sun.Surface.Close())
	}
	for _, p := range s.Planets {
		errs = append(errs, p.Surface.Close())
		if p.Clouds != nil {
			errs = append(errs, p.Clouds.Close())
		}
		if p.Ring != nil {
			errs = append(errs, p.Ring.Close())
		}
	}
	return errors.Join(errs...)
}
