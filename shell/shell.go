// Package shell holds the presentation state around the scene: what is
// selected, how far loading has got, and the view models for the title, the
// navigation bar and the info panel. Every user navigation action becomes a
// fresh nav.Command.
package shell

import (
	"context"
	"sync"

	"github.com/echoflaresat/orrery/bodies"
	"github.com/echoflaresat/orrery/colors"
	"github.com/echoflaresat/orrery/logging"
	"github.com/echoflaresat/orrery/nav"
)

const (
	LoadingCaption = "LOADING TEXTURES"
	OverviewLabel  = "OVERVIEW"
)

var (
	SunTitleColor     = colors.MustParseHex("#FDB813")
	DefaultTitleColor = colors.White()
)

// Publisher accepts navigation commands. *nav.Inbox implements it.
type Publisher interface {
	Publish(cmd nav.Command) (replaced bool)
}

// Shell is safe for concurrent use: selection events arrive from the frame
// loop while progress arrives from texture loads.
type Shell struct {
	table *bodies.Table
	out   Publisher
	log   logging.Logger

	mu       sync.Mutex
	seq      nav.Sequencer
	selected *bodies.CelestialBody
	showSun  bool
	percent  int
	loading  bool
}

func New(table *bodies.Table, out Publisher, log logging.Logger) *Shell {
	return &Shell{
		table:   table,
		out:     out,
		log:     logging.OrNoop(log),
		loading: true,
	}
}

// PlanetSelected shows the planet's panel and flies to it. A nil body only
// clears the sun panel.
func (s *Shell) PlanetSelected(body *bodies.CelestialBody) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showSun = false
	s.selected = body
	if body != nil {
		s.publish(s.seq.Planet(body.ID))
	}
}

func (s *Shell) SunSelected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
	s.showSun = true
	s.publish(s.seq.Sun())
}

// Overview clears the selection and returns to the system view.
func (s *Shell) Overview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
	s.showSun = false
	s.publish(s.seq.Overview())
}

// ClosePanel behaves exactly like Overview.
func (s *Shell) ClosePanel() {
	s.Overview()
}

// Press activates a navigation bar entry by body id.
func (s *Shell) Press(id string) error {
	body, err := s.table.Find(id)
	if err != nil {
		return err
	}
	if body.IsSun() {
		s.SunSelected()
	} else {
		s.PlanetSelected(body)
	}
	return nil
}

func (s *Shell) publish(cmd nav.Command) {
	replaced := s.out.Publish(cmd)
	s.log.Debug(context.Background(), "navigation command issued",
		logging.String("command", cmd.String()),
		logging.Bool("replaced", replaced),
	)
}

// Progress records the loading percentage. It never moves backwards.
func (s *Shell) Progress(percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if percent > s.percent {
		s.percent = min(percent, 100)
	}
}

// Complete hides the loading screen and reveals the HUD and panel.
func (s *Shell) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		s.loading = false
		s.log.Info(context.Background(), "loading complete", logging.Int("percent", s.percent))
	}
}

func (s *Shell) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Selected returns the selected planet, or nil, and whether the sun panel is
// open. At most one of the two is set.
func (s *Shell) Selected() (*bodies.CelestialBody, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.showSun
}

type LoadingView struct {
	Visible bool
	Percent int
	Caption string
}

func (s *Shell) LoadingScreen() LoadingView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return LoadingView{Visible: s.loading, Percent: s.percent, Caption: LoadingCaption}
}

// Title is the overlay heading: the active body's name in its color. It is
// empty while loading or when nothing is active.
func (s *Shell) Title() (string, colors.Color4) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.loading:
		return "", DefaultTitleColor
	case s.selected != nil:
		return s.selected.Name, s.selected.Color()
	case s.showSun:
		return s.table.Sun.Name, SunTitleColor
	default:
		return "", DefaultTitleColor
	}
}

type HUDEntry struct {
	ID     string
	Name   string
	Color  colors.Color4
	Active bool
}

// HUDView is the navigation bar: the sun, then every planet in table order.
type HUDView struct {
	Visible       bool
	Entries       []HUDEntry
	OverviewLabel string
}

func (s *Shell) HUD() HUDView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := HUDView{Visible: !s.loading, OverviewLabel: OverviewLabel}
	sun := s.table.Sun
	v.Entries = append(v.Entries, HUDEntry{ID: sun.ID, Name: sun.Name, Color: sun.Color(), Active: s.showSun})
	for _, p := range s.table.Planets {
		v.Entries = append(v.Entries, HUDEntry{
			ID:     p.ID,
			Name:   p.Name,
			Color:  p.Color(),
			Active: s.selected != nil && s.selected.ID == p.ID,
		})
	}
	return v
}

// PanelView is the info side panel for one body.
type PanelView struct {
	Body        *bodies.CelestialBody
	Title       string
	Subtitle    string
	Color       colors.Color4
	Description string
	Facts       []bodies.Fact
}

// Panel returns the open info panel, or nil when none is shown.
func (s *Shell) Panel() *PanelView {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return nil
	}
	body := s.selected
	if body == nil && s.showSun {
		body = s.table.Sun
	}
	if body == nil {
		return nil
	}
	subtitle, _ := body.Fact("Type")
	return &PanelView{
		Body:        body,
		Title:       body.Name,
		Subtitle:    subtitle,
		Color:       body.Color(),
		Description: body.Description,
		Facts:       body.Facts,
	}
}
