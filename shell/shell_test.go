package shell

import (
	"sync"
	"testing"

	"github.com/echoflaresat/orrery/bodies"
	"github.com/echoflaresat/orrery/colors"
	"github.com/echoflaresat/orrery/nav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	cmds []nav.Command
}

func (r *recorder) Publish(cmd nav.Command) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds = append(r.cmds, cmd)
	return false
}

func newShell(t *testing.T) (*Shell, *recorder, *bodies.Table) {
	t.Helper()
	table, err := bodies.Default()
	require.NoError(t, err)
	rec := &recorder{}
	return New(table, rec, nil), rec, table
}

func find(t *testing.T, table *bodies.Table, id string) *bodies.CelestialBody {
	t.Helper()
	b, err := table.Find(id)
	require.NoError(t, err)
	return b
}

func TestSelectionIssuesIncreasingCommands(t *testing.T) {
	s, rec, table := newShell(t)
	earth := find(t, table, "earth")

	s.PlanetSelected(earth)
	s.SunSelected()
	s.Overview()
	s.ClosePanel()

	require.Len(t, rec.cmds, 4)
	assert.Equal(t, nav.Command{Kind: nav.FocusPlanet, Body: "earth", ID: 1}, rec.cmds[0])
	assert.Equal(t, nav.FocusSun, rec.cmds[1].Kind)
	assert.Equal(t, nav.Overview, rec.cmds[2].Kind)
	assert.Equal(t, nav.Overview, rec.cmds[3].Kind)
	for i := 1; i < len(rec.cmds); i++ {
		assert.Greater(t, rec.cmds[i].ID, rec.cmds[i-1].ID)
	}
}

func TestSelectingPlanetClearsSun(t *testing.T) {
	s, _, table := newShell(t)
	s.Complete()

	s.SunSelected()
	planet, sun := s.Selected()
	assert.Nil(t, planet)
	assert.True(t, sun)
	name, c := s.Title()
	assert.Equal(t, "Sun", name)
	assert.Equal(t, SunTitleColor, c)

	mars := find(t, table, "mars")
	s.PlanetSelected(mars)
	planet, sun = s.Selected()
	assert.Same(t, mars, planet)
	assert.False(t, sun)
	name, c = s.Title()
	assert.Equal(t, "Mars", name)
	assert.Equal(t, mars.Color(), c)

	s.ClosePanel()
	planet, sun = s.Selected()
	assert.Nil(t, planet)
	assert.False(t, sun)
	name, _ = s.Title()
	assert.Empty(t, name)
	assert.Nil(t, s.Panel())
}

func TestNilPlanetOnlyClearsSun(t *testing.T) {
	s, rec, _ := newShell(t)
	s.SunSelected()
	s.PlanetSelected(nil)
	_, sun := s.Selected()
	assert.False(t, sun)
	assert.Len(t, rec.cmds, 1)
}

func TestLoadingHidesOverlays(t *testing.T) {
	s, _, table := newShell(t)
	s.PlanetSelected(find(t, table, "earth"))

	assert.True(t, s.Loading())
	name, _ := s.Title()
	assert.Empty(t, name)
	assert.Nil(t, s.Panel())
	assert.False(t, s.HUD().Visible)
	assert.Equal(t, LoadingView{Visible: true, Caption: LoadingCaption}, s.LoadingScreen())

	s.Complete()
	assert.False(t, s.Loading())
	assert.True(t, s.HUD().Visible)
	require.NotNil(t, s.Panel())
	assert.False(t, s.LoadingScreen().Visible)
}

func TestProgressNeverDecreases(t *testing.T) {
	s, _, _ := newShell(t)
	for _, p := range []int{8, 25, 16, 100, 120} {
		s.Progress(p)
	}
	assert.Equal(t, 100, s.LoadingScreen().Percent)
}

func TestHUDListsSunThenPlanets(t *testing.T) {
	s, _, table := newShell(t)
	s.Complete()
	s.PlanetSelected(find(t, table, "saturn"))

	hud := s.HUD()
	require.Len(t, hud.Entries, 1+len(table.Planets))
	assert.Equal(t, "sun", hud.Entries[0].ID)
	assert.Equal(t, OverviewLabel, hud.OverviewLabel)

	var active []string
	for i, e := range hud.Entries[1:] {
		assert.Equal(t, table.Planets[i].ID, e.ID)
		if e.Active {
			active = append(active, e.ID)
		}
	}
	assert.Equal(t, []string{"saturn"}, active)
	assert.False(t, hud.Entries[0].Active)

	s.SunSelected()
	assert.True(t, s.HUD().Entries[0].Active)
}

func TestPanelShowsFacts(t *testing.T) {
	s, _, table := newShell(t)
	s.Complete()

	s.SunSelected()
	p := s.Panel()
	require.NotNil(t, p)
	assert.Equal(t, table.Sun, p.Body)
	assert.Equal(t, "Yellow dwarf (G2V)", p.Subtitle)
	assert.NotEmpty(t, p.Description)
	assert.Len(t, p.Facts, 6)

	s.PlanetSelected(find(t, table, "earth"))
	p = s.Panel()
	require.NotNil(t, p)
	assert.Equal(t, "Earth", p.Title)
	assert.Equal(t, "Rocky planet", p.Subtitle)
	assert.Equal(t, colors.MustParseHex("#4169E1"), p.Color)
}

func TestPress(t *testing.T) {
	s, rec, _ := newShell(t)
	require.NoError(t, s.Press("jupiter"))
	require.NoError(t, s.Press("sun"))
	assert.ErrorIs(t, s.Press("pluto"), bodies.ErrUnknownBody)

	require.Len(t, rec.cmds, 2)
	assert.Equal(t, "jupiter", rec.cmds[0].Body)
	assert.Equal(t, nav.FocusSun, rec.cmds[1].Kind)
}

func TestShellDrivesInbox(t *testing.T) {
	table, err := bodies.Default()
	require.NoError(t, err)
	inbox := nav.NewInbox()
	s := New(table, inbox, nil)

	s.PlanetSelected(find(t, table, "venus"))
	s.Overview()

	cmd, ok := inbox.Take()
	require.True(t, ok)
	assert.Equal(t, nav.Overview, cmd.Kind)
	_, ok = inbox.Take()
	assert.False(t, ok)
}
