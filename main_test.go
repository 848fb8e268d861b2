package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/echoflaresat/orrery/bodies"
	"github.com/echoflaresat/orrery/config"
	"github.com/echoflaresat/orrery/logging"
	"github.com/echoflaresat/orrery/nav"
	"github.com/echoflaresat/orrery/shell"
	"github.com/echoflaresat/orrery/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScript(t *testing.T) {
	steps, err := parseScript("240:sun, 0:overview,30:planet=earth,420:click=0.5x0.25,30:resize=640x480,")
	require.NoError(t, err)
	assert.Equal(t, []step{
		{Frame: 0, Action: "overview"},
		{Frame: 30, Action: "planet", Body: "earth"},
		{Frame: 30, Action: "resize", Width: 640, Height: 480},
		{Frame: 240, Action: "sun"},
		{Frame: 420, Action: "click", X: 0.5, Y: 0.25},
	}, steps)

	steps, err = parseScript("")
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestParseScriptErrors(t *testing.T) {
	for _, s := range []string{
		"overview",
		"x:overview",
		"-1:sun",
		"5:planet",
		"5:warp=9",
		"5:click=0.5",
		"5:click=1.5x0.5",
		"5:resize=0x10",
	} {
		_, err := parseScript(s)
		assert.Error(t, err, s)
	}
}

func TestDirectorAppliesStepsInOrder(t *testing.T) {
	table, err := bodies.Default()
	require.NoError(t, err)
	inbox := nav.NewInbox()
	ui := shell.New(table, inbox, nil)
	loop := sim.NewLoop(sim.NewState(nil, inbox, sim.Options{}), time.Second/60, sim.Accelerated)

	steps, err := parseScript("0:planet=mars,10:sun,20:planet=pluto")
	require.NoError(t, err)
	d := &director{steps: steps, shell: ui, loop: loop}

	require.NoError(t, d.advance(0))
	cmd, ok := inbox.Take()
	require.True(t, ok)
	assert.Equal(t, "mars", cmd.Body)

	require.NoError(t, d.advance(9))
	_, ok = inbox.Take()
	assert.False(t, ok)

	require.NoError(t, d.advance(10))
	_, sun := ui.Selected()
	assert.True(t, sun)

	assert.ErrorIs(t, d.advance(25), bodies.ErrUnknownBody)
}

func TestRunWritesSnapshots(t *testing.T) {
	if testing.Short() {
		t.Skip("renders frames")
	}
	out := t.TempDir()
	cfg := config.Config{
		Width:         48,
		Height:        32,
		Frames:        6,
		FPS:           60,
		Assets:        t.TempDir(),
		OutDir:        out,
		SnapshotEvery: 3,
		Supersample:   1,
		Workers:       2,
		Phase:         "random",
		Seed:          7,
	}
	steps, err := parseScript("0:planet=earth,2:click=0.5x0.5")
	require.NoError(t, err)

	require.NoError(t, run(context.Background(), cfg, steps, logging.Noop()))

	for _, name := range []string{"frame_00003.png", "frame_00006.png"} {
		info, err := os.Stat(filepath.Join(out, name))
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
	_, err = os.Stat(filepath.Join(out, "frame_00004.png"))
	assert.True(t, os.IsNotExist(err))
}
