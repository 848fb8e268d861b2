package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 960, cfg.Width)
	assert.Equal(t, 540, cfg.Height)
	assert.Equal(t, "random", cfg.Phase)
	assert.Equal(t, "assets", cfg.Assets)
	assert.InDelta(t, 1.0/60, cfg.FrameDelta(), 1e-12)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ORRERY_WIDTH", "320")
	t.Setenv("ORRERY_PHASE", "ephemeris")
	t.Setenv("ORRERY_EPOCH", "2024-08-08T09:23:00Z")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, "ephemeris", cfg.Phase)
	assert.True(t, cfg.Epoch.Equal(time.Date(2024, 8, 8, 9, 23, 0, 0, time.UTC)))
}

func TestValidateRejectsBadPhase(t *testing.T) {
	t.Setenv("ORRERY_PHASE", "kepler")
	_, err := Load()
	assert.ErrorContains(t, err, "phase")
}
