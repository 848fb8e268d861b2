package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.ObserveFrame(5 * time.Millisecond)
	c.ObserveFrame(7 * time.Millisecond)
	c.NavCommand("planet")
	c.NavCommandDropped()
	c.Pick("none")
	c.TextureLoaded(true)
	c.TextureLoaded(false)
	c.SetLoadingProgress(42)
	c.SetTransitionActive(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Frames))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.NavCommands.WithLabelValues("planet")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.NavDropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Picks.WithLabelValues("none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.TexturesLoaded.WithLabelValues("placeholder")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.TexturesLoaded.WithLabelValues("ok")))
	assert.Equal(t, 42.0, testutil.ToFloat64(c.LoadingProgress))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Transitions))
}

func TestCollectorReusesRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewCollector(reg)
	require.NoError(t, err)
	b, err := NewCollector(reg)
	require.NoError(t, err)

	a.NavCommand("sun")
	assert.Equal(t, 1.0, testutil.ToFloat64(b.NavCommands.WithLabelValues("sun")))
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveFrame(time.Millisecond)
		c.NavCommand("overview")
		c.Pick("sun")
		c.SetBodies(3)
	})
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)
	c.ObserveFrame(time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "orrery_frames_total 1"))
}
