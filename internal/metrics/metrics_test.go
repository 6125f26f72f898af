package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatSource struct {
	clients, surfaces int
}

func (f fakeStatSource) ConnectedClients() int { return f.clients }
func (f fakeStatSource) LiveSurfaces() int     { return f.surfaces }

func TestIsEnabledBeforeInit(t *testing.T) {
	assert.False(t, IsEnabled())
}

func TestDaemonMetricsNilWhenDisabled(t *testing.T) {
	m := NewDaemonMetrics()
	assert.Nil(t, m)
	// nil-receiver methods must not panic.
	m.ClientConnected()
	m.ClientDisconnected()
	m.ClientRejected("max_clients")
	m.SetSurfacesLive(3)
	m.IPCError("invalid_surface")
}

func TestDebugStatsHandler(t *testing.T) {
	r := NewRouter(fakeStatSource{clients: 2, surfaces: 5})
	req := httptest.NewRequest(http.MethodGet, "/debug/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"connected_clients":2`)
	assert.Contains(t, w.Body.String(), `"live_surfaces":5`)
}

func TestMetricsRouteAbsentWhenDisabled(t *testing.T) {
	r := NewRouter(nil)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
