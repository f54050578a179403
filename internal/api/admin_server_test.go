package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/seafarer/internal/middleware"
	"github.com/annel0/seafarer/internal/network"
	"github.com/annel0/seafarer/internal/protocol"
	"github.com/annel0/seafarer/internal/storage"
	"github.com/annel0/seafarer/internal/vec"
)

func newTestServer(t *testing.T) (*AdminServer, *network.Lobby, *storage.MemoryPlayerRepo) {
	t.Helper()
	lobby := network.NewLobby(4)
	repo := storage.NewMemoryPlayerRepo()
	srv := NewAdminServer(Config{Lobby: lobby, Repo: repo, Registry: prometheus.NewRegistry()})
	return srv, lobby, repo
}

func get(t *testing.T, srv *AdminServer, path string) (*httptest.ResponseRecorder, GenericResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.Handler().ServeHTTP(w, req)

	var resp GenericResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w, resp := get(t, srv, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, data, "uptime")
	assert.Contains(t, data, "memory_mb")
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestLobby(t *testing.T) {
	srv, lobby, _ := newTestServer(t)

	w, resp := get(t, srv, "/lobby")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, resp.Data.(map[string]interface{})["total"])

	addr := "127.0.0.1:51000"
	udp := mustUDPAddr(t, addr)
	_, _, err := lobby.Join(udp, "", time.Now())
	require.NoError(t, err)
	_, ok := lobby.Update(addr, protocol.PlayerRecord{Position: vec.Vec3{X: 10, Y: 5}, Boat: true, Used: true, Seq: 1}, time.Now())
	require.True(t, ok)

	w, resp = get(t, srv, "/lobby")
	require.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, 1.0, data["total"])
	assert.Equal(t, 4.0, data["capacity"])
	player := data["players"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, addr, player["addr"])
	assert.Equal(t, true, player["in_ocean"])
	assert.Equal(t, 10.0, player["x"])
}

func TestPlayerSnapshot(t *testing.T) {
	srv, _, repo := newTestServer(t)

	w, _ := get(t, srv, "/players/127.0.0.1:51000")
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.NoError(t, repo.Save(context.Background(), storage.PlayerSnapshot{Addr: "127.0.0.1:51000", ID: 2}))
	w, resp := get(t, srv, "/players/127.0.0.1:51000")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, resp.Data.(map[string]interface{})["id"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)
	get(t, srv, "/health")

	w, _ := get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin_api_http_request_duration_seconds")
}

func TestServerMetrics_Uptime(t *testing.T) {
	sm := &ServerMetrics{StartTime: time.Now().Add(-(26*time.Hour + 3*time.Minute + 4*time.Second))}
	assert.Equal(t, "1д 2ч 3м 4с", sm.GetUptime())

	sm.StartTime = time.Now().Add(-5 * time.Second)
	assert.Equal(t, "5с", sm.GetUptime())
}

func mustUDPAddr(t *testing.T, s string) *net.UDPAddr {
	t.Helper()
	addr, err := net.ResolveUDPAddr("udp", s)
	require.NoError(t, err)
	return addr
}
