package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/little-lives/internal/agents"
	"github.com/talgya/little-lives/internal/config"
	"github.com/talgya/little-lives/internal/engine"
	"github.com/talgya/little-lives/internal/habits"
	"github.com/talgya/little-lives/internal/persistence"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Engine.Agents = 5
	sim := engine.NewSimulation(cfg, "run-1", 42, habits.NewStore())
	sim.TickMinute(1)

	db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RegisterRun("run-1", 42, 5))

	return &Server{
		Sim:      sim,
		Eng:      engine.NewEngine(),
		DB:       db,
		Hub:      NewHub(),
		AdminKey: "secret",
	}
}

func getJSON(t *testing.T, handler http.HandlerFunc, target string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestStatusEndpoint(t *testing.T) {
	s := testServer(t)

	var status map[string]any
	rec := getJSON(t, s.handleStatus, "/api/v1/status", &status)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "run-1", status["run_id"])
	assert.Equal(t, float64(1), status["tick"])
	assert.Equal(t, float64(5), status["population"])
	assert.Contains(t, status, "sim_time")
	assert.Contains(t, status, "weather")
}

func TestAgentsEndpoint(t *testing.T) {
	s := testServer(t)

	var list []map[string]any
	rec := getJSON(t, s.handleAgents, "/api/v1/agents", &list)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, list, 5)
	for _, a := range list {
		assert.Contains(t, a, "name")
		assert.Contains(t, a, "action")
		assert.Contains(t, a, "mood")
	}
}

func TestAgentDetailEndpoint(t *testing.T) {
	s := testServer(t)

	var detail map[string]any
	rec := getJSON(t, s.handleAgentDetail, "/api/v1/agent/1", &detail)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, detail, "agent")
	assert.Contains(t, detail, "weights")
	assert.Contains(t, detail, "state_key")

	rec = getJSON(t, s.handleAgentDetail, "/api/v1/agent/99999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = getJSON(t, s.handleAgentDetail, "/api/v1/agent/banana", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestZonesEndpoint(t *testing.T) {
	s := testServer(t)

	var zones []map[string]any
	rec := getJSON(t, s.handleZones, "/api/v1/zones", &zones)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, zones)

	total := 0.0
	for _, z := range zones {
		total += z["occupancy"].(float64)
	}
	assert.Equal(t, float64(5), total, "every agent occupies exactly one zone after a tick")
}

func TestDecisionsEndpointValidatesLimit(t *testing.T) {
	s := testServer(t)

	rec := getJSON(t, s.handleDecisions, "/api/v1/decisions?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = getJSON(t, s.handleDecisions, "/api/v1/decisions?limit=5000", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = getJSON(t, s.handleDecisions, "/api/v1/decisions?limit=10", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSpeedEndpointAuth(t *testing.T) {
	s := testServer(t)
	handler := s.adminOnly(s.handleSpeed)

	// GET passes through without auth.
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/speed", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// POST without a token is rejected.
	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed":5}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// POST with the right token changes the speed.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed":5}`))
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5.0, s.Eng.Speed)

	// Out-of-range speed is rejected.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed":-1}`))
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportEndpointReturnsValidSnapshot(t *testing.T) {
	s := testServer(t)
	s.Sim.Store.Upsert(habits.StateKey{Hunger: habits.BucketHigh}, agents.ActionEat, 0.5, 10, 8)

	var snap habits.Snapshot
	rec := getJSON(t, s.handleExport, "/api/v1/export", &snap)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, habits.SnapshotVersion, snap.Version)
	assert.Equal(t, "run-1", snap.RunID)
	require.Len(t, snap.Habits, 1)

	restored := habits.NewStore()
	assert.NoError(t, restored.Seed(snap.Habits))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3, 0)
	rl.window = 1 << 40 // Effectively never resets within the test.

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "request %d", i)
	}
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "limits are per IP")
	assert.Positive(t, rl.RetryAfter("1.2.3.4"))
}
