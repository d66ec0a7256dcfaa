// Package api provides the HTTP API for observing a running simulation.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/little-lives/internal/agents"
	"github.com/talgya/little-lives/internal/engine"
	"github.com/talgya/little-lives/internal/env"
	"github.com/talgya/little-lives/internal/habits"
	"github.com/talgya/little-lives/internal/persistence"
)

// Server serves the simulation state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	DB       *persistence.DB
	Hub      *Hub
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	exportLimiter := NewRateLimiter(30, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/agent/", s.handleAgentDetail)
	mux.HandleFunc("/api/v1/habits", s.handleHabits)
	mux.HandleFunc("/api/v1/zones", s.handleZones)
	mux.HandleFunc("/api/v1/decisions", s.handleDecisions)
	mux.HandleFunc("/api/v1/export", RateLimitMiddleware(exportLimiter, s.handleExport))

	// Live decision stream (WebSocket).
	mux.HandleFunc("/api/v1/stream", s.Hub.handleStream)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no LIFESIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	tick := s.Sim.LastTick
	writeJSON(w, map[string]any{
		"run_id":           s.Sim.RunID,
		"tick":             tick,
		"sim_time":         env.SimTime(tick),
		"time_bucket":      env.BucketName(env.BucketForTick(tick)),
		"weather":          env.WeatherName(s.Sim.World.WeatherAt(tick)),
		"speed":            s.Eng.Speed,
		"running":          s.Eng.Running(),
		"population":       s.Sim.Stats.Population,
		"avg_mood":         s.Sim.Stats.AvgMood,
		"avg_satisfaction": s.Sim.Stats.AvgSatisfaction,
		"total_wallet":     s.Sim.Stats.TotalWallet,
		"habits":           s.Sim.Store.Len(),
		"dropped_records":  s.Sim.Emitter.Dropped(),
		"stream_clients":   s.Hub.Clients(),
	})
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	type agentSummary struct {
		ID           agents.AgentID `json:"id"`
		Name         string         `json:"name"`
		Action       string         `json:"action"`
		Mood         float64        `json:"mood"`
		Satisfaction float64        `json:"satisfaction"`
		Wallet       float64        `json:"wallet"`
		TotalActions uint64         `json:"total_actions"`
	}

	result := make([]agentSummary, 0, len(s.Sim.Agents))
	for _, a := range s.Sim.Agents {
		result = append(result, agentSummary{
			ID:           a.ID,
			Name:         a.Name,
			Action:       agents.ActionName(a.CurrentAction),
			Mood:         a.Mood,
			Satisfaction: a.Needs.OverallSatisfaction(),
			Wallet:       a.Needs.Wallet,
			TotalActions: a.TotalActions,
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleAgentDetail(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 {
		http.Error(w, "missing agent id", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseUint(parts[4], 10, 64)
	if err != nil {
		http.Error(w, "invalid agent id", http.StatusBadRequest)
		return
	}

	var agent *agents.Agent
	for _, a := range s.Sim.Agents {
		if a.ID == agents.AgentID(id) {
			agent = a
			break
		}
	}
	if agent == nil {
		http.Error(w, "agent not found", http.StatusNotFound)
		return
	}

	type memoryEntry struct {
		Tick   uint64  `json:"tick"`
		Action string  `json:"action"`
		Reward float64 `json:"reward"`
	}
	memory := agent.Memory.Snapshot()
	tail := memory
	if len(tail) > 20 {
		tail = tail[len(tail)-20:]
	}
	recent := make([]memoryEntry, 0, len(tail))
	for _, m := range tail {
		recent = append(recent, memoryEntry{
			Tick:   m.Tick,
			Action: agents.ActionName(m.Action),
			Reward: m.Reward,
		})
	}

	weights := make(map[string]float64, agents.NumActions)
	for _, action := range agents.ActionPriority {
		weights[agents.ActionName(action)] = agent.Weights[action]
	}

	writeJSON(w, map[string]any{
		"agent":         agent,
		"weights":       weights,
		"recent_memory": recent,
		"memory_size":   len(memory),
		"state_key":     habits.KeyFor(agent.Needs).String(),
	})
}

func (s *Server) handleHabits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Store.Export())
}

func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	type zoneEntry struct {
		Name      string `json:"name"`
		Type      string `json:"type"`
		Capacity  int    `json:"capacity"`
		Occupancy int    `json:"occupancy"`
	}

	zones := s.Sim.World.Zones()
	result := make([]zoneEntry, 0, len(zones))
	for _, z := range zones {
		result = append(result, zoneEntry{
			Name:      z.Name,
			Type:      env.ZoneName(z.Type),
			Capacity:  z.Capacity,
			Occupancy: z.Occupancy(),
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleDecisions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 1000 {
			http.Error(w, "limit must be 1-1000", http.StatusBadRequest)
			return
		}
		limit = n
	}

	rows, err := s.DB.RecentDecisions(s.Sim.RunID, limit)
	if err != nil {
		slog.Error("recent decisions query failed", "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

// handleExport returns the habit state as a downloadable snapshot document.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap := habits.Snapshot{
		Version: habits.SnapshotVersion,
		Tick:    s.Sim.LastTick,
		RunID:   s.Sim.RunID,
	}
	for _, list := range s.Sim.Store.Export() {
		snap.Habits = append(snap.Habits, list...)
	}
	w.Header().Set("Content-Disposition", `attachment; filename="habits.json"`)
	writeJSON(w, snap)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.Speed = req.Speed
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
