// Package api provides the HTTP API for observing the world.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	"github.com/korvan/duskspire/internal/engine"
	"github.com/korvan/duskspire/internal/store"
)

// Server serves the simulation state over HTTP.
type Server struct {
	Eng      *engine.Engine
	St       store.Store
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	newsLimiter := NewRateLimiter(120, 0)

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/news", RateLimitMiddleware(newsLimiter, s.handleNews))
	mux.HandleFunc("/api/v1/teams", s.handleTeams)
	mux.HandleFunc("/api/v1/orphans", s.handleOrphans)
	mux.HandleFunc("/api/v1/rumors", s.handleRumors)

	// Admin endpoints.
	mux.HandleFunc("/api/v1/active", s.adminOnly(s.handleActive))
	mux.HandleFunc("/api/v1/worldevent", s.adminOnly(s.handleWorldEvent))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "admin API disabled", http.StatusForbidden)
			return
		}
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token != s.AdminKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response encode failed", "error", err)
	}
}

func limitParam(r *http.Request, def, max int) int {
	limit := def
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > max {
		limit = max
	}
	return limit
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Eng.GetSimulationStatus())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Eng.RecentEvents(limitParam(r, 50, 500)))
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	entries, err := s.St.RecentNews(limitParam(r, 20, 200))
	if err != nil {
		http.Error(w, "news unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, entries)
}

func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Eng.GetActiveTeams())
}

func (s *Server) handleOrphans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Eng.Orphans())
}

func (s *Server) handleRumors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Eng.Rumors())
}

// handleActive pauses or resumes agent processing: {"active": false}.
func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	s.Eng.SetActive(req.Active)
	writeJSON(w, map[string]bool{"active": req.Active})
}

// handleWorldEvent activates a world event:
// {"kind": "festival", "name": "The Harvest Feast", "ticks": 500}.
func (s *Server) handleWorldEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind  string `json:"kind"`
		Name  string `json:"name"`
		Ticks uint64 `json:"ticks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Ticks == 0 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	var kind engine.WorldEventKind
	switch req.Kind {
	case "war":
		kind = engine.EventWar
	case "plague":
		kind = engine.EventPlague
	case "festival":
		kind = engine.EventFestival
	case "throne_crisis":
		kind = engine.EventThroneCrisis
	default:
		http.Error(w, "unknown event kind", http.StatusBadRequest)
		return
	}
	s.Eng.TriggerWorldEvent(kind, req.Name, req.Ticks)
	writeJSON(w, map[string]string{"status": "triggered"})
}
