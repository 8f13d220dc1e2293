// Package server provides the HTTP inspection surface: health, the
// synchronous state snapshot, swipe statistics, tuning profiles and the
// live event WebSocket.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/swipe"
)

// StateSource serves the current detector snapshot. The pipeline publishes
// a copy after every frame, so reads never race the detectors.
type StateSource interface {
	Snapshot() gesture.Snapshot
}

// StatsSource serves the swipe machine counters.
type StatsSource interface {
	Stats() swipe.Stats
}

// Config holds the server configuration. Nil fields disable the
// corresponding routes.
type Config struct {
	Store *store.Store
	State StateSource
	Stats StatsSource
	Hub   *Hub
}

// Server is the HTTP server for the mudra pipeline.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.State != nil {
		s.mux.HandleFunc("/api/state", s.handleState)
	}
	if s.config.Stats != nil {
		s.mux.HandleFunc("/api/stats", s.handleStats)
	}
	if s.config.Store != nil {
		s.mux.HandleFunc("/api/profiles", s.handleProfiles)
		s.mux.HandleFunc("/api/profiles/", s.handleProfile)
	}
	if s.config.Hub != nil {
		s.mux.Handle("/ws/events", s.config.Hub)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

// handleState serves the synchronous snapshot for cross-process
// inspection, independent of the edge-triggered emission stream.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.config.State.Snapshot())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	st := s.config.Stats.Stats()
	writeJSON(w, map[string]any{
		"swipesConfirmed": st.Confirmed,
		"swipesFiltered":  st.Filtered,
		"swipeState":      st.State.String(),
	})
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	names, err := s.config.Store.Profiles().List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, names)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/profiles/")
	if name == "" || strings.Contains(name, "/") {
		http.Error(w, "Invalid profile name", http.StatusBadRequest)
		return
	}

	profiles := s.config.Store.Profiles()
	switch r.Method {
	case http.MethodGet:
		data, err := profiles.Get(name)
		if errors.Is(err, store.ErrProfileNotFound) {
			http.Error(w, "Profile not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)

	case http.MethodPut:
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			http.Error(w, "Failed to read body", http.StatusBadRequest)
			return
		}
		if !json.Valid(body) {
			http.Error(w, "Profile must be valid JSON", http.StatusBadRequest)
			return
		}
		if err := profiles.Save(name, body); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		if err := profiles.Delete(name); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
