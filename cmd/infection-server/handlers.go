package main

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/JoshuaRadin37/Infection/pkg/scenario"
)

// extractRunID extracts the run ID from a path like "/runs/{id}/..."
// Returns the run ID and the remaining path, or empty strings if not found.
func extractRunID(path string) (string, string) {
	if !strings.HasPrefix(path, "/runs/") {
		return "", ""
	}

	rest := path[len("/runs/"):]

	idx := strings.Index(rest, "/")
	if idx == -1 {
		return rest, ""
	}
	return rest[:idx], rest[idx:]
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// POST /runs
// Body: scenario YAML
// Creates a new run from the scenario and returns its ID and starting stats.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "cannot read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	cfg, err := scenario.Parse(data)
	if err != nil {
		http.Error(w, "invalid scenario: "+err.Error(), http.StatusBadRequest)
		return
	}

	run, err := s.manager.CreateRun(cfg, s.cfg.TicksPerStep)
	if err != nil {
		s.zlog.Errorw("Failed to create run", "scenario", cfg.Name, "error", err)
		http.Error(w, "cannot create run: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.zlog.Infow("Run created", "run_id", run.ID, "scenario", run.Name)

	response := map[string]any{
		"id":    run.ID,
		"name":  run.Name,
		"stats": run.Stats(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// GET /runs
// List all active run IDs.
func (s *Server) handleListRuns(w http.ResponseWriter, _ *http.Request) {
	ids := s.manager.ListRuns()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string][]string{"runs": ids}); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// POST /runs/{id}/step
// Advance the run. Query param: steps (default: 1).
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	runID, _ := extractRunID(r.URL.Path)

	run, ok := s.manager.GetRun(runID)
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	steps := 1
	if stepsStr := r.URL.Query().Get("steps"); stepsStr != "" {
		n, err := strconv.Atoi(stepsStr)
		if err != nil || n <= 0 {
			http.Error(w, "invalid steps: must be a positive integer", http.StatusBadRequest)
			return
		}
		steps = n
	}

	stats := run.Step(steps)

	s.zlog.Debugw("Run stepped", "run_id", runID, "steps", steps, "infected", stats.Infected)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// GET /runs/{id}/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	runID, _ := extractRunID(r.URL.Path)

	run, ok := s.manager.GetRun(runID)
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(run.Stats()); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// GET /runs/{id}/stream
// Upgrades to a websocket that receives a stats event after every step.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	runID, _ := extractRunID(r.URL.Path)

	run, ok := s.manager.GetRun(runID)
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	upgrader := run.stream.Upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.zlog.Warnw("Websocket upgrade failed", "run_id", runID, "error", err)
		return
	}

	run.stream.RegisterClient(conn)
	s.zlog.Infow("Stream client connected", "run_id", runID, "clients", run.stream.ClientCount())

	// Reads are discarded; the loop only detects disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				run.stream.UnregisterClient(conn)
				_ = conn.Close()
				return
			}
		}
	}()
}

// DELETE /runs/{id}
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	runID, _ := extractRunID(r.URL.Path)

	if err := s.manager.DeleteRun(runID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	s.zlog.Infow("Run deleted", "run_id", runID)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("run deleted"))
}

// handleRunRoutes routes requests under /runs and /runs/{id}/...
func (s *Server) handleRunRoutes(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/runs" {
		switch r.Method {
		case http.MethodPost:
			s.handleCreateRun(w, r)
		case http.MethodGet:
			s.handleListRuns(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	runID, remainingPath := extractRunID(r.URL.Path)
	if runID == "" {
		http.Error(w, "run ID is required in path: /runs/{id}/...", http.StatusBadRequest)
		return
	}

	switch {
	case remainingPath == "/step" && r.Method == http.MethodPost:
		s.handleStep(w, r)
	case remainingPath == "/stats" && r.Method == http.MethodGet:
		s.handleStats(w, r)
	case remainingPath == "/stream" && r.Method == http.MethodGet:
		s.handleStream(w, r)
	case remainingPath == "" && r.Method == http.MethodDelete:
		s.handleDeleteRun(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// Routes returns the server's HTTP handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/runs", s.handleRunRoutes)
	mux.HandleFunc("/runs/", s.handleRunRoutes)
	return mux
}
