// Package server exposes the engine's operation surface over HTTP as a
// thin JSON API. Handlers translate requests into component calls and
// absences into 404s; no scoring logic lives here.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"tempo/internal/engine"
)

// Server is the tempo HTTP API server.
type Server struct {
	engine  *engine.Engine
	router  chi.Router
	logger  *zap.Logger
	version string
	started time.Time
}

// New creates a Server over the given engine.
func New(eng *engine.Engine, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine:  eng,
		logger:  logger,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/estimate", s.handleEstimate)

		r.Post("/tasks/start", s.handleStartTask)
		r.Post("/tasks/complete", s.handleCompleteTask)

		r.Post("/tasks", s.handleAddTask)
		r.Get("/tasks", s.handleTaskList)
		r.Get("/tasks/next", s.handleNextTask)
		r.Get("/tasks/overdue", s.handleOverdueTasks)
		r.Post("/tasks/cleanup", s.handleCleanupTasks)
		r.Get("/tasks/{taskID}", s.handleGetTask)
		r.Patch("/tasks/{taskID}", s.handleUpdateTask)
		r.Post("/tasks/{taskID}/status", s.handleUpdateTaskStatus)
		r.Delete("/tasks/{taskID}", s.handleRemoveTask)
		r.Get("/tasks/{taskID}/memories", s.handleTaskMemories)

		r.Post("/memories", s.handleAddMemory)
		r.Get("/memories/search", s.handleSearchMemories)
		r.Post("/memories/prune", s.handlePruneMemories)
		r.Get("/memories/{memoryID}", s.handleGetMemory)
		r.Patch("/memories/{memoryID}", s.handleUpdateMemory)
		r.Delete("/memories/{memoryID}", s.handleRemoveMemory)
		r.Post("/memories/{memoryID}/associate", s.handleAssociateMemory)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
