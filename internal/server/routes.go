package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"tempo/internal/estimate"
	"tempo/internal/memory"
	"tempo/internal/schedule"
)

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category   string `json:"category"`
		Complexity string `json:"complexity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	est := s.engine.Estimator.Estimate(
		estimate.Category(req.Category), estimate.Complexity(req.Complexity))
	writeJSON(w, http.StatusOK, est)
}

func (s *Server) handleStartTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category   string `json:"category"`
		Complexity string `json:"complexity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	task := s.engine.Estimator.StartTask(
		estimate.Category(req.Category), estimate.Complexity(req.Complexity))
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaskID string `json:"task_id"`
	}
	// An empty body means "complete the most recent".
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	entry, ok := s.engine.Estimator.CompleteTask(req.TaskID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active task"})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Category    string   `json:"category"`
		Complexity  string   `json:"complexity"`
		Urgency     int      `json:"urgency"`
		Importance  int      `json:"importance"`
		Deadline    string   `json:"deadline"`
		Tags        []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	var deadline *time.Time
	if req.Deadline != "" {
		t, err := time.Parse(time.RFC3339, req.Deadline)
		if err != nil {
			http.Error(w, `{"error":"deadline must be RFC3339"}`, http.StatusBadRequest)
			return
		}
		deadline = &t
	}

	task, err := s.engine.AddTask(schedule.Input{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    deadline,
		Urgency:     req.Urgency,
		Importance:  req.Importance,
		Tags:        req.Tags,
	}, estimate.Category(req.Category), estimate.Complexity(req.Complexity))
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tasks": s.engine.Scheduler.TaskList()})
}

func (s *Server) handleNextTask(w http.ResponseWriter, r *http.Request) {
	task, ok := s.engine.Scheduler.NextTask()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no pending tasks"})
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleOverdueTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tasks": s.engine.Scheduler.OverdueTasks()})
}

func (s *Server) handleCleanupTasks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MaxAgeDays int `json:"max_age_days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.MaxAgeDays <= 0 {
		req.MaxAgeDays = 30
	}

	removed := s.engine.Scheduler.CleanupOldTasks(req.MaxAgeDays)
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, ok := s.engine.Scheduler.GetTask(chi.URLParam(r, "taskID"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	var req struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Deadline    *string  `json:"deadline"`
		Urgency     *int     `json:"urgency"`
		Importance  *int     `json:"importance"`
		Tags        []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	up := schedule.Update{
		Title:       req.Title,
		Description: req.Description,
		Urgency:     req.Urgency,
		Importance:  req.Importance,
		Tags:        req.Tags,
	}
	if req.Deadline != nil {
		t, err := time.Parse(time.RFC3339, *req.Deadline)
		if err != nil {
			http.Error(w, `{"error":"deadline must be RFC3339"}`, http.StatusBadRequest)
			return
		}
		up.Deadline = &t
	}

	task, err := s.engine.Scheduler.UpdateTask(taskID, up)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	task, err := s.engine.Scheduler.UpdateTaskStatus(taskID, schedule.Status(req.Status))
	if err != nil {
		status := http.StatusNotFound
		if !schedule.Status(req.Status).IsValid() {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleRemoveTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	if !s.engine.Scheduler.RemoveTask(taskID) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (s *Server) handleTaskMemories(w http.ResponseWriter, r *http.Request) {
	entries := s.engine.Memory.EntriesForTask(chi.URLParam(r, "taskID"))
	writeJSON(w, http.StatusOK, map[string]any{"memories": entries})
}

func (s *Server) handleAddMemory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string   `json:"content"`
		TaskIDs []string `json:"task_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, `{"error":"content required"}`, http.StatusBadRequest)
		return
	}

	entry := s.engine.Memory.AddEntry(req.Content, req.TaskIDs...)
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleSearchMemories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		http.Error(w, `{"error":"q required"}`, http.StatusBadRequest)
		return
	}

	opts := memory.SearchOpts{}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}
	if v := r.URL.Query().Get("max_age_days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.MaxAgeDays = n
		}
	}
	if v := r.URL.Query().Get("min_relevance"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			opts.MinRelevance = f
		}
	}

	results := s.engine.Memory.Search(q, opts)
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.engine.Memory.GetEntry(chi.URLParam(r, "memoryID"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "memory not found"})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleUpdateMemory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	entry, ok := s.engine.Memory.UpdateEntry(chi.URLParam(r, "memoryID"), req.Content)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "memory not found"})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleRemoveMemory(w http.ResponseWriter, r *http.Request) {
	if !s.engine.Memory.RemoveEntry(chi.URLParam(r, "memoryID")) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "memory not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (s *Server) handleAssociateMemory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaskID string `json:"task_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TaskID == "" {
		http.Error(w, `{"error":"task_id required"}`, http.StatusBadRequest)
		return
	}

	if !s.engine.Memory.AssociateTask(chi.URLParam(r, "memoryID"), req.TaskID) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "memory not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "associated"})
}

func (s *Server) handlePruneMemories(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MaxAgeDays     int `json:"max_age_days"`
		MinAccessCount int `json:"min_access_count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	removed := s.engine.Memory.Prune(memory.PruneOpts{
		MaxAgeDays:     req.MaxAgeDays,
		MinAccessCount: req.MinAccessCount,
	})
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}
